package chi2

import (
	"math"
	"testing"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/material"
)

func TestWeightStats(t *testing.T) {
	var ws WeightStats
	for _, v := range []float64{1, 2, 3, 4} {
		ws.AddSample(core.Splat(v))
	}

	if mean := ws.Mean(); math.Abs(mean.X-2.5) > 1e-12 {
		t.Errorf("Expected mean 2.5, got %v", mean)
	}
	// Luminance of a gray value is the value itself
	if v := ws.Variance(); math.Abs(v-5.0/3.0) > 1e-9 {
		t.Errorf("Expected variance 5/3, got %f", v)
	}

	var empty WeightStats
	if !empty.Mean().IsZero() || empty.Variance() != 0 || empty.StdError() != 0 {
		t.Error("Empty stats should be zero")
	}
}

func TestSampleStats_Merge(t *testing.T) {
	var a, b SampleStats
	a.AddSample(material.BSDFSample{PDF: 1, SampledComponent: 0, SampledType: material.DiffuseReflection}, core.Splat(1))
	a.AddSample(material.BSDFSample{}, core.Vec3{})
	b.AddSample(material.BSDFSample{PDF: 2, SampledComponent: 3, SampledType: material.GlossyReflection}, core.Splat(0.5))

	a.Merge(b)
	if a.Weights.SampleCount != 3 || a.Invalid != 1 || a.Valid() != 2 {
		t.Errorf("Unexpected counts %+v", a)
	}
	if a.Components[0] != 1 || a.Components[3] != 1 {
		t.Errorf("Unexpected components %v", a.Components)
	}
	if a.Types[material.GlossyReflection] != 1 || a.Types[material.DiffuseReflection] != 1 {
		t.Errorf("Unexpected types %v", a.Types)
	}
}
