package material

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/props"
)

func TestMix_EvalAndPDF(t *testing.T) {
	red := NewLambertian(core.NewVec3(0.8, 0.1, 0.1))
	glossy := newTestPrincipled(t, func(p *props.Properties) {
		p.SetFloat("roughness", 0.2)
		p.SetFloat("metallic", 1)
	})
	mix := NewMix(red, glossy, 0.25)

	si := testInteraction(core.NewVec3(0.3, 0.1, 0.9))
	wo := core.NewVec3(-0.3, -0.1, 0.9).Normalize()

	expected := red.Eval(radiance, si, wo).Multiply(0.75).Add(glossy.Eval(radiance, si, wo).Multiply(0.25))
	if got := mix.Eval(radiance, si, wo); !vecClose(got, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	expectedPDF := 0.75*red.PDF(radiance, si, wo) + 0.25*glossy.PDF(radiance, si, wo)
	if got := mix.PDF(radiance, si, wo); math.Abs(got-expectedPDF) > 1e-12 {
		t.Errorf("Expected pdf %f, got %f", expectedPDF, got)
	}
}

func TestMix_SampleDelegates(t *testing.T) {
	red := NewLambertian(core.NewVec3(0.8, 0.1, 0.1))
	blue := NewLambertian(core.NewVec3(0.1, 0.1, 0.8))
	mix := NewMix(red, blue, 0.25)
	si := testInteraction(core.NewVec3(0, 0, 1))

	// sample1 <= weight picks the second BSDF
	_, weight := mix.Sample(radiance, si, 0.1, core.NewVec2(0.3, 0.3))
	if !vecClose(weight, core.NewVec3(0.1, 0.1, 0.8), 1e-12) {
		t.Errorf("Expected the blue BSDF, got %v", weight)
	}

	_, weight = mix.Sample(radiance, si, 0.9, core.NewVec2(0.3, 0.3))
	if !vecClose(weight, core.NewVec3(0.8, 0.1, 0.1), 1e-12) {
		t.Errorf("Expected the red BSDF, got %v", weight)
	}
}

func TestMix_SampleWeightBounds(t *testing.T) {
	redAlbedo, blueAlbedo := core.NewVec3(0.8, 0.1, 0.1), core.NewVec3(0.1, 0.1, 0.8)
	red, blue := NewLambertian(redAlbedo), NewLambertian(blueAlbedo)
	si := testInteraction(core.NewVec3(0, 0, 1))
	sample2 := core.NewVec2(0.3, 0.3)

	tests := []struct {
		name    string
		weight  float64
		sample1 float64
		want    core.Vec3
	}{
		{"zero weight, zero sample", 0, 0, redAlbedo},
		{"zero weight", 0, 0.5, redAlbedo},
		{"unit weight, unit sample", 1, 1, blueAlbedo},
		{"unit weight", 1, 0, blueAlbedo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, weight := NewMix(red, blue, tt.weight).Sample(radiance, si, tt.sample1, sample2)
			if !weight.IsFinite() || !(bs.PDF > 0) {
				t.Fatalf("Expected a valid sample, got %+v with weight %v", bs, weight)
			}
			if !vecClose(weight, tt.want, 1e-12) {
				t.Errorf("Expected weight %v, got %v", tt.want, weight)
			}
		})
	}
}

func TestMix_WeightClamped(t *testing.T) {
	red := NewLambertian(core.NewVec3(0.8, 0.1, 0.1))
	blue := NewLambertian(core.NewVec3(0.1, 0.1, 0.8))
	si := testInteraction(core.NewVec3(0, 0, 1))
	wo := core.NewVec3(0, 0, 1)

	if got := NewMix(red, blue, 3).Eval(radiance, si, wo); !vecClose(got, blue.Eval(radiance, si, wo), 1e-12) {
		t.Errorf("Weight above 1 should select the second BSDF, got %v", got)
	}
	if got := NewMix(red, blue, -1).Eval(radiance, si, wo); !vecClose(got, red.Eval(radiance, si, wo), 1e-12) {
		t.Errorf("Weight below 0 should select the first BSDF, got %v", got)
	}
}

func TestMix_NestedParameters(t *testing.T) {
	p := props.New("blendbsdf")
	p.SetFloat("weight", 0.5)
	p.SetProperties("bsdf_0", props.New("principled"))
	inner := props.New("diffuse")
	inner.SetRGB("reflectance", core.NewVec3(0.2, 0.3, 0.4))
	p.SetProperties("bsdf_1", inner)

	mix, err := NewMixFromProperties(p)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(mix.Components()); got != 3 {
		t.Fatalf("Expected 3 components, got %d", got)
	}

	pm := NewParameterMap(mix)
	for _, key := range []string{"weight", "bsdf_0.roughness", "bsdf_0.specular", "bsdf_1.reflectance"} {
		if _, ok := pm.Get(key); !ok {
			t.Errorf("Missing parameter %s in %v", key, pm.Keys())
		}
	}

	// Enabling a nested lobe is visible through the mix
	if err := pm.SetFloat("bsdf_0.clearcoat", 1); err != nil {
		t.Fatal(err)
	}
	if err := pm.Update(); err != nil {
		t.Fatal(err)
	}
	if got := len(mix.Components()); got != 4 {
		t.Errorf("Expected 4 components after enabling clearcoat, got %d", got)
	}
}

func TestMix_MissingNestedBSDF(t *testing.T) {
	p := props.New("blendbsdf")
	p.SetProperties("bsdf_0", props.New("diffuse"))
	if _, err := NewMixFromProperties(p); !errors.Is(err, props.ErrMissing) {
		t.Errorf("Expected props.ErrMissing, got %v", err)
	}
}
