package material

import (
	"math"
	"testing"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/props"
)

func TestLambertian_PDFCalculation(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	sampler := core.NewSeededSampler(42)
	si := testInteraction(core.NewVec3(0, 0, 1))

	// Test that PDF calculation matches expected formula
	for i := 0; i < 100; i++ {
		bs, _ := lambertian.Sample(radiance, si, sampler.Get1D(), sampler.Get2D())
		if bs.PDF == 0 {
			t.Fatal("Lambertian should always scatter from the front")
		}

		expectedPDF := bs.Wo.Z / math.Pi
		tolerance := 1e-10
		if math.Abs(bs.PDF-expectedPDF) > tolerance {
			t.Errorf("PDF mismatch: got %f, expected %f", bs.PDF, expectedPDF)
		}
		if pdf := lambertian.PDF(radiance, si, bs.Wo); math.Abs(pdf-bs.PDF) > tolerance {
			t.Errorf("PDF() = %f disagrees with sampled pdf %f", pdf, bs.PDF)
		}
	}
}

func TestLambertian_EnergyConservation(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.7, 0.9)
	lambertian := NewLambertian(albedo)
	si := testInteraction(core.NewVec3(0.3, 0, 0.9))

	bs, weight := lambertian.Sample(radiance, si, 0.5, core.NewVec2(0.25, 0.75))
	if bs.PDF == 0 {
		t.Fatal("Lambertian should always scatter from the front")
	}

	// Weight is albedo/pi * cos / pdf = albedo
	if !vecClose(weight, albedo, 1e-10) {
		t.Errorf("Weight mismatch: got %v, expected %v", weight, albedo)
	}

	expected := albedo.Multiply(bs.Wo.Z / math.Pi)
	if got := lambertian.Eval(radiance, si, bs.Wo); !vecClose(got, expected, 1e-10) {
		t.Errorf("Eval mismatch: got %v, expected %v", got, expected)
	}
}

func TestLambertian_BelowSurface(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	si := testInteraction(core.NewVec3(0, 0, 1))

	if got := lambertian.Eval(radiance, si, core.NewVec3(0, 0, -1)); !got.IsZero() {
		t.Errorf("Expected no transmission, got %v", got)
	}

	inside := testInteraction(core.NewVec3(0, 0, -1))
	bs, weight := lambertian.Sample(radiance, inside, 0.5, core.NewVec2(0.5, 0.5))
	if bs.PDF != 0 || !weight.IsZero() {
		t.Errorf("Expected no sample from below, got %+v", bs)
	}
}

func TestLambertian_FromProperties(t *testing.T) {
	p := props.New("diffuse")
	l, err := NewLambertianFromProperties(p)
	if err != nil {
		t.Fatal(err)
	}
	if got := l.EvalDiffuseReflectance(testInteraction(core.NewVec3(0, 0, 1))); !vecClose(got, core.Splat(0.5), 0) {
		t.Errorf("Expected default reflectance 0.5, got %v", got)
	}
}
