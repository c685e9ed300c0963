package material

import (
	"math"
	"testing"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/props"
)

func leafThin(p *props.Properties) {
	p.SetRGB("base_color", core.NewVec3(0.7, 0.1, 0.1))
	p.SetFloat("roughness", 0.15)
	p.SetFloat("spec_trans", 0.8)
	p.SetFloat("diff_trans", 0.3)
	p.SetFloat("eta", 1.33)
}

func fullThin(p *props.Properties) {
	p.SetRGB("base_color", core.NewVec3(0.3, 0.6, 0.2))
	p.SetFloat("roughness", 0.5)
	p.SetFloat("anisotropic", 0.3)
	p.SetFloat("spec_trans", 0.4)
	p.SetFloat("spec_tint", 0.5)
	p.SetFloat("sheen", 0.6)
	p.SetFloat("sheen_tint", 0.4)
	p.SetFloat("flatness", 0.5)
	p.SetFloat("diff_trans", 1.2)
	p.SetFloat("eta", 1.4)
}

func TestPrincipledThin_EndToEndSample(t *testing.T) {
	b := newTestPrincipledThin(t, leafThin)
	si := testInteraction(core.NewVec3(0, 0, 1))

	bs, weight := b.Sample(radiance, si, 0.05, core.NewVec2(0.3, 0.7))

	if bs.SampledComponent != ComponentSpecularReflection || bs.SampledType != GlossyReflection {
		t.Errorf("Expected the specular reflection lobe, got component %d (%v)", bs.SampledComponent, bs.SampledType)
	}
	if bs.Wo.Z <= 0 {
		t.Errorf("Expected a reflected direction, got %v", bs.Wo)
	}
	if !(bs.PDF > 0) {
		t.Errorf("Expected a positive pdf, got %f", bs.PDF)
	}
	if !weight.IsFinite() || weight.X <= 0 || weight.Y <= 0 || weight.Z <= 0 {
		t.Errorf("Expected a finite positive weight, got %v", weight)
	}
}

func TestPrincipledThin_ProbabilitiesSumToOne(t *testing.T) {
	configs := map[string]func(p *props.Properties){
		"default": nil,
		"leaf":    leafThin,
		"full":    fullThin,
		"rates": func(p *props.Properties) {
			p.SetFloat("spec_trans", 1)
			p.SetFloat("diff_trans", 2)
			p.SetFloat("specular_reflectance_sampling_rate", 0.1)
			p.SetFloat("spec_trans_sampling_rate", 4)
			p.SetFloat("diff_trans_sampling_rate", 2)
			p.SetFloat("diffuse_reflectance_sampling_rate", 3)
		},
	}

	si := testInteraction(core.NewVec3(0.2, 0.1, 0.9))
	for name, set := range configs {
		b := newTestPrincipledThin(t, set)
		probs := b.lobeProbabilities(b.evalParams(si))
		sum := probs.specReflect + probs.specTrans + probs.diffuse + probs.diffTrans
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("%s: probabilities %+v sum to %f", name, probs, sum)
		}
	}

	// The leaf parameters favor the specular reflection lobe
	leaf := newTestPrincipledThin(t, leafThin)
	probs := leaf.lobeProbabilities(leaf.evalParams(si))
	if math.Abs(probs.specReflect-0.5) > 1e-12 {
		t.Errorf("Expected specular reflection probability 0.5, got %f", probs.specReflect)
	}
}

func TestPrincipledThin_Symmetry(t *testing.T) {
	b := newTestPrincipledThin(t, fullThin)

	pairs := [][2]core.Vec3{
		{core.NewVec3(0.3, 0.1, 0.9), core.NewVec3(-0.5, 0.2, 0.7)},
		{core.NewVec3(0.3, 0.1, 0.9), core.NewVec3(-0.5, 0.2, -0.7)},
		{core.NewVec3(0.7, -0.2, 0.3), core.NewVec3(0.1, 0.4, -0.8)},
	}
	for _, pair := range pairs {
		wi, wo := pair[0].Normalize(), pair[1].Normalize()
		front := testInteraction(wi)
		back := testInteraction(wi.Negate())

		a := b.Eval(radiance, front, wo)
		c := b.Eval(radiance, back, wo.Negate())
		if !vecClose(a, c, 1e-12) {
			t.Errorf("eval(%v, %v) = %v but flipped = %v", wi, wo, a, c)
		}
		if a.IsZero() {
			t.Errorf("eval(%v, %v) should be nonzero", wi, wo)
		}

		pa := b.PDF(radiance, front, wo)
		pc := b.PDF(radiance, back, wo.Negate())
		if math.Abs(pa-pc) > 1e-12 {
			t.Errorf("pdf(%v, %v) = %f but flipped = %f", wi, wo, pa, pc)
		}
	}
}

func TestPrincipledThin_DiffuseTransmission(t *testing.T) {
	base := core.NewVec3(0.3, 0.6, 0.2)
	b := newTestPrincipledThin(t, func(p *props.Properties) {
		p.SetRGB("base_color", base)
		p.SetFloat("diff_trans", 2)
	})

	si := testInteraction(core.NewVec3(0.3, 0.1, 0.9))
	wo := core.NewVec3(-0.2, 0.4, -0.8).Normalize()
	expected := base.Multiply(math.Abs(wo.Z) / math.Pi)
	if got := b.Eval(radiance, si, wo); !vecClose(got, expected, 1e-12) {
		t.Errorf("Expected Lambertian transmission %v, got %v", expected, got)
	}

	// All diffuse energy is transmitted, only specular reflection remains on the front
	up := core.NewVec3(-0.2, 0.4, 0.8).Normalize()
	reflected := b.Eval(radiance, si, up)
	rated := newTestPrincipledThin(t, func(p *props.Properties) {
		p.SetRGB("base_color", base)
		p.SetFloat("diff_trans", 2)
		p.SetFloat("diffuse_reflectance_sampling_rate", 5)
	})
	if other := rated.Eval(radiance, si, up); !vecClose(reflected, other, 1e-12) {
		t.Errorf("Sampling rates should not change values: %v vs %v", reflected, other)
	}
	if reflected.X > 0.5 {
		t.Errorf("Reflection should only be the specular lobe, got %v", reflected)
	}
}

func TestPrincipledThin_SpecularTransmissionSample(t *testing.T) {
	b := newTestPrincipledThin(t, func(p *props.Properties) {
		p.SetFloat("spec_trans", 1)
		p.SetFloat("roughness", 0.3)
		p.SetFloat("eta", 1.5)
	})

	for _, wi := range []core.Vec3{core.NewVec3(0.3, 0.1, 0.9), core.NewVec3(0.3, 0.1, -0.9)} {
		si := testInteraction(wi)
		probs := b.lobeProbabilities(b.evalParams(si))

		// Pick the middle of the specular transmission interval
		sample1 := probs.specReflect + 0.5*probs.specTrans
		bs, weight := b.Sample(radiance, si, sample1, core.NewVec2(0.4, 0.6))

		if bs.SampledComponent != ComponentSpecularTransmission || bs.SampledType != GlossyTransmission {
			t.Fatalf("Expected specular transmission, got %+v", bs)
		}
		if bs.Wo.Z*si.Wi.Z >= 0 {
			t.Errorf("Transmitted direction %v should be on the other side of %v", bs.Wo, si.Wi)
		}
		if bs.Eta != 1 {
			t.Errorf("Thin transmission does not bend, expected eta 1, got %f", bs.Eta)
		}
		if !weight.IsFinite() || weight.X <= 0 {
			t.Errorf("Expected a positive weight, got %v", weight)
		}
	}
}

func TestPrincipledThin_SampleConsistentWithEvalAndPDF(t *testing.T) {
	b := newTestPrincipledThin(t, fullThin)
	sampler := core.NewSeededSampler(11)

	for _, wi := range []core.Vec3{core.NewVec3(0.3, 0.2, 0.9), core.NewVec3(-0.5, 0.1, -0.6)} {
		si := testInteraction(wi)
		for i := 0; i < 2000; i++ {
			bs, weight := b.Sample(radiance, si, sampler.Get1D(), sampler.Get2D())
			if bs.PDF == 0 {
				continue
			}
			if pdf := b.PDF(radiance, si, bs.Wo); !relClose(pdf, bs.PDF, 1e-9) {
				t.Fatalf("Sample pdf %f != PDF %f", bs.PDF, pdf)
			}
			transmitted := si.Wi.Z*bs.Wo.Z < 0
			if transmitted != bs.SampledType.Has(Transmission) {
				t.Fatalf("Sampled type %v does not match wo %v", bs.SampledType, bs.Wo)
			}
			if !weight.IsFinite() || weight.X < 0 {
				t.Fatalf("Invalid weight %v", weight)
			}
		}
	}
}

func TestPrincipledThin_PDFIntegratesToOne(t *testing.T) {
	for name, set := range map[string]func(p *props.Properties){
		"default": nil,
		"full":    fullThin,
	} {
		b := newTestPrincipledThin(t, set)
		si := testInteraction(core.NewVec3(0.3, 0.2, 0.93))
		integral := integrateSphere(func(wo core.Vec3) float64 {
			return b.PDF(radiance, si, wo)
		})
		if integral < 0.9 || integral > 1.02 {
			t.Errorf("%s: pdf integrates to %f", name, integral)
		}
	}
}

func TestPrincipledThin_Components(t *testing.T) {
	b := newTestPrincipledThin(t, nil)
	if got := b.Components(); len(got) != 2 {
		t.Errorf("Expected diffuse and specular reflection, got %v", got)
	}
	if b.Flags().Has(Transmission) {
		t.Errorf("Default thin BSDF should not transmit, flags %v", b.Flags())
	}

	full := newTestPrincipledThin(t, fullThin)
	expected := []BSDFFlags{
		DiffuseReflection | FrontSide | BackSide,
		DiffuseTransmission | FrontSide | BackSide,
		GlossyTransmission | FrontSide | BackSide | Anisotropic,
		GlossyReflection | FrontSide | BackSide | Anisotropic,
	}
	got := full.Components()
	if len(got) != len(expected) {
		t.Fatalf("Expected %d components, got %v", len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Component %d: expected %v, got %v", i, expected[i], got[i])
		}
	}
}

func TestPrincipledThin_TraverseAndUpdate(t *testing.T) {
	b := newTestPrincipledThin(t, nil)
	pm := NewParameterMap(b)

	for name, flags := range map[string]ParamFlags{
		"eta":                                Differentiable | Discontinuous,
		"diff_trans":                         Differentiable,
		"spec_trans_sampling_rate":           NonDifferentiable,
		"specular_reflectance_sampling_rate": NonDifferentiable,
	} {
		p, ok := pm.Get(name)
		if !ok {
			t.Fatalf("Missing parameter %s", name)
		}
		if p.Flags != flags {
			t.Errorf("%s: expected %v, got %v", name, flags, p.Flags)
		}
	}

	if err := pm.SetFloat("diff_trans", 1); err != nil {
		t.Fatal(err)
	}
	if err := pm.Update(); err != nil {
		t.Fatal(err)
	}
	if !b.hasDiffTrans() || !b.Flags().Has(DiffuseTransmission) {
		t.Errorf("Expected diffuse transmission, flags %v", b.Flags())
	}

	if err := pm.SetFloat("eta", -1); err != nil {
		t.Fatal(err)
	}
	if err := pm.Update(); err == nil {
		t.Error("Expected an error for a negative eta")
	}
}
