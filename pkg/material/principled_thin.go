package material

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/microfacet"
	"github.com/df07/go-principled/pkg/props"
	"github.com/df07/go-principled/pkg/texture"
)

// PrincipledThin is the two-sided principled BSDF for thin, translucent
// shells such as leaves or paper. The surface has no interior: incident
// directions are folded to the front hemisphere, transmitted light leaves
// without bending and diffuse transmission replaces subsurface scattering.
type PrincipledThin struct {
	baseColor texture.Texture
	roughness texture.Texture
	eta       texture.Texture

	anisotropic texture.Texture
	specTrans   texture.Texture
	specTint    texture.Texture
	sheen       texture.Texture
	sheenTint   texture.Texture
	flatness    texture.Texture
	diffTrans   texture.Texture

	specReflectRate float64
	specTransRate   float64
	diffTransRate   float64
	diffuseRate     float64

	components []BSDFFlags
	flags      BSDFFlags
}

// NewPrincipledThin creates a thin principled BSDF from a property bag
func NewPrincipledThin(p *props.Properties) (*PrincipledThin, error) {
	r := propReader{p: p}
	b := &PrincipledThin{
		baseColor: r.texture("base_color", 0.5),
		roughness: r.texture("roughness", 0.5),
		eta:       r.texture("eta", 1.5),

		anisotropic: r.optional("anisotropic"),
		specTrans:   r.optional("spec_trans"),
		specTint:    r.optional("spec_tint"),
		sheen:       r.optional("sheen"),
		sheenTint:   r.optional("sheen_tint"),
		flatness:    r.optional("flatness"),
		diffTrans:   r.optional("diff_trans"),

		specReflectRate: r.samplingRate("specular_reflectance_sampling_rate"),
		specTransRate:   r.samplingRate("spec_trans_sampling_rate"),
		diffTransRate:   r.samplingRate("diff_trans_sampling_rate"),
		diffuseRate:     r.samplingRate("diffuse_reflectance_sampling_rate"),
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := b.validateEta(); err != nil {
		return nil, err
	}
	b.InitializeLobes()
	return b, nil
}

func (b *PrincipledThin) hasAnisotropic() bool { return b.anisotropic != nil }
func (b *PrincipledThin) hasSpecTrans() bool   { return b.specTrans != nil }
func (b *PrincipledThin) hasSpecTint() bool    { return b.specTint != nil }
func (b *PrincipledThin) hasSheen() bool       { return b.sheen != nil }
func (b *PrincipledThin) hasSheenTint() bool   { return b.sheenTint != nil }
func (b *PrincipledThin) hasFlatness() bool    { return b.flatness != nil }
func (b *PrincipledThin) hasDiffTrans() bool   { return b.diffTrans != nil }

func (b *PrincipledThin) validateEta() error {
	if !b.eta.IsSpatiallyVarying() && !(b.eta.Mean() > 0) {
		return fmt.Errorf("%w: eta must be positive, got %v", ErrInvalidParameter, b.eta)
	}
	return nil
}

// InitializeLobes rebuilds the advertised components from the active lobes
func (b *PrincipledThin) InitializeLobes() {
	b.components = b.components[:0]

	// Diffuse reflection lobe
	b.components = append(b.components, DiffuseReflection|FrontSide|BackSide)

	// Diffuse transmission lobe
	if b.hasDiffTrans() {
		b.components = append(b.components, DiffuseTransmission|FrontSide|BackSide)
	}

	// Specular transmission lobe
	if b.hasSpecTrans() {
		f := GlossyTransmission | FrontSide | BackSide
		if b.hasAnisotropic() {
			f |= Anisotropic
		}
		b.components = append(b.components, f)
	}

	// Specular reflection lobe
	f := GlossyReflection | FrontSide | BackSide
	if b.hasAnisotropic() {
		f |= Anisotropic
	}
	b.components = append(b.components, f)

	b.flags = unionFlags(b.components)
}

// Flags returns the union of the component flags
func (b *PrincipledThin) Flags() BSDFFlags { return b.flags }

// Components returns the flags of each active lobe
func (b *PrincipledThin) Components() []BSDFFlags {
	return append([]BSDFFlags(nil), b.components...)
}

type thinParams struct {
	anisotropic float64
	roughness   float64
	specTrans   float64
	diffTrans   float64 // halved to a [0, 1] mixture weight
	eta         float64
}

func (b *PrincipledThin) evalParams(si *core.SurfaceInteraction) thinParams {
	return thinParams{
		anisotropic: eval1(b.anisotropic, si),
		roughness:   b.roughness.Eval1(si),
		specTrans:   eval1(b.specTrans, si),
		diffTrans:   eval1(b.diffTrans, si) / 2,
		eta:         b.eta.Eval1(si),
	}
}

// distributions returns the specular reflection distribution and the one
// used for transmission, whose roughness is scaled with the index of
// refraction
func (b *PrincipledThin) distributions(tp thinParams) (microfacet.Distribution, microfacet.Distribution) {
	alphaU, alphaV := AnisotropicAlpha(tp.anisotropic, tp.roughness, b.hasAnisotropic())
	scaledRoughness := (0.65*tp.eta - 0.35) * tp.roughness
	scaledU, scaledV := AnisotropicAlpha(tp.anisotropic, scaledRoughness, b.hasAnisotropic())
	return microfacet.NewDistribution(microfacet.GGX, alphaU, alphaV),
		microfacet.NewDistribution(microfacet.GGX, scaledU, scaledV)
}

type thinProbs struct {
	specReflect float64
	specTrans   float64
	diffuse     float64
	diffTrans   float64
}

func (b *PrincipledThin) lobeProbabilities(tp thinParams) thinProbs {
	probs := thinProbs{
		specReflect: b.specReflectRate,
		diffuse:     b.diffuseRate * (1 - tp.specTrans) * (1 - tp.diffTrans),
	}
	if b.hasSpecTrans() {
		probs.specTrans = b.specTransRate * tp.specTrans
	}
	if b.hasDiffTrans() {
		probs.diffTrans = b.diffTransRate * (1 - tp.specTrans) * tp.diffTrans
	}

	total := probs.specReflect + probs.specTrans + probs.diffuse + probs.diffTrans
	if !(total > 0) {
		return thinProbs{}
	}
	probs.specReflect /= total
	probs.specTrans /= total
	probs.diffuse /= total
	probs.diffTrans /= total
	return probs
}

// Sample picks a lobe with sample1 and draws a direction from it with sample2
func (b *PrincipledThin) Sample(ctx Context, si *core.SurfaceInteraction, sample1 float64, sample2 core.Vec2) (BSDFSample, core.Vec3) {
	cosThetaI := core.CosTheta(si.Wi)
	if cosThetaI == 0 {
		return BSDFSample{}, core.Vec3{}
	}

	// Work on the front side, fold back at the end
	wi := si.Wi.MulSign(cosThetaI)

	tp := b.evalParams(si)
	dist, scaled := b.distributions(tp)
	probs := b.lobeProbabilities(tp)

	bs := BSDFSample{Eta: 1}
	var valid bool
	switch {
	case sample1 < probs.specReflect:
		m, _ := dist.Sample(wi, sample2)
		bs.Wo = Reflect(wi, m)
		bs.SampledComponent = ComponentSpecularReflection
		bs.SampledType = GlossyReflection
		valid = core.CosTheta(bs.Wo) > 0

	case sample1 < probs.specReflect+probs.specTrans:
		// Reflect, then flip through the surface without bending
		m, _ := scaled.Sample(wi, sample2)
		bs.Wo = Reflect(wi, m)
		bs.Wo.Z = -bs.Wo.Z
		bs.SampledComponent = ComponentSpecularTransmission
		bs.SampledType = GlossyTransmission
		valid = core.CosTheta(bs.Wo) < 0

	case sample1 < probs.specReflect+probs.specTrans+probs.diffuse:
		bs.Wo = core.SampleCosineHemisphere(sample2)
		bs.SampledComponent = ComponentDiffuse
		bs.SampledType = DiffuseReflection
		valid = core.CosTheta(bs.Wo) > 0

	default:
		if !b.hasDiffTrans() {
			return BSDFSample{}, core.Vec3{}
		}
		bs.Wo = core.SampleCosineHemisphere(sample2)
		bs.Wo.Z = -bs.Wo.Z
		bs.SampledComponent = ComponentDiffuseTransmission
		bs.SampledType = DiffuseTransmission
		valid = core.CosTheta(bs.Wo) < 0
	}
	if !valid {
		return BSDFSample{}, core.Vec3{}
	}

	bs.Wo = bs.Wo.MulSign(cosThetaI)

	bs.PDF = b.PDF(ctx, si, bs.Wo)
	if !(bs.PDF > 0) {
		return BSDFSample{}, core.Vec3{}
	}
	return bs, b.Eval(ctx, si, bs.Wo).Multiply(1 / bs.PDF)
}

// thinFrame folds a direction pair to the front side. It returns the folded
// incident and outgoing directions, the outgoing direction mirrored to the
// reflection side and the half vector between wi and that mirror.
func thinFrame(wiIn, woIn core.Vec3) (wi, wo, woR, wh core.Vec3) {
	cosThetaI := core.CosTheta(wiIn)
	wi = wiIn.MulSign(cosThetaI)
	wo = woIn.MulSign(cosThetaI)
	woR = core.NewVec3(wo.X, wo.Y, math.Abs(wo.Z))
	wh = wi.Add(woR).Normalize()
	return wi, wo, woR, wh
}

// Eval returns the BSDF value times |cos(theta_o)|
func (b *PrincipledThin) Eval(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) core.Vec3 {
	if core.CosTheta(si.Wi) == 0 {
		return core.Vec3{}
	}

	wi, woT, woR, wh := thinFrame(si.Wi, wo)
	cosThetaI := core.CosTheta(wi)
	cosThetaO := core.CosTheta(woT)
	reflect := cosThetaO > 0
	refract := cosThetaO < 0

	tp := b.evalParams(si)
	baseColor := b.baseColor.Eval(si)
	dist, scaled := b.distributions(tp)

	fSpec, _, _, _ := DielectricFresnel(wi.Dot(wh), tp.eta)

	var value core.Vec3

	// Specular reflection
	if reflect && fSpec > 0 {
		lum := 1.0
		if b.hasSpecTint() {
			lum = baseColor.Luminance()
		}
		f := ThinFresnel(fSpec, eval1(b.specTint, si), baseColor, lum, wi.Dot(wh), tp.eta, b.hasSpecTint())
		d := dist.Eval(wh)
		g := dist.G(wi, woR, wh)
		value = value.Add(f.Multiply(d * g / (4 * cosThetaI)))
	}

	// Specular transmission, a reflection flipped through the surface
	if b.hasSpecTrans() && refract && fSpec < 1 {
		d := scaled.Eval(wh)
		g := scaled.G(wi, woR, wh)
		t := tp.specTrans * (1 - fSpec) * d * g / (4 * cosThetaI)
		value = value.Add(baseColor.Sqrt().Multiply(t))
	}

	diffuseWeight := 1 - tp.specTrans

	// Diffuse, retro-reflection, fake subsurface and sheen
	if reflect {
		cosThetaD := wh.Dot(woR)
		lobes := diffuseLobes(cosThetaI, cosThetaO, cosThetaD, tp.roughness, eval1(b.flatness, si), b.hasFlatness())
		value = value.Add(baseColor.Multiply(diffuseWeight * (1 - tp.diffTrans) * cosThetaO / math.Pi * lobes))

		if sheen := eval1(b.sheen, si); b.hasSheen() && sheen > 0 {
			fd := SchlickWeight(math.Abs(cosThetaD))
			cSheen := sheenColor(baseColor, eval1(b.sheenTint, si), b.hasSheenTint())
			value = value.Add(cSheen.Multiply(diffuseWeight * sheen * fd * math.Abs(cosThetaO)))
		}
	}

	// Diffuse transmission
	if b.hasDiffTrans() && refract {
		value = value.Add(baseColor.Multiply(diffuseWeight * tp.diffTrans / math.Pi * math.Abs(cosThetaO)))
	}

	return value
}

// PDF returns the density of Sample at wo
func (b *PrincipledThin) PDF(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) float64 {
	if core.CosTheta(si.Wi) == 0 {
		return 0
	}

	wi, woT, woR, wh := thinFrame(si.Wi, wo)
	cosThetaO := core.CosTheta(woT)

	tp := b.evalParams(si)
	dist, scaled := b.distributions(tp)
	probs := b.lobeProbabilities(tp)

	dwhDwo := math.Abs(1 / (4 * woR.Dot(wh)))
	cosinePDF := math.Abs(cosThetaO) / math.Pi

	switch {
	case cosThetaO > 0:
		return probs.specReflect*dist.PDF(wi, wh)*dwhDwo + probs.diffuse*cosinePDF
	case cosThetaO < 0:
		return probs.specTrans*scaled.PDF(wi, wh)*dwhDwo + probs.diffTrans*cosinePDF
	}
	return 0
}

// EvalDiffuseReflectance returns the base color
func (b *PrincipledThin) EvalDiffuseReflectance(si *core.SurfaceInteraction) core.Vec3 {
	return b.baseColor.Eval(si)
}

// Traverse exposes every parameter, including disabled optional lobes
func (b *PrincipledThin) Traverse(callback TraversalCallback) {
	callback.PutTexture("base_color", &b.baseColor, Differentiable)
	callback.PutTexture("roughness", &b.roughness, Differentiable|Discontinuous)
	callback.PutTexture("anisotropic", &b.anisotropic, Differentiable|Discontinuous)
	callback.PutTexture("spec_trans", &b.specTrans, Differentiable|Discontinuous)
	callback.PutTexture("eta", &b.eta, Differentiable|Discontinuous)
	callback.PutTexture("spec_tint", &b.specTint, Differentiable)
	callback.PutTexture("sheen", &b.sheen, Differentiable)
	callback.PutTexture("sheen_tint", &b.sheenTint, Differentiable)
	callback.PutTexture("flatness", &b.flatness, Differentiable)
	callback.PutTexture("diff_trans", &b.diffTrans, Differentiable)

	callback.PutFloat("specular_reflectance_sampling_rate", &b.specReflectRate, NonDifferentiable)
	callback.PutFloat("spec_trans_sampling_rate", &b.specTransRate, NonDifferentiable)
	callback.PutFloat("diff_trans_sampling_rate", &b.diffTransRate, NonDifferentiable)
	callback.PutFloat("diffuse_reflectance_sampling_rate", &b.diffuseRate, NonDifferentiable)
}

// ParametersChanged re-derives the active lobes after an update
func (b *PrincipledThin) ParametersChanged(keys []string) error {
	for _, slot := range []*texture.Texture{
		&b.anisotropic, &b.specTrans, &b.specTint, &b.sheen,
		&b.sheenTint, &b.flatness, &b.diffTrans,
	} {
		*slot = disableIfZero(*slot)
	}

	if err := requireTextures(map[string]texture.Texture{
		"base_color": b.baseColor,
		"roughness":  b.roughness,
		"eta":        b.eta,
	}); err != nil {
		return err
	}
	if err := validateSamplingRates(map[string]float64{
		"specular_reflectance_sampling_rate": b.specReflectRate,
		"spec_trans_sampling_rate":           b.specTransRate,
		"diff_trans_sampling_rate":           b.diffTransRate,
		"diffuse_reflectance_sampling_rate":  b.diffuseRate,
	}); err != nil {
		return err
	}
	if err := b.validateEta(); err != nil {
		return err
	}

	b.InitializeLobes()
	return nil
}

func (b *PrincipledThin) String() string {
	var sb strings.Builder
	sb.WriteString("PrincipledThin[\n")
	fmt.Fprintf(&sb, "  base_color = %v,\n", b.baseColor)
	fmt.Fprintf(&sb, "  roughness = %v,\n", b.roughness)
	fmt.Fprintf(&sb, "  eta = %v,\n", b.eta)
	writeOptional(&sb, "anisotropic", b.anisotropic)
	writeOptional(&sb, "spec_trans", b.specTrans)
	writeOptional(&sb, "spec_tint", b.specTint)
	writeOptional(&sb, "sheen", b.sheen)
	writeOptional(&sb, "sheen_tint", b.sheenTint)
	writeOptional(&sb, "flatness", b.flatness)
	writeOptional(&sb, "diff_trans", b.diffTrans)
	fmt.Fprintf(&sb, "  specular_reflectance_sampling_rate = %g,\n", b.specReflectRate)
	fmt.Fprintf(&sb, "  spec_trans_sampling_rate = %g,\n", b.specTransRate)
	fmt.Fprintf(&sb, "  diff_trans_sampling_rate = %g,\n", b.diffTransRate)
	fmt.Fprintf(&sb, "  diffuse_reflectance_sampling_rate = %g\n", b.diffuseRate)
	sb.WriteString("]")
	return sb.String()
}
