package material

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/log"
	"github.com/df07/go-principled/pkg/microfacet"
	"github.com/df07/go-principled/pkg/props"
	"github.com/df07/go-principled/pkg/texture"
)

var logger = log.New("material")

// Principled is the Disney principled BSDF (Burley 2012/2015): a single
// artist-friendly model combining a diffuse base with retro-reflection, a
// fake subsurface term and sheen, an anisotropic GGX specular lobe, rough
// dielectric transmission and a GTR1 clearcoat.
//
// Optional parameters are nil when the corresponding lobe is disabled.
type Principled struct {
	baseColor      texture.Texture
	roughness      texture.Texture
	clearcoatGloss texture.Texture

	anisotropic texture.Texture
	metallic    texture.Texture
	specTrans   texture.Texture
	specTint    texture.Texture
	sheen       texture.Texture
	sheenTint   texture.Texture
	flatness    texture.Texture
	clearcoat   texture.Texture

	// Exactly one of eta and specular is user facing; the other is derived
	eta          float64
	specular     float64
	etaSpecified bool

	diffuseRate   float64
	specularRate  float64
	clearcoatRate float64

	components []BSDFFlags
	flags      BSDFFlags
}

// NewPrincipled creates a principled BSDF from a property bag
func NewPrincipled(p *props.Properties) (*Principled, error) {
	if p.Has("eta") && p.Has("specular") {
		return nil, ErrEtaAndSpecular
	}

	r := propReader{p: p}
	b := &Principled{
		baseColor:      r.texture("base_color", 0.5),
		roughness:      r.texture("roughness", 0.5),
		clearcoatGloss: r.texture("clearcoat_gloss", 0),

		anisotropic: r.optional("anisotropic"),
		metallic:    r.optional("metallic"),
		specTrans:   r.optional("spec_trans"),
		specTint:    r.optional("spec_tint"),
		sheen:       r.optional("sheen"),
		sheenTint:   r.optional("sheen_tint"),
		flatness:    r.optional("flatness"),
		clearcoat:   r.optional("clearcoat"),

		diffuseRate:   r.samplingRate("diffuse_reflectance_sampling_rate"),
		specularRate:  r.samplingRate("main_specular_sampling_rate"),
		clearcoatRate: r.samplingRate("clearcoat_sampling_rate"),
	}

	if p.Has("eta") {
		b.eta = r.float("eta", 1.5)
		b.etaSpecified = true
	} else {
		b.specular = r.float("specular", 0.5)
	}
	if r.err != nil {
		return nil, r.err
	}

	if err := b.deriveEta(); err != nil {
		return nil, err
	}
	b.InitializeLobes()
	return b, nil
}

func (b *Principled) hasAnisotropic() bool { return b.anisotropic != nil }
func (b *Principled) hasMetallic() bool    { return b.metallic != nil }
func (b *Principled) hasSpecTrans() bool   { return b.specTrans != nil }
func (b *Principled) hasSpecTint() bool    { return b.specTint != nil }
func (b *Principled) hasSheen() bool       { return b.sheen != nil }
func (b *Principled) hasSheenTint() bool   { return b.sheenTint != nil }
func (b *Principled) hasFlatness() bool    { return b.flatness != nil }
func (b *Principled) hasClearcoat() bool   { return b.clearcoat != nil }

// Eta returns the relative index of refraction of the specular lobes
func (b *Principled) Eta() float64 { return b.eta }

// Specular returns the specular amount equivalent to Eta
func (b *Principled) Specular() float64 { return b.specular }

// deriveEta computes whichever of eta and specular was not given, after
// moving degenerate values away from index-matched transmission
func (b *Principled) deriveEta() error {
	if b.etaSpecified {
		if !(b.eta > 0) {
			return fmt.Errorf("%w: eta must be positive, got %g", ErrInvalidParameter, b.eta)
		}
		if b.hasSpecTrans() && b.eta == 1 {
			logger.Debug("eta = 1 with specular transmission, using 1.001")
			b.eta = 1.001
		}
		b.specular = SchlickR0FromEta(b.eta) / 0.08
		return nil
	}

	if b.specular < 0 || 0.08*b.specular >= 1 {
		return fmt.Errorf("%w: specular must be in [0, 12.5), got %g", ErrInvalidParameter, b.specular)
	}
	if b.hasSpecTrans() && b.specular == 0 {
		logger.Debug("specular = 0 with specular transmission, using 1e-3")
		b.specular = 1e-3
	}
	b.eta = 2/(1-math.Sqrt(0.08*b.specular)) - 1
	return nil
}

// InitializeLobes rebuilds the advertised components from the active lobes
func (b *Principled) InitializeLobes() {
	b.components = b.components[:0]

	// Diffuse reflection lobe
	b.components = append(b.components, DiffuseReflection|FrontSide)

	// Clearcoat lobe
	if b.hasClearcoat() {
		b.components = append(b.components, GlossyReflection|FrontSide)
	}

	// Specular transmission lobe
	if b.hasSpecTrans() {
		f := GlossyTransmission | FrontSide | BackSide | NonSymmetric
		if b.hasAnisotropic() {
			f |= Anisotropic
		}
		b.components = append(b.components, f)
	}

	// Main specular reflection lobe
	f := GlossyReflection | FrontSide | BackSide
	if b.hasAnisotropic() {
		f |= Anisotropic
	}
	b.components = append(b.components, f)

	b.flags = unionFlags(b.components)
}

// Flags returns the union of the component flags
func (b *Principled) Flags() BSDFFlags { return b.flags }

// Components returns the flags of each active lobe
func (b *Principled) Components() []BSDFFlags {
	return append([]BSDFFlags(nil), b.components...)
}

// principledParams holds the scalar parameters shared by Sample, Eval and PDF
type principledParams struct {
	anisotropic float64
	roughness   float64
	specTrans   float64
	metallic    float64
	clearcoat   float64

	brdf float64 // weight of the diffuse-like lobes
	bsdf float64 // weight of specular transmission
}

func (b *Principled) evalParams(si *core.SurfaceInteraction) principledParams {
	pp := principledParams{
		anisotropic: eval1(b.anisotropic, si),
		roughness:   b.roughness.Eval1(si),
		specTrans:   eval1(b.specTrans, si),
		metallic:    eval1(b.metallic, si),
		clearcoat:   eval1(b.clearcoat, si),
	}
	pp.brdf = (1 - pp.metallic) * (1 - pp.specTrans)
	if b.hasSpecTrans() {
		pp.bsdf = (1 - pp.metallic) * pp.specTrans
	}
	return pp
}

func (b *Principled) distribution(pp principledParams) microfacet.Distribution {
	alphaU, alphaV := AnisotropicAlpha(pp.anisotropic, pp.roughness, b.hasAnisotropic())
	return microfacet.NewDistribution(microfacet.GGX, alphaU, alphaV)
}

// principledProbs are the normalized lobe selection probabilities
type principledProbs struct {
	specReflect float64
	specTrans   float64
	clearcoat   float64
	diffuse     float64
}

// lobeProbabilities weights the lobes by their expected energy and the
// sampling rates. From the inside only the specular lobes are sampled, in
// proportion to the Fresnel term f.
func (b *Principled) lobeProbabilities(frontSide bool, f float64, pp principledParams) principledProbs {
	var probs principledProbs
	if frontSide {
		probs.specReflect = b.specularRate * (1 - pp.bsdf*(1-f))
		if b.hasSpecTrans() {
			probs.specTrans = b.specularRate * pp.bsdf * (1 - f)
		}
		if b.hasClearcoat() {
			// Clearcoat has 1/4 of the main specular reflection energy
			probs.clearcoat = 0.25 * pp.clearcoat * b.clearcoatRate
		}
		probs.diffuse = pp.brdf * b.diffuseRate
	} else {
		probs.specReflect = f
		if b.hasSpecTrans() {
			probs.specTrans = 1 - f
		}
	}

	total := probs.specReflect + probs.specTrans + probs.clearcoat + probs.diffuse
	if !(total > 0) {
		return principledProbs{}
	}
	probs.specReflect /= total
	probs.specTrans /= total
	probs.clearcoat /= total
	probs.diffuse /= total
	return probs
}

// Sample picks a lobe with sample1 and draws a direction from it with sample2
func (b *Principled) Sample(ctx Context, si *core.SurfaceInteraction, sample1 float64, sample2 core.Vec2) (BSDFSample, core.Vec3) {
	cosThetaI := core.CosTheta(si.Wi)

	// Ignore perfectly grazing incidence
	if cosThetaI == 0 {
		return BSDFSample{}, core.Vec3{}
	}

	pp := b.evalParams(si)
	frontSide := cosThetaI > 0

	// Without transmission nothing is sampled from the inside
	if !frontSide && pp.bsdf == 0 {
		return BSDFSample{}, core.Vec3{}
	}

	dist := b.distribution(pp)
	mSpec, _ := dist.Sample(si.Wi.MulSign(cosThetaI), sample2)
	fSpec, cosThetaT, etaIT, etaTI := DielectricFresnel(si.Wi.Dot(mSpec), b.eta)

	probs := b.lobeProbabilities(frontSide, fSpec, pp)

	bs := BSDFSample{Eta: 1}
	var valid bool
	switch {
	case sample1 < probs.diffuse:
		bs.Wo = core.SampleCosineHemisphere(sample2)
		bs.SampledComponent = ComponentDiffuse
		bs.SampledType = DiffuseReflection
		valid = cosThetaI*core.CosTheta(bs.Wo) > 0

	case sample1 < probs.diffuse+probs.clearcoat:
		gloss := b.clearcoatGloss.Eval1(si)
		mCC := microfacet.NewGTR1(microfacet.ClearcoatAlpha(gloss)).Sample(sample2).Normalize()
		bs.Wo = Reflect(si.Wi, mCC)
		bs.SampledComponent = ComponentClearcoat
		bs.SampledType = GlossyReflection
		valid = MacMicCompatible(mCC, si.Wi, bs.Wo, cosThetaI, true) && cosThetaI*core.CosTheta(bs.Wo) > 0

	case sample1 < probs.diffuse+probs.clearcoat+probs.specTrans:
		bs.Wo = Refract(si.Wi, mSpec, cosThetaT, etaTI)
		bs.SampledComponent = ComponentSpecularTransmission
		bs.SampledType = GlossyTransmission
		bs.Eta = etaIT
		valid = MacMicCompatible(mSpec, si.Wi, bs.Wo, cosThetaI, false) && cosThetaI*core.CosTheta(bs.Wo) < 0

	default:
		bs.Wo = Reflect(si.Wi, mSpec)
		bs.SampledComponent = ComponentSpecularReflection
		bs.SampledType = GlossyReflection
		valid = MacMicCompatible(mSpec, si.Wi, bs.Wo, cosThetaI, true) && cosThetaI*core.CosTheta(bs.Wo) > 0
	}
	if !valid {
		return BSDFSample{}, core.Vec3{}
	}

	// The weight uses the density of the whole mixture, not of the chosen lobe
	bs.PDF = b.PDF(ctx, si, bs.Wo)
	if !(bs.PDF > 0) {
		return BSDFSample{}, core.Vec3{}
	}
	return bs, b.Eval(ctx, si, bs.Wo).Multiply(1 / bs.PDF)
}

// halfway returns the microfacet normal mapping wi to wo, oriented to the
// outside of the surface
func halfway(wi, wo core.Vec3, reflect bool, etaPath float64) core.Vec3 {
	scale := etaPath
	if reflect {
		scale = 1
	}
	wh := wi.Add(wo.Multiply(scale)).Normalize()
	return wh.MulSign(core.CosTheta(wh))
}

// Eval returns the BSDF value times |cos(theta_o)|
func (b *Principled) Eval(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) core.Vec3 {
	cosThetaI := core.CosTheta(si.Wi)
	if cosThetaI == 0 {
		return core.Vec3{}
	}

	pp := b.evalParams(si)
	baseColor := b.baseColor.Eval(si)
	cosThetaO := core.CosTheta(wo)

	reflect := cosThetaI*cosThetaO > 0
	refract := cosThetaI*cosThetaO < 0
	frontSide := cosThetaI > 0

	// Relative index of refraction along the path rather than of the object
	etaPath, invEtaPath := b.eta, 1/b.eta
	if !frontSide {
		etaPath, invEtaPath = invEtaPath, etaPath
	}

	dist := b.distribution(pp)
	wh := halfway(si.Wi, wo, reflect, etaPath)
	fSpec, _, _, _ := DielectricFresnel(si.Wi.Dot(wh), b.eta)

	reflectCompatible := MacMicCompatible(wh, si.Wi, wo, cosThetaI, true)
	refractCompatible := MacMicCompatible(wh, si.Wi, wo, cosThetaI, false)

	d := dist.Eval(wh)
	g := dist.G(si.Wi, wo, wh)

	var value core.Vec3

	// Main specular reflection
	if reflect && reflectCompatible && fSpec > 0 {
		lum := 1.0
		if b.hasSpecTint() {
			lum = baseColor.Luminance()
		}
		fPrincipled := PrincipledFresnel(fSpec, pp.metallic, eval1(b.specTint, si), baseColor, lum,
			si.Wi.Dot(wh), frontSide, pp.bsdf, b.eta, b.hasMetallic(), b.hasSpecTint())
		value = value.Add(fPrincipled.Multiply(d * g / (4 * math.Abs(cosThetaI))))
	}

	// Specular transmission
	if b.hasSpecTrans() && pp.bsdf > 0 && refract && refractCompatible && fSpec < 1 {
		// Solid angle compression only applies to radiance
		scale := 1.0
		if ctx.Mode == Radiance {
			scale = invEtaPath * invEtaPath
		}
		dotWiH, dotWoH := si.Wi.Dot(wh), wo.Dot(wh)
		denom := dotWiH + etaPath*dotWoH
		t := math.Abs(scale * (1 - fSpec) * d * g * etaPath * etaPath * dotWiH * dotWoH /
			(cosThetaI * denom * denom))
		value = value.Add(baseColor.Sqrt().Multiply(pp.bsdf * t))
	}

	// Clearcoat, front side only
	if b.hasClearcoat() && pp.clearcoat > 0 && reflect && reflectCompatible && frontSide {
		gloss := b.clearcoatGloss.Eval1(si)
		fcc := SchlickFresnel(0.04, si.Wi.Dot(wh), 1.5)
		dcc := microfacet.NewGTR1(microfacet.ClearcoatAlpha(gloss)).Eval(wh)
		gcc := microfacet.ClearcoatG(si.Wi, wo, wh)
		value = value.Add(core.Splat(0.25 * pp.clearcoat * fcc * dcc * gcc * math.Abs(cosThetaO)))
	}

	// Diffuse, retro-reflection, fake subsurface and sheen, front side only
	if pp.brdf > 0 && reflect && frontSide {
		cosThetaD := wh.Dot(wo)
		lobes := diffuseLobes(cosThetaI, cosThetaO, cosThetaD, pp.roughness, eval1(b.flatness, si), b.hasFlatness())
		value = value.Add(baseColor.Multiply(pp.brdf * math.Abs(cosThetaO) / math.Pi * lobes))

		if sheen := eval1(b.sheen, si); b.hasSheen() && sheen > 0 {
			fd := SchlickWeight(math.Abs(cosThetaD))
			cSheen := sheenColor(baseColor, eval1(b.sheenTint, si), b.hasSheenTint())
			value = value.Add(cSheen.Multiply(sheen * (1 - pp.metallic) * fd * math.Abs(cosThetaO)))
		}
	}

	return value
}

// PDF returns the density of Sample at wo
func (b *Principled) PDF(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) float64 {
	cosThetaI := core.CosTheta(si.Wi)
	if cosThetaI == 0 {
		return 0
	}

	pp := b.evalParams(si)
	cosThetaO := core.CosTheta(wo)

	reflect := cosThetaI*cosThetaO > 0
	refract := cosThetaI*cosThetaO < 0
	frontSide := cosThetaI > 0

	etaPath := b.eta
	if !frontSide {
		etaPath = 1 / b.eta
	}

	dist := b.distribution(pp)
	wh := halfway(si.Wi, wo, reflect, etaPath)
	fSpec, _, _, _ := DielectricFresnel(si.Wi.Dot(wh), b.eta)

	probs := b.lobeProbabilities(frontSide, fSpec, pp)

	// Jacobian of the half vector mapping
	dotWiH, dotWoH := si.Wi.Dot(wh), wo.Dot(wh)
	dwhDwo := math.Abs(1 / (4 * dotWoH))
	if b.hasSpecTrans() && !reflect {
		denom := dotWiH + etaPath*dotWoH
		dwhDwo = math.Abs(etaPath * etaPath * dotWoH / (denom * denom))
	}

	wiUp := si.Wi.MulSign(cosThetaI)
	var pdf float64

	reflectMacMic := reflect && MacMicCompatible(wh, si.Wi, wo, cosThetaI, true)
	if reflectMacMic {
		pdf += probs.specReflect * dist.PDF(wiUp, wh) * dwhDwo
	}
	if reflect {
		pdf += probs.diffuse * core.CosineHemispherePDF(wo)
	}
	if b.hasSpecTrans() && refract && MacMicCompatible(wh, si.Wi, wo, cosThetaI, false) {
		pdf += probs.specTrans * dist.PDF(wiUp, wh) * dwhDwo
	}
	if b.hasClearcoat() && reflectMacMic {
		gloss := b.clearcoatGloss.Eval1(si)
		pdf += probs.clearcoat * microfacet.NewGTR1(microfacet.ClearcoatAlpha(gloss)).PDF(wh) * dwhDwo
	}
	return pdf
}

// EvalDiffuseReflectance returns the base color
func (b *Principled) EvalDiffuseReflectance(si *core.SurfaceInteraction) core.Vec3 {
	return b.baseColor.Eval(si)
}

// Traverse exposes every parameter, including disabled optional lobes
func (b *Principled) Traverse(callback TraversalCallback) {
	callback.PutTexture("base_color", &b.baseColor, Differentiable)
	callback.PutTexture("roughness", &b.roughness, Differentiable|Discontinuous)
	callback.PutTexture("anisotropic", &b.anisotropic, Differentiable|Discontinuous)
	callback.PutTexture("metallic", &b.metallic, Differentiable|Discontinuous)
	callback.PutTexture("spec_trans", &b.specTrans, Differentiable|Discontinuous)
	callback.PutTexture("spec_tint", &b.specTint, Differentiable)
	callback.PutTexture("sheen", &b.sheen, Differentiable)
	callback.PutTexture("sheen_tint", &b.sheenTint, Differentiable)
	callback.PutTexture("flatness", &b.flatness, Differentiable)
	callback.PutTexture("clearcoat", &b.clearcoat, Differentiable|Discontinuous)
	callback.PutTexture("clearcoat_gloss", &b.clearcoatGloss, Differentiable|Discontinuous)

	if b.etaSpecified {
		callback.PutFloat("eta", &b.eta, Differentiable|Discontinuous)
	} else {
		callback.PutFloat("specular", &b.specular, Differentiable|Discontinuous)
	}

	callback.PutFloat("diffuse_reflectance_sampling_rate", &b.diffuseRate, NonDifferentiable)
	callback.PutFloat("main_specular_sampling_rate", &b.specularRate, NonDifferentiable)
	callback.PutFloat("clearcoat_sampling_rate", &b.clearcoatRate, NonDifferentiable)
}

// ParametersChanged re-derives the active lobes and eta after an update
func (b *Principled) ParametersChanged(keys []string) error {
	for _, slot := range []*texture.Texture{
		&b.anisotropic, &b.metallic, &b.specTrans, &b.specTint,
		&b.sheen, &b.sheenTint, &b.flatness, &b.clearcoat,
	} {
		*slot = disableIfZero(*slot)
	}

	if err := requireTextures(map[string]texture.Texture{
		"base_color":      b.baseColor,
		"roughness":       b.roughness,
		"clearcoat_gloss": b.clearcoatGloss,
	}); err != nil {
		return err
	}
	if err := validateSamplingRates(map[string]float64{
		"diffuse_reflectance_sampling_rate": b.diffuseRate,
		"main_specular_sampling_rate":       b.specularRate,
		"clearcoat_sampling_rate":           b.clearcoatRate,
	}); err != nil {
		return err
	}

	// A changed specular/eta (or newly enabled transmission) needs the
	// coupled quantity and the degenerate value guards refreshed
	if len(keys) == 0 || containsKey(keys, "eta") || containsKey(keys, "specular") || containsKey(keys, "spec_trans") {
		if err := b.deriveEta(); err != nil {
			return err
		}
	}

	b.InitializeLobes()
	return nil
}

func (b *Principled) String() string {
	var sb strings.Builder
	sb.WriteString("Principled[\n")
	fmt.Fprintf(&sb, "  base_color = %v,\n", b.baseColor)
	fmt.Fprintf(&sb, "  roughness = %v,\n", b.roughness)
	writeOptional(&sb, "anisotropic", b.anisotropic)
	writeOptional(&sb, "metallic", b.metallic)
	writeOptional(&sb, "spec_trans", b.specTrans)
	writeOptional(&sb, "spec_tint", b.specTint)
	writeOptional(&sb, "sheen", b.sheen)
	writeOptional(&sb, "sheen_tint", b.sheenTint)
	writeOptional(&sb, "flatness", b.flatness)
	writeOptional(&sb, "clearcoat", b.clearcoat)
	if b.hasClearcoat() {
		fmt.Fprintf(&sb, "  clearcoat_gloss = %v,\n", b.clearcoatGloss)
	}
	fmt.Fprintf(&sb, "  eta = %g,\n", b.eta)
	fmt.Fprintf(&sb, "  specular = %g,\n", b.specular)
	fmt.Fprintf(&sb, "  diffuse_reflectance_sampling_rate = %g,\n", b.diffuseRate)
	fmt.Fprintf(&sb, "  main_specular_sampling_rate = %g,\n", b.specularRate)
	fmt.Fprintf(&sb, "  clearcoat_sampling_rate = %g\n", b.clearcoatRate)
	sb.WriteString("]")
	return sb.String()
}
