package material

import (
	"fmt"
	"math"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/props"
	"github.com/df07/go-principled/pkg/texture"
)

// Lambertian represents a perfectly diffuse material ("diffuse" plugin)
type Lambertian struct {
	reflectance texture.Texture // Base color/reflectance (can be solid or textured)
}

// NewLambertian creates a lambertian BSDF with a solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{reflectance: texture.NewConstantRGB(albedo)}
}

// NewLambertianFromProperties creates a lambertian BSDF from a property bag
func NewLambertianFromProperties(p *props.Properties) (*Lambertian, error) {
	r := propReader{p: p}
	l := &Lambertian{reflectance: r.texture("reflectance", 0.5)}
	if r.err != nil {
		return nil, r.err
	}
	return l, nil
}

// Sample draws a cosine-weighted direction on the front side
func (l *Lambertian) Sample(ctx Context, si *core.SurfaceInteraction, sample1 float64, sample2 core.Vec2) (BSDFSample, core.Vec3) {
	if core.CosTheta(si.Wi) <= 0 {
		return BSDFSample{}, core.Vec3{}
	}

	wo := core.SampleCosineHemisphere(sample2)
	pdf := core.CosineHemispherePDF(wo)
	if !(pdf > 0) {
		return BSDFSample{}, core.Vec3{}
	}

	bs := BSDFSample{
		Wo:               wo,
		PDF:              pdf,
		Eta:              1,
		SampledType:      DiffuseReflection,
		SampledComponent: 0,
	}
	// albedo/pi * cos / (cos/pi)
	return bs, l.reflectance.Eval(si)
}

// Eval returns reflectance/pi * cos(theta_o)
func (l *Lambertian) Eval(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) core.Vec3 {
	cosThetaI, cosThetaO := core.CosTheta(si.Wi), core.CosTheta(wo)
	if cosThetaI <= 0 || cosThetaO <= 0 {
		return core.Vec3{} // Below surface
	}
	return l.reflectance.Eval(si).Multiply(cosThetaO / math.Pi)
}

// PDF returns the cosine-weighted hemisphere density
func (l *Lambertian) PDF(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) float64 {
	if core.CosTheta(si.Wi) <= 0 || core.CosTheta(wo) <= 0 {
		return 0
	}
	return core.CosineHemispherePDF(wo)
}

// EvalDiffuseReflectance returns the reflectance
func (l *Lambertian) EvalDiffuseReflectance(si *core.SurfaceInteraction) core.Vec3 {
	return l.reflectance.Eval(si)
}

func (l *Lambertian) Flags() BSDFFlags { return DiffuseReflection | FrontSide }

func (l *Lambertian) Components() []BSDFFlags { return []BSDFFlags{DiffuseReflection | FrontSide} }

func (l *Lambertian) Traverse(callback TraversalCallback) {
	callback.PutTexture("reflectance", &l.reflectance, Differentiable)
}

func (l *Lambertian) ParametersChanged(keys []string) error {
	return requireTextures(map[string]texture.Texture{"reflectance": l.reflectance})
}

func (l *Lambertian) String() string {
	return fmt.Sprintf("Lambertian[reflectance = %v]", l.reflectance)
}
