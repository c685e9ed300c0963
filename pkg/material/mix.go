package material

import (
	"fmt"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/props"
	"github.com/df07/go-principled/pkg/texture"
)

// Mix linearly blends two BSDFs ("blendbsdf" plugin). A weight of 0 is all
// of the first BSDF, 1 is all of the second.
type Mix struct {
	weight texture.Texture
	bsdf0  BSDF
	bsdf1  BSDF

	components []BSDFFlags
}

// NewMix creates a mix of two BSDFs with a constant weight
func NewMix(bsdf0, bsdf1 BSDF, weight float64) *Mix {
	m := &Mix{weight: texture.NewConstant(weight), bsdf0: bsdf0, bsdf1: bsdf1}
	m.initializeComponents()
	return m
}

// NewMixFromProperties creates a mix from a property bag holding the nested
// descriptions bsdf_0 and bsdf_1
func NewMixFromProperties(p *props.Properties) (*Mix, error) {
	r := propReader{p: p}
	m := &Mix{
		weight: r.texture("weight", 0.5),
		bsdf0:  r.bsdf("bsdf_0"),
		bsdf1:  r.bsdf("bsdf_1"),
	}
	if r.err != nil {
		return nil, r.err
	}
	m.initializeComponents()
	return m, nil
}

func (m *Mix) initializeComponents() {
	m.components = append(m.bsdf0.Components(), m.bsdf1.Components()...)
}

// evalWeight clamps the weight texture to [0, 1]
func (m *Mix) evalWeight(si *core.SurfaceInteraction) float64 {
	return core.Clamp(m.weight.Eval1(si), 0, 1)
}

// Sample chooses one of the BSDFs and remaps sample1 for it
func (m *Mix) Sample(ctx Context, si *core.SurfaceInteraction, sample1 float64, sample2 core.Vec2) (BSDFSample, core.Vec3) {
	w := m.evalWeight(si)

	// A zero weight never selects the second BSDF, even for sample1 = 0
	if w == 0 || sample1 > w {
		return m.bsdf0.Sample(ctx, si, (sample1-w)/(1-w), sample2)
	}
	return m.bsdf1.Sample(ctx, si, sample1/w, sample2)
}

// Eval combines both BSDF values with the blend weight
func (m *Mix) Eval(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) core.Vec3 {
	w := m.evalWeight(si)
	v0 := m.bsdf0.Eval(ctx, si, wo)
	v1 := m.bsdf1.Eval(ctx, si, wo)
	return v0.Multiply(1 - w).Add(v1.Multiply(w))
}

// PDF combines both densities with the blend weight
func (m *Mix) PDF(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) float64 {
	w := m.evalWeight(si)
	return (1-w)*m.bsdf0.PDF(ctx, si, wo) + w*m.bsdf1.PDF(ctx, si, wo)
}

func (m *Mix) EvalDiffuseReflectance(si *core.SurfaceInteraction) core.Vec3 {
	w := m.evalWeight(si)
	d0 := m.bsdf0.EvalDiffuseReflectance(si)
	d1 := m.bsdf1.EvalDiffuseReflectance(si)
	return d0.Multiply(1 - w).Add(d1.Multiply(w))
}

func (m *Mix) Flags() BSDFFlags { return unionFlags(m.components) }

// Components lists the components of the first BSDF followed by the second
func (m *Mix) Components() []BSDFFlags {
	return append([]BSDFFlags(nil), m.components...)
}

func (m *Mix) Traverse(callback TraversalCallback) {
	callback.PutTexture("weight", &m.weight, Differentiable)
	callback.PutObject("bsdf_0", m.bsdf0)
	callback.PutObject("bsdf_1", m.bsdf1)
}

// ParametersChanged refreshes the component list; nested BSDFs have already
// been notified
func (m *Mix) ParametersChanged(keys []string) error {
	if err := requireTextures(map[string]texture.Texture{"weight": m.weight}); err != nil {
		return err
	}
	m.initializeComponents()
	return nil
}

func (m *Mix) String() string {
	return fmt.Sprintf("Mix[\n  weight = %v,\n  bsdf_0 = %v,\n  bsdf_1 = %v\n]", m.weight, m.bsdf0, m.bsdf1)
}
