package material

import (
	"github.com/df07/go-principled/pkg/core"
)

// TransportMode tells a BSDF which quantity the caller is transporting
type TransportMode int

const (
	// Radiance is transported from the sensor towards the lights
	Radiance TransportMode = iota
	// Importance is transported from the lights towards the sensor
	Importance
)

func (m TransportMode) String() string {
	if m == Importance {
		return "importance"
	}
	return "radiance"
}

// Context carries per-query state shared by Sample, Eval and PDF
type Context struct {
	Mode TransportMode
}

// NewContext creates a context for the given transport mode
func NewContext(mode TransportMode) Context {
	return Context{Mode: mode}
}

// BSDFSample describes a direction produced by BSDF.Sample
type BSDFSample struct {
	Wo               core.Vec3 // Sampled outgoing direction in the local frame
	PDF              float64   // Density of the full mixture at Wo
	Eta              float64   // Relative index of refraction along the sampled direction
	SampledType      BSDFFlags // Lobe type that produced Wo
	SampledComponent int       // Lobe index that produced Wo
}

// Traversable objects expose their parameters to a TraversalCallback and
// re-derive dependent state after those parameters are modified
type Traversable interface {
	Traverse(callback TraversalCallback)
	ParametersChanged(keys []string) error
}

// BSDF is a surface scattering model evaluated in the local shading frame,
// where +Z is the shading normal. Implementations are safe for concurrent
// Sample/Eval/PDF calls as long as nobody modifies their parameters.
type BSDF interface {
	Traversable

	// Sample draws an outgoing direction and returns it together with the
	// importance weight Eval/PDF. An invalid sample has zero weight and pdf.
	Sample(ctx Context, si *core.SurfaceInteraction, sample1 float64, sample2 core.Vec2) (BSDFSample, core.Vec3)

	// Eval returns the BSDF value times |cos(theta_o)| for the pair (si.Wi, wo)
	Eval(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) core.Vec3

	// PDF returns the density with which Sample produces wo
	PDF(ctx Context, si *core.SurfaceInteraction, wo core.Vec3) float64

	// EvalDiffuseReflectance returns the diffuse albedo at the interaction
	EvalDiffuseReflectance(si *core.SurfaceInteraction) core.Vec3

	// Flags is the union of all component flags
	Flags() BSDFFlags

	// Components lists the flags of each lobe
	Components() []BSDFFlags

	String() string
}
