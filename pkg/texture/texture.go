package texture

import (
	"fmt"

	"github.com/df07/go-principled/pkg/core"
)

// Texture provides spatially-varying scalar or RGB quantities to BSDFs.
// Textures are evaluated concurrently and must not mutate during Eval.
type Texture interface {
	// Eval returns the RGB value at the interaction
	Eval(si *core.SurfaceInteraction) core.Vec3

	// Eval1 returns a scalar value at the interaction. Colored textures
	// report their luminance.
	Eval1(si *core.SurfaceInteraction) float64

	// Mean returns the average scalar value over the texture domain
	Mean() float64

	// IsSpatiallyVarying reports whether Eval depends on the interaction
	IsSpatiallyVarying() bool
}

// Constant provides a uniform value
type Constant struct {
	Value core.Vec3
	gray  bool
}

// NewConstant creates a scalar constant texture
func NewConstant(value float64) *Constant {
	return &Constant{Value: core.Splat(value), gray: true}
}

// NewConstantRGB creates a colored constant texture
func NewConstantRGB(color core.Vec3) *Constant {
	return &Constant{Value: color, gray: color.X == color.Y && color.Y == color.Z}
}

// Eval returns the constant regardless of the interaction
func (c *Constant) Eval(si *core.SurfaceInteraction) core.Vec3 {
	return c.Value
}

// Eval1 returns the scalar value, or the luminance for colors
func (c *Constant) Eval1(si *core.SurfaceInteraction) float64 {
	if c.gray {
		return c.Value.X
	}
	return c.Value.Luminance()
}

// Mean equals Eval1 for a constant
func (c *Constant) Mean() float64 {
	return c.Eval1(nil)
}

// IsSpatiallyVarying is always false for constants
func (c *Constant) IsSpatiallyVarying() bool {
	return false
}

func (c *Constant) String() string {
	if c.gray {
		return fmt.Sprintf("Constant[%g]", c.Value.X)
	}
	return fmt.Sprintf("Constant%v", c.Value)
}

// IsConstantValue reports whether t is a constant whose scalar value equals v
func IsConstantValue(t Texture, v float64) bool {
	c, ok := t.(*Constant)
	return ok && c.Value == core.Splat(v)
}
