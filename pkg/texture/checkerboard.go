package texture

import (
	"fmt"
	"math"

	"github.com/df07/go-principled/pkg/core"
)

// Checkerboard is a procedural two-color checkerboard in UV space with one
// check per half unit
type Checkerboard struct {
	Color0 Texture
	Color1 Texture
}

// NewCheckerboard creates a checkerboard alternating between two textures
func NewCheckerboard(color0, color1 Texture) *Checkerboard {
	return &Checkerboard{Color0: color0, Color1: color1}
}

func (c *Checkerboard) pick(si *core.SurfaceInteraction) Texture {
	u := si.UV.X - math.Floor(si.UV.X)
	v := si.UV.Y - math.Floor(si.UV.Y)
	if (u < 0.5) == (v < 0.5) {
		return c.Color0
	}
	return c.Color1
}

// Eval returns the color of the check containing the interaction
func (c *Checkerboard) Eval(si *core.SurfaceInteraction) core.Vec3 {
	return c.pick(si).Eval(si)
}

// Eval1 returns the scalar value of the check containing the interaction
func (c *Checkerboard) Eval1(si *core.SurfaceInteraction) float64 {
	return c.pick(si).Eval1(si)
}

// Mean averages both colors, which cover equal areas
func (c *Checkerboard) Mean() float64 {
	return 0.5 * (c.Color0.Mean() + c.Color1.Mean())
}

// IsSpatiallyVarying is true for checkerboards
func (c *Checkerboard) IsSpatiallyVarying() bool {
	return true
}

func (c *Checkerboard) String() string {
	return fmt.Sprintf("Checkerboard[color0=%v, color1=%v]", c.Color0, c.Color1)
}
