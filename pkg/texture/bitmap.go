package texture

import (
	"fmt"
	"math"

	"github.com/df07/go-principled/pkg/core"
)

// FilterType selects how a bitmap is reconstructed between texels
type FilterType int

const (
	FilterBilinear FilterType = iota
	FilterNearest
)

// WrapMode selects how UV coordinates outside [0, 1] are handled
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapMirror
	WrapClamp
)

// ParseFilterType maps a filter name to its FilterType
func ParseFilterType(name string) (FilterType, error) {
	switch name {
	case "", "bilinear":
		return FilterBilinear, nil
	case "nearest":
		return FilterNearest, nil
	}
	return FilterBilinear, fmt.Errorf("%w: filter type %q", ErrInvalidOption, name)
}

// ParseWrapMode maps a wrap mode name to its WrapMode
func ParseWrapMode(name string) (WrapMode, error) {
	switch name {
	case "", "repeat":
		return WrapRepeat, nil
	case "mirror":
		return WrapMirror, nil
	case "clamp":
		return WrapClamp, nil
	}
	return WrapRepeat, fmt.Errorf("%w: wrap mode %q", ErrInvalidOption, name)
}

// Bitmap provides values from a 2D image
type Bitmap struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x], y=0 is the top row
	Filter FilterType
	Wrap   WrapMode
	Name   string // Source file name, informational

	mean float64
	gray bool
}

// NewBitmap creates a new bitmap texture
func NewBitmap(width, height int, pixels []core.Vec3) *Bitmap {
	b := &Bitmap{
		Width:  width,
		Height: height,
		Pixels: pixels,
		gray:   true,
	}

	var sum float64
	for _, p := range pixels {
		if p.X != p.Y || p.Y != p.Z {
			b.gray = false
		}
	}
	for _, p := range pixels {
		sum += b.scalar(p)
	}
	if len(pixels) > 0 {
		b.mean = sum / float64(len(pixels))
	}
	return b
}

// Eval samples the bitmap at the interaction's UV coordinates
func (b *Bitmap) Eval(si *core.SurfaceInteraction) core.Vec3 {
	if b.Filter == FilterNearest {
		return b.nearest(si.UV)
	}
	return b.bilinear(si.UV)
}

// Eval1 returns the scalar value, or the luminance for colored bitmaps
func (b *Bitmap) Eval1(si *core.SurfaceInteraction) float64 {
	return b.scalar(b.Eval(si))
}

// Mean returns the average scalar texel value
func (b *Bitmap) Mean() float64 {
	return b.mean
}

// IsSpatiallyVarying is true for bitmaps
func (b *Bitmap) IsSpatiallyVarying() bool {
	return true
}

func (b *Bitmap) String() string {
	return fmt.Sprintf("Bitmap[%dx%d, name=%q]", b.Width, b.Height, b.Name)
}

func (b *Bitmap) scalar(p core.Vec3) float64 {
	if b.gray {
		return p.X
	}
	return p.Luminance()
}

func (b *Bitmap) nearest(uv core.Vec2) core.Vec3 {
	// V=0 is bottom, V=1 is top (flip V for image coordinates where origin is top-left)
	x := int(math.Floor(uv.X * float64(b.Width)))
	y := int(math.Floor((1.0 - uv.Y) * float64(b.Height)))
	return b.texel(x, y)
}

func (b *Bitmap) bilinear(uv core.Vec2) core.Vec3 {
	fx := uv.X*float64(b.Width) - 0.5
	fy := (1.0-uv.Y)*float64(b.Height) - 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := fx - x0
	ty := fy - y0
	ix, iy := int(x0), int(y0)

	top := b.texel(ix, iy).Lerp(b.texel(ix+1, iy), tx)
	bottom := b.texel(ix, iy+1).Lerp(b.texel(ix+1, iy+1), tx)
	return top.Lerp(bottom, ty)
}

func (b *Bitmap) texel(x, y int) core.Vec3 {
	x = wrapIndex(x, b.Width, b.Wrap)
	y = wrapIndex(y, b.Height, b.Wrap)
	return b.Pixels[y*b.Width+x]
}

func wrapIndex(i, size int, mode WrapMode) int {
	switch mode {
	case WrapClamp:
		return max(0, min(size-1, i))
	case WrapMirror:
		period := 2 * size
		i %= period
		if i < 0 {
			i += period
		}
		if i >= size {
			i = period - 1 - i
		}
		return i
	default:
		i %= size
		if i < 0 {
			i += size
		}
		return i
	}
}
