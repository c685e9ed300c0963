package texture

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-principled/pkg/core"
)

func at(u, v float64) *core.SurfaceInteraction {
	return &core.SurfaceInteraction{UV: core.NewVec2(u, v)}
}

// TestBitmapNearest tests basic texture sampling
func TestBitmapNearest(t *testing.T) {
	// Create a 2x2 checkerboard pattern
	// Layout:
	//   white black
	//   black white
	pixels := []core.Vec3{
		core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0), // Row 0 (top in image coords)
		core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), // Row 1 (bottom in image coords)
	}
	bitmap := NewBitmap(2, 2, pixels)
	bitmap.Filter = FilterNearest

	white := core.NewVec3(1, 1, 1)
	black := core.NewVec3(0, 0, 0)

	tests := []struct {
		u, v     float64
		expected core.Vec3
	}{
		{0.1, 0.1, black}, // bottom-left maps to image coords (0, 1)
		{0.9, 0.1, white}, // bottom-right maps to image coords (1, 1)
		{0.1, 0.9, white}, // top-left maps to image coords (0, 0)
		{0.9, 0.9, black}, // top-right maps to image coords (1, 0)
	}

	for _, tt := range tests {
		result := bitmap.Eval(at(tt.u, tt.v))
		if result != tt.expected {
			t.Errorf("UV(%.1f,%.1f): expected %v, got %v", tt.u, tt.v, tt.expected, result)
		}
	}

	if bitmap.Mean() != 0.5 {
		t.Errorf("Mean should be 0.5, got %f", bitmap.Mean())
	}
}

// TestBitmapWrapping tests UV wrapping behavior
func TestBitmapWrapping(t *testing.T) {
	// Simple 1x1 red texture
	bitmap := NewBitmap(1, 1, []core.Vec3{core.NewVec3(1, 0, 0)})
	red := core.NewVec3(1, 0, 0)

	for _, mode := range []WrapMode{WrapRepeat, WrapMirror, WrapClamp} {
		bitmap.Wrap = mode
		for _, uv := range []core.Vec2{
			core.NewVec2(0.5, 0.5),   // Normal case
			core.NewVec2(1.5, 0.5),   // U wraps
			core.NewVec2(-0.5, -0.5), // Negative wrap
			core.NewVec2(2.3, 3.7),   // Large values
		} {
			result := bitmap.Eval(at(uv.X, uv.Y))
			if result.Subtract(red).Length() > 1e-12 {
				t.Errorf("mode %d, UV%v: expected %v, got %v", mode, uv, red, result)
			}
		}
	}
}

func TestBitmapBilinear(t *testing.T) {
	// 2x1 gradient from black to white
	bitmap := NewBitmap(2, 1, []core.Vec3{core.Splat(0), core.Splat(1)})
	bitmap.Wrap = WrapClamp

	// Texel centers sit at u=0.25 and u=0.75
	if v := bitmap.Eval1(at(0.25, 0.5)); math.Abs(v) > 1e-12 {
		t.Errorf("Expected 0 at the first texel center, got %f", v)
	}
	if v := bitmap.Eval1(at(0.5, 0.5)); math.Abs(v-0.5) > 1e-12 {
		t.Errorf("Expected 0.5 halfway between texels, got %f", v)
	}
	if v := bitmap.Eval1(at(0.75, 0.5)); math.Abs(v-1) > 1e-12 {
		t.Errorf("Expected 1 at the second texel center, got %f", v)
	}
}

func TestWrapIndexMirror(t *testing.T) {
	expected := map[int]int{-1: 0, 0: 0, 2: 2, 3: 2, 4: 1, 5: 0, 6: 0, -2: 1}
	for in, want := range expected {
		if got := wrapIndex(in, 3, WrapMirror); got != want {
			t.Errorf("wrapIndex(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestConstant(t *testing.T) {
	scalar := NewConstant(0.3)
	if scalar.Eval1(nil) != 0.3 || scalar.Mean() != 0.3 {
		t.Errorf("Scalar constant should report 0.3, got %f", scalar.Eval1(nil))
	}
	if !IsConstantValue(scalar, 0.3) || IsConstantValue(scalar, 0) {
		t.Error("IsConstantValue mismatch")
	}

	color := NewConstantRGB(core.NewVec3(1, 0, 0))
	if math.Abs(color.Eval1(nil)-0.212671) > 1e-9 {
		t.Errorf("Colored constant should report its luminance, got %f", color.Eval1(nil))
	}
	if color.IsSpatiallyVarying() {
		t.Error("Constants never vary spatially")
	}
}

func TestCheckerboard(t *testing.T) {
	checker := NewCheckerboard(NewConstant(0.2), NewConstant(0.8))

	if v := checker.Eval1(at(0.25, 0.25)); v != 0.2 {
		t.Errorf("Expected color0 in the lower-left check, got %f", v)
	}
	if v := checker.Eval1(at(0.75, 0.25)); v != 0.8 {
		t.Errorf("Expected color1 in the lower-right check, got %f", v)
	}
	if v := checker.Eval1(at(-0.25, 0.25)); v != 0.8 {
		t.Errorf("Negative UVs should wrap, got %f", v)
	}
	if math.Abs(checker.Mean()-0.5) > 1e-12 {
		t.Errorf("Mean should be 0.5, got %f", checker.Mean())
	}
}

func TestParseOptions(t *testing.T) {
	if f, err := ParseFilterType("nearest"); err != nil || f != FilterNearest {
		t.Errorf("Unexpected filter parse result: %v, %v", f, err)
	}
	if _, err := ParseWrapMode("tile"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption, got %v", err)
	}
}
