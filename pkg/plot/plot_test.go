package plot

import (
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/loaders"
	"github.com/df07/go-principled/pkg/material"
)

func TestLobe_Direction(t *testing.T) {
	l := &Lobe{Width: 8, Height: 4}

	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if d := l.Direction(x, y); math.Abs(d.Length()-1) > 1e-12 {
				t.Errorf("Pixel (%d, %d): direction %v is not unit length", x, y, d)
			}
		}
	}
	if l.Direction(0, 0).Z <= 0 || l.Direction(0, l.Height-1).Z >= 0 {
		t.Error("Expected row 0 at the upper pole and the last row at the lower pole")
	}
}

func TestTabulate_Lambertian(t *testing.T) {
	bsdf := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	lobe, err := Tabulate(bsdf, material.NewContext(material.Radiance), core.NewVec3(0, 0, 1), 16, 8)
	if err != nil {
		t.Fatal(err)
	}

	for y := 0; y < lobe.Height; y++ {
		for x := 0; x < lobe.Width; x++ {
			wo := lobe.Direction(x, y)
			pdf := lobe.PDF[y*lobe.Width+x]
			expected := math.Max(0, wo.Z) / math.Pi
			if math.Abs(pdf-expected) > 1e-12 {
				t.Errorf("Pixel (%d, %d): pdf %f, expected %f", x, y, pdf, expected)
			}
			if y >= lobe.Height/2 && !lobe.Eval[y*lobe.Width+x].IsZero() {
				t.Errorf("Pixel (%d, %d): expected no value below the surface", x, y)
			}
		}
	}
}

func TestTabulate_InvalidInput(t *testing.T) {
	bsdf := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	ctx := material.NewContext(material.Radiance)

	if _, err := Tabulate(bsdf, ctx, core.NewVec3(0, 0, 1), 0, 8); err == nil {
		t.Error("Expected error for zero width")
	}
	if _, err := Tabulate(bsdf, ctx, core.Vec3{}, 8, 8); err == nil {
		t.Error("Expected error for zero incident direction")
	}
}

func TestWrite(t *testing.T) {
	bsdf := material.NewLambertian(core.NewVec3(0.8, 0.4, 0.2))
	lobe, err := Tabulate(bsdf, material.NewContext(material.Radiance), core.NewVec3(0.3, 0, 0.9), 16, 8)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	t.Run("png", func(t *testing.T) {
		path := filepath.Join(dir, "lobe.png")
		if err := Write(path, lobe); err != nil {
			t.Fatal(err)
		}
		file, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer file.Close()
		img, err := png.Decode(file)
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 8 {
			t.Errorf("Expected 32x8 image, got %v", b)
		}
	})

	t.Run("exr", func(t *testing.T) {
		path := filepath.Join(dir, "lobe.exr")
		if err := Write(path, lobe); err != nil {
			t.Fatal(err)
		}
		data, err := loaders.LoadImage(path, false)
		if err != nil {
			t.Fatal(err)
		}
		if data.Width != 32 || data.Height != 8 {
			t.Fatalf("Expected 32x8 image, got %dx%d", data.Width, data.Height)
		}
		// Right half holds the linear pdf
		got := data.Pixels[2*data.Width+lobe.Width+3].X
		want := lobe.PDF[2*lobe.Width+3]
		if math.Abs(got-want) > 1e-3*math.Max(1, want) {
			t.Errorf("Expected pdf %f, got %f", want, got)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		err := Write(filepath.Join(dir, "lobe.bmp"), lobe)
		if !errors.Is(err, loaders.ErrUnsupportedFormat) {
			t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
		}
	})
}
