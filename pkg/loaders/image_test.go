package loaders

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-principled/pkg/core"
	"github.com/mrjoshuak/go-openexr/exr"
)

func writePNG(t *testing.T, path string) {
	t.Helper()

	// Create a simple 2x2 test image
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255}) // Top-left: white
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})     // Top-right: red
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})     // Bottom-left: green
	img.Set(1, 1, color.RGBA{R: 128, G: 128, B: 128, A: 255}) // Bottom-right: mid gray

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
}

// TestLoadImage creates a test PNG and verifies loading
func TestLoadImage(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.png")
	writePNG(t, testFile)

	imageData, err := LoadImage(testFile, true)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}

	if imageData.Width != 2 || imageData.Height != 2 {
		t.Errorf("Expected 2x2 image, got %dx%d", imageData.Width, imageData.Height)
	}
	if len(imageData.Pixels) != 4 {
		t.Fatalf("Expected 4 pixels, got %d", len(imageData.Pixels))
	}

	tests := []struct {
		index    int
		expected core.Vec3
	}{
		{0, core.NewVec3(1, 1, 1)},
		{1, core.NewVec3(1, 0, 0)},
		{2, core.NewVec3(0, 1, 0)},
		{3, core.Splat(128.0 / 255.0)},
	}
	for _, tt := range tests {
		if imageData.Pixels[tt.index].Subtract(tt.expected).Length() > 1e-3 {
			t.Errorf("Pixel %d: expected %v, got %v", tt.index, tt.expected, imageData.Pixels[tt.index])
		}
	}
}

func TestLoadImage_SRGBDecoding(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.png")
	writePNG(t, testFile)

	imageData, err := LoadImage(testFile, false)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}

	// sRGB 128/255 decodes to roughly 0.2158 linear
	gray := imageData.Pixels[3].X
	if math.Abs(gray-0.2158) > 2e-3 {
		t.Errorf("Expected linearized gray ~0.2158, got %f", gray)
	}
	if imageData.Pixels[0] != core.NewVec3(1, 1, 1) {
		t.Errorf("White should stay white, got %v", imageData.Pixels[0])
	}
}

func TestLoadBitmap_EXR(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "roughness.exr")

	img := exr.NewRGBAImage(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, 0.25, 0.25, 0.25, 1)
	img.SetRGBA(1, 0, 2.0, 0.5, 0.125, 1)
	if err := exr.EncodeFile(testFile, img); err != nil {
		t.Fatalf("Failed to encode EXR: %v", err)
	}

	bitmap, err := LoadBitmap(testFile, false)
	if err != nil {
		t.Fatalf("LoadBitmap failed: %v", err)
	}
	if bitmap.Width != 2 || bitmap.Height != 1 {
		t.Fatalf("Expected 2x1 bitmap, got %dx%d", bitmap.Width, bitmap.Height)
	}

	// Values are exactly representable in half precision and not gamma decoded
	if bitmap.Pixels[0] != core.Splat(0.25) {
		t.Errorf("Expected linear 0.25, got %v", bitmap.Pixels[0])
	}
	if bitmap.Pixels[1] != core.NewVec3(2.0, 0.5, 0.125) {
		t.Errorf("Expected HDR texel (2, 0.5, 0.125), got %v", bitmap.Pixels[1])
	}
	if bitmap.Name != "roughness.exr" {
		t.Errorf("Expected bitmap name to be the file name, got %q", bitmap.Name)
	}
}

func TestLoadImage_MissingFile(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"), false)
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a wrapped not-exist error, got %v", err)
	}
}
