package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/texture"
	"github.com/mrjoshuak/go-jpeg2000"
	"github.com/mrjoshuak/go-openexr/exr"
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Linear RGB, row-major, top row first
}

// LoadImage loads an image and converts it to a linear Vec3 color array.
// The decoder is chosen by file extension: .exr files are read as linear
// HDR data, .jp2/.j2k/.jpf as JPEG 2000, anything else through the
// standard library (PNG, JPEG). 8-bit formats are treated as sRGB encoded
// unless raw is set.
func LoadImage(filename string, raw bool) (*ImageData, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".exr":
		return loadEXR(filename)
	case ".jp2", ".j2k", ".jpf":
		return loadDecoded(filename, raw, func(f *os.File) (image.Image, error) {
			return jpeg2000.Decode(f)
		})
	default:
		return loadDecoded(filename, raw, func(f *os.File) (image.Image, error) {
			img, _, err := image.Decode(f)
			return img, err
		})
	}
}

// LoadBitmap loads an image file into a bitmap texture
func LoadBitmap(filename string, raw bool) (*texture.Bitmap, error) {
	data, err := LoadImage(filename, raw)
	if err != nil {
		return nil, err
	}
	bitmap := texture.NewBitmap(data.Width, data.Height, data.Pixels)
	bitmap.Name = filepath.Base(filename)
	return bitmap, nil
}

func loadDecoded(filename string, raw bool, decode func(*os.File) (image.Image, error)) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, filename)
	}
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			c := core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
			if !raw {
				c = core.NewVec3(srgbToLinear(c.X), srgbToLinear(c.Y), srgbToLinear(c.Z))
			}
			pixels[y*width+x] = c
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

func loadEXR(filename string) (*ImageData, error) {
	img, err := exr.DecodeFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXR image %s: %w", filename, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, filename)
	}
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.RGBA(x+bounds.Min.X, y+bounds.Min.Y)
			pixels[y*width+x] = core.NewVec3(float64(r), float64(g), float64(b))
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
