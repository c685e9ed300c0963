// Package plot tabulates a BSDF over the sphere of outgoing directions and
// writes the result as a lat-long image.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/loaders"
	"github.com/df07/go-principled/pkg/log"
	"github.com/df07/go-principled/pkg/material"
	"github.com/mrjoshuak/go-openexr/exr"
)

var logger = log.New("plot")

// Lobe holds Eval and PDF sampled on a lat-long grid. Row 0 is the +Z pole,
// column 0 is phi = -pi.
type Lobe struct {
	Width  int
	Height int
	Eval   []core.Vec3
	PDF    []float64
}

// Direction returns the outgoing direction at the center of pixel (x, y)
func (l *Lobe) Direction(x, y int) core.Vec3 {
	phi := -math.Pi + (float64(x)+0.5)/float64(l.Width)*2*math.Pi
	theta := (float64(y) + 0.5) / float64(l.Height) * math.Pi
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return core.NewVec3(sinTheta*cosPhi, sinTheta*sinPhi, cosTheta)
}

// Tabulate evaluates bsdf for incident direction wi at every pixel. Rows
// are evaluated concurrently.
func Tabulate(bsdf material.BSDF, ctx material.Context, wi core.Vec3, width, height int) (*Lobe, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid plot resolution %dx%d", width, height)
	}
	if wi.Length() == 0 {
		return nil, fmt.Errorf("invalid incident direction %v", wi)
	}

	lobe := &Lobe{
		Width:  width,
		Height: height,
		Eval:   make([]core.Vec3, width*height),
		PDF:    make([]float64, width*height),
	}
	si := core.NewSurfaceInteraction(wi.Normalize())

	var wg sync.WaitGroup
	for y := 0; y < height; y++ {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			for x := 0; x < width; x++ {
				wo := lobe.Direction(x, y)
				lobe.Eval[y*width+x] = bsdf.Eval(ctx, si, wo)
				lobe.PDF[y*width+x] = bsdf.PDF(ctx, si, wo)
			}
		}(y)
	}
	wg.Wait()

	logger.Debugf("tabulated %s at %dx%d", bsdf, width, height)
	return lobe, nil
}

// Write stores the lobe as a single image with Eval on the left half and
// PDF on the right half. The format follows the file extension: .exr keeps
// linear values, .png normalizes each half and applies gamma 2.0.
func Write(filename string, lobe *Lobe) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".exr":
		return writeEXR(filename, lobe)
	case ".png":
		return writePNG(filename, lobe)
	default:
		return fmt.Errorf("%w: %s", loaders.ErrUnsupportedFormat, filename)
	}
}

// pixel returns the value of column x of the combined image
func (l *Lobe) pixel(x, y int) core.Vec3 {
	if x < l.Width {
		return l.Eval[y*l.Width+x]
	}
	return core.Splat(l.PDF[y*l.Width+x-l.Width])
}

func writeEXR(filename string, lobe *Lobe) error {
	img := exr.NewRGBAImage(image.Rect(0, 0, 2*lobe.Width, lobe.Height))
	for y := 0; y < lobe.Height; y++ {
		for x := 0; x < 2*lobe.Width; x++ {
			v := lobe.pixel(x, y)
			img.SetRGBA(x, y, float32(v.X), float32(v.Y), float32(v.Z), 1)
		}
	}
	if err := exr.EncodeFile(filename, img); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func writePNG(filename string, lobe *Lobe) error {
	maxEval, maxPDF := 0.0, 0.0
	for i := range lobe.Eval {
		maxEval = math.Max(maxEval, lobe.Eval[i].MaxComponent())
		maxPDF = math.Max(maxPDF, lobe.PDF[i])
	}

	img := image.NewRGBA(image.Rect(0, 0, 2*lobe.Width, lobe.Height))
	for y := 0; y < lobe.Height; y++ {
		for x := 0; x < 2*lobe.Width; x++ {
			scale := maxEval
			if x >= lobe.Width {
				scale = maxPDF
			}
			v := lobe.pixel(x, y)
			if scale > 0 {
				v = v.Multiply(1 / scale)
			}
			img.SetRGBA(x, y, toColor(v))
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// toColor converts a linear value to 8-bit with gamma 2.0
func toColor(v core.Vec3) color.RGBA {
	v = v.Clamp(0, 1).Sqrt()
	return color.RGBA{
		R: uint8(255 * v.X),
		G: uint8(255 * v.Y),
		B: uint8(255 * v.Z),
		A: 255,
	}
}
