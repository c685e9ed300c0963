package chi2

import (
	"fmt"
	"runtime"

	"github.com/df07/go-principled/pkg/material"
)

// Config controls the statistical tests
type Config struct {
	ThetaRes          int     // Histogram bins along cos(theta)
	PhiRes            int     // Histogram bins along phi
	SampleCount       int     // Number of BSDF samples drawn
	ChunkSize         int     // Samples per worker task
	Subdivisions      int     // Initial midpoint cells per bin side when integrating the pdf
	SignificanceLevel float64 // Probability of rejecting a correct implementation
	TestCount         int     // Number of tests run together, for the Sidak correction
	MinExpFrequency   float64 // Bins with fewer expected samples are pooled
	Workers           int     // Worker goroutines, 0 = one per CPU
	Seed              int64   // Base seed; task i uses Seed+i
	Mode              material.TransportMode
}

// DefaultConfig returns the settings used by the CLI
func DefaultConfig() Config {
	return Config{
		ThetaRes:          20,
		PhiRes:            40,
		SampleCount:       1000000,
		ChunkSize:         10000,
		Subdivisions:      6,
		SignificanceLevel: 0.01,
		TestCount:         1,
		MinExpFrequency:   5,
		Workers:           0,
		Seed:              1,
		Mode:              material.Radiance,
	}
}

// Validate checks the configuration and fills in the worker count
func (c *Config) Validate() error {
	switch {
	case c.ThetaRes < 1 || c.PhiRes < 1:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidConfig, c.ThetaRes, c.PhiRes)
	case c.SampleCount < 1:
		return fmt.Errorf("%w: sample count %d", ErrInvalidConfig, c.SampleCount)
	case c.ChunkSize < 1:
		return fmt.Errorf("%w: chunk size %d", ErrInvalidConfig, c.ChunkSize)
	case c.Subdivisions < 1:
		return fmt.Errorf("%w: subdivisions %d", ErrInvalidConfig, c.Subdivisions)
	case !(c.SignificanceLevel > 0 && c.SignificanceLevel < 1):
		return fmt.Errorf("%w: significance level %g", ErrInvalidConfig, c.SignificanceLevel)
	case c.TestCount < 1:
		return fmt.Errorf("%w: test count %d", ErrInvalidConfig, c.TestCount)
	case c.MinExpFrequency < 0:
		return fmt.Errorf("%w: minimum expected frequency %g", ErrInvalidConfig, c.MinExpFrequency)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}
