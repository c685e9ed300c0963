package chi2

import (
	"math"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/material"
)

// maxComponents bounds the sampled component identifiers tracked per lobe
const maxComponents = 4

// WeightStats accumulates importance weights returned by BSDF.Sample
type WeightStats struct {
	WeightAccum      core.Vec3 // RGB accumulator for the mean weight
	LuminanceAccum   float64   // Luminance accumulator
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of samples taken, including invalid ones
}

// AddSample adds a weight to the statistics
func (ws *WeightStats) AddSample(weight core.Vec3) {
	ws.WeightAccum = ws.WeightAccum.Add(weight)
	luminance := weight.Luminance()
	ws.LuminanceAccum += luminance
	ws.LuminanceSqAccum += luminance * luminance
	ws.SampleCount++
}

// Merge folds other into ws
func (ws *WeightStats) Merge(other WeightStats) {
	ws.WeightAccum = ws.WeightAccum.Add(other.WeightAccum)
	ws.LuminanceAccum += other.LuminanceAccum
	ws.LuminanceSqAccum += other.LuminanceSqAccum
	ws.SampleCount += other.SampleCount
}

// Mean returns the current average weight
func (ws *WeightStats) Mean() core.Vec3 {
	if ws.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ws.WeightAccum.Multiply(1.0 / float64(ws.SampleCount))
}

// Variance returns the sample variance of the weight luminance
func (ws *WeightStats) Variance() float64 {
	if ws.SampleCount < 2 {
		return 0
	}
	n := float64(ws.SampleCount)
	mean := ws.LuminanceAccum / n
	return math.Max(0, (ws.LuminanceSqAccum/n-mean*mean)*n/(n-1))
}

// StdError returns the standard error of the mean luminance
func (ws *WeightStats) StdError() float64 {
	if ws.SampleCount == 0 {
		return 0
	}
	return math.Sqrt(ws.Variance() / float64(ws.SampleCount))
}

// SampleStats tracks which lobes produced samples and their weights
type SampleStats struct {
	Weights    WeightStats
	Components [maxComponents]int         // Valid samples per sampled component
	Types      map[material.BSDFFlags]int // Valid samples per sampled lobe type
	Invalid    int                        // Samples rejected by the BSDF
}

// AddSample records the outcome of one BSDF.Sample call
func (ss *SampleStats) AddSample(bs material.BSDFSample, weight core.Vec3) {
	ss.Weights.AddSample(weight)
	if !(bs.PDF > 0) {
		ss.Invalid++
		return
	}
	if bs.SampledComponent >= 0 && bs.SampledComponent < maxComponents {
		ss.Components[bs.SampledComponent]++
	}
	if ss.Types == nil {
		ss.Types = make(map[material.BSDFFlags]int)
	}
	ss.Types[bs.SampledType]++
}

// Merge folds other into ss
func (ss *SampleStats) Merge(other SampleStats) {
	ss.Weights.Merge(other.Weights)
	for i, c := range other.Components {
		ss.Components[i] += c
	}
	for t, c := range other.Types {
		if ss.Types == nil {
			ss.Types = make(map[material.BSDFFlags]int)
		}
		ss.Types[t] += c
	}
	ss.Invalid += other.Invalid
}

// Valid returns the number of accepted samples
func (ss *SampleStats) Valid() int {
	return ss.Weights.SampleCount - ss.Invalid
}
