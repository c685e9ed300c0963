// Package chi2 validates BSDF importance sampling. A chi-square
// goodness-of-fit test compares a histogram of sampled directions against
// the integral of the reported pdf over the same cells; a white furnace
// estimate reports the directional albedo.
package chi2

import (
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/log"
	"github.com/df07/go-principled/pkg/material"
	"gonum.org/v1/gonum/stat/distuv"
)

var logger = log.New("chi2")

// Result is the outcome of a goodness-of-fit test
type Result struct {
	Statistic float64 // Pearson's chi-square statistic over the pooled cells
	DOF       int     // Degrees of freedom
	PValue    float64 // Probability of a statistic at least this large
	Threshold float64 // Significance level after the Sidak correction
	Passed    bool
	Message   string

	Domain   SphericalDomain
	Observed []float64 // Sample counts per cell
	Expected []float64 // Integrated pdf times the sample count per cell
	Stats    SampleStats
}

// Albedo is a Monte Carlo estimate of the directional albedo
type Albedo struct {
	Mean     core.Vec3
	StdError float64 // Standard error of the mean luminance
	Stats    SampleStats
}

// Run performs the chi-square test for incident direction wi
func Run(bsdf material.BSDF, wi core.Vec3, cfg Config) (*Result, error) {
	j, err := newJob(bsdf, wi, &cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Domain:   j.Domain,
		Observed: make([]float64, j.Domain.Bins()),
		Expected: make([]float64, j.Domain.Bins()),
	}
	for _, r := range runTasks(j, cfg, true) {
		switch r.Kind {
		case SampleTask:
			for i, c := range r.Histogram {
				result.Observed[i] += c
			}
			result.Stats.Merge(r.Stats)
		case IntegrateTask:
			for i, mass := range r.Histogram {
				result.Expected[r.Row*j.Domain.PhiRes+i] = mass * float64(cfg.SampleCount)
			}
		}
	}

	if err := result.evaluate(cfg); err != nil {
		return result, err
	}
	logger.Infof("chi2: statistic %.3f, dof %d, p-value %.4g (threshold %.4g), passed %v",
		result.Statistic, result.DOF, result.PValue, result.Threshold, result.Passed)
	return result, nil
}

// EstimateAlbedo averages Sample weights for incident direction wi
func EstimateAlbedo(bsdf material.BSDF, wi core.Vec3, cfg Config) (*Albedo, error) {
	j, err := newJob(bsdf, wi, &cfg)
	if err != nil {
		return nil, err
	}

	var stats SampleStats
	for _, r := range runTasks(j, cfg, false) {
		stats.Merge(r.Stats)
	}
	return &Albedo{
		Mean:     stats.Weights.Mean(),
		StdError: stats.Weights.StdError(),
		Stats:    stats,
	}, nil
}

func newJob(bsdf material.BSDF, wi core.Vec3, cfg *Config) (*Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if wi.Length() == 0 || wi.Z == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIncidence, wi)
	}
	return &Job{
		BSDF:         bsdf,
		Context:      material.NewContext(cfg.Mode),
		Interaction:  core.NewSurfaceInteraction(wi.Normalize()),
		Domain:       SphericalDomain{PhiRes: cfg.PhiRes, ThetaRes: cfg.ThetaRes},
		Subdivisions: cfg.Subdivisions,
		Seed:         cfg.Seed,
	}, nil
}

// runTasks splits the samples into chunks, optionally adds one integration
// task per histogram row, and collects every result
func runTasks(j *Job, cfg Config, integrate bool) []TaskResult {
	var tasks []Task
	for remaining := cfg.SampleCount; remaining > 0; remaining -= cfg.ChunkSize {
		tasks = append(tasks, Task{TaskID: len(tasks), Kind: SampleTask, Count: min(remaining, cfg.ChunkSize)})
	}
	if integrate {
		for row := 0; row < j.Domain.ThetaRes; row++ {
			tasks = append(tasks, Task{TaskID: len(tasks), Kind: IntegrateTask, Row: row})
		}
	}

	pool := NewWorkerPool(j, cfg.Workers, len(tasks))
	logger.Debugf("running %d tasks on %d workers", len(tasks), pool.GetNumWorkers())
	pool.Start()
	for _, task := range tasks {
		pool.SubmitTask(task)
	}
	pool.Stop()

	results := make([]TaskResult, 0, len(tasks))
	for {
		r, ok := pool.GetResult()
		if !ok {
			break
		}
		results = append(results, r)
	}

	// Merge in task order so floating point sums are reproducible
	sort.Slice(results, func(a, b int) bool { return results[a].TaskID < results[b].TaskID })
	return results
}

type cell struct {
	observed float64
	expected float64
}

// poolCells sorts cells by expected frequency and merges the smallest ones
// until each pooled cell expects at least minExp samples
func poolCells(observed, expected []float64, minExp float64) []cell {
	order := make([]int, len(expected))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return expected[order[a]] < expected[order[b]] })

	var cells []cell
	var pooled cell
	for _, i := range order {
		if expected[i] == 0 && observed[i] == 0 {
			continue
		}
		pooled.observed += observed[i]
		pooled.expected += expected[i]
		if pooled.expected >= minExp {
			cells = append(cells, pooled)
			pooled = cell{}
		}
	}

	// Leftovers join the smallest emitted cell
	if pooled.expected > 0 || pooled.observed > 0 {
		if len(cells) == 0 {
			cells = append(cells, pooled)
		} else {
			cells[0].observed += pooled.observed
			cells[0].expected += pooled.expected
		}
	}
	return cells
}

func (r *Result) evaluate(cfg Config) error {
	r.Threshold = 1 - math.Pow(1-cfg.SignificanceLevel, 1/float64(cfg.TestCount))

	for i := range r.Expected {
		if r.Expected[i] == 0 && r.Observed[i] > 0 {
			phi, cosTheta := r.cellCenter(i)
			r.Message = fmt.Sprintf("%v samples in cell %d (phi %.3f, cos(theta) %.3f) where the pdf is zero",
				r.Observed[i], i, phi, cosTheta)
			r.Passed = false
			return fmt.Errorf("%w: %s", ErrZeroPDFRegion, r.Message)
		}
	}

	cells := poolCells(r.Observed, r.Expected, cfg.MinExpFrequency)
	logger.Debugf("pooled %d cells into %d", r.Domain.Bins(), len(cells))
	if len(cells) < 2 {
		r.Message = fmt.Sprintf("only %d cell(s) after pooling", len(cells))
		return fmt.Errorf("%w: %s", ErrInsufficientData, r.Message)
	}

	r.Statistic = 0
	for _, c := range cells {
		diff := c.observed - c.expected
		r.Statistic += diff * diff / c.expected
	}
	r.DOF = len(cells) - 1
	r.PValue = distuv.ChiSquared{K: float64(r.DOF)}.Survival(r.Statistic)
	r.Passed = r.PValue > r.Threshold

	if r.Passed {
		r.Message = fmt.Sprintf("accepted: p-value %.4g > %.4g", r.PValue, r.Threshold)
	} else {
		r.Message = fmt.Sprintf("rejected: p-value %.4g <= %.4g", r.PValue, r.Threshold)
	}
	return nil
}

func (r *Result) cellCenter(index int) (phi, cosTheta float64) {
	phi0, phi1, cos0, cos1 := r.Domain.BinBounds(index%r.Domain.PhiRes, index/r.Domain.PhiRes)
	return (phi0 + phi1) / 2, (cos0 + cos1) / 2
}
