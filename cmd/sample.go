package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/df07/go-principled/pkg/chi2"
	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/material"
	"github.com/klauspost/compress/gzip"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

var dumpHeader = []string{"wo_x", "wo_y", "wo_z", "pdf", "eta", "weight_r", "weight_g", "weight_b", "component", "type"}

// Sample draws BSDF samples, reports per-lobe statistics and optionally
// dumps every sample to a gzip compressed CSV file.
func Sample(ctx *cli.Context) error {
	bsdf, wi, mode, err := setup(ctx)
	if err != nil {
		return err
	}
	n := ctx.Int("n")
	if n < 1 {
		return fmt.Errorf("invalid sample count %d", n)
	}

	var (
		zw   *gzip.Writer
		dump *csv.Writer
	)
	if path := ctx.String("dump"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		zw = gzip.NewWriter(file)
		defer zw.Close()
		dump = csv.NewWriter(zw)
		if err := dump.Write(dumpHeader); err != nil {
			return err
		}
	}

	mctx := material.NewContext(mode)
	si := core.NewSurfaceInteraction(wi)
	sampler := core.NewSeededSampler(ctx.Int64("seed"))

	var stats chi2.SampleStats
	for i := 0; i < n; i++ {
		bs, weight := bsdf.Sample(mctx, si, sampler.Get1D(), sampler.Get2D())
		stats.AddSample(bs, weight)
		if dump != nil && bs.PDF > 0 {
			if err := dump.Write(sampleRecord(bs, weight)); err != nil {
				return err
			}
		}
	}
	if dump != nil {
		dump.Flush()
		if err := dump.Error(); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		logger.Infof("wrote %d samples to %s", stats.Valid(), ctx.String("dump"))
	}

	displaySampleStats(ctx, stats)
	return nil
}

func sampleRecord(bs material.BSDFSample, weight core.Vec3) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }
	return []string{
		f(bs.Wo.X), f(bs.Wo.Y), f(bs.Wo.Z), f(bs.PDF), f(bs.Eta),
		f(weight.X), f(weight.Y), f(weight.Z),
		strconv.Itoa(bs.SampledComponent), bs.SampledType.String(),
	}
}

func displaySampleStats(ctx *cli.Context, stats chi2.SampleStats) {
	total := stats.Weights.SampleCount
	percent := func(c int) string { return fmt.Sprintf("%02.1f %%", 100*float64(c)/float64(total)) }

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Lobe", "Samples", "% of samples"})

	types := make([]material.BSDFFlags, 0, len(stats.Types))
	for t := range stats.Types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		table.Append([]string{t.String(), strconv.Itoa(stats.Types[t]), percent(stats.Types[t])})
	}
	table.Append([]string{"invalid", strconv.Itoa(stats.Invalid), percent(stats.Invalid)})
	table.SetFooter([]string{"TOTAL", strconv.Itoa(total), ""})
	table.Render()

	fmt.Fprintf(ctx.App.Writer, "mean weight: %v (std. error %.4g)\n", stats.Weights.Mean(), stats.Weights.StdError())
}
