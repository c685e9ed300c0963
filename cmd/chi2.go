package cmd

import (
	"fmt"

	"github.com/df07/go-principled/pkg/chi2"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// TestFlags configure the chi-square test and the albedo estimate
var TestFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "theta-res",
		Value: chi2.DefaultConfig().ThetaRes,
		Usage: "histogram bins along cos(theta)",
	},
	cli.IntFlag{
		Name:  "phi-res",
		Value: chi2.DefaultConfig().PhiRes,
		Usage: "histogram bins along phi",
	},
	cli.IntFlag{
		Name:  "samples, n",
		Value: chi2.DefaultConfig().SampleCount,
		Usage: "number of samples",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "worker goroutines (0 = one per CPU)",
	},
	cli.Int64Flag{
		Name:  "seed",
		Value: chi2.DefaultConfig().Seed,
		Usage: "random seed",
	},
	cli.Float64Flag{
		Name:  "significance",
		Value: chi2.DefaultConfig().SignificanceLevel,
		Usage: "significance level",
	},
	cli.IntFlag{
		Name:  "tests",
		Value: chi2.DefaultConfig().TestCount,
		Usage: "number of tests run together, for the Sidak correction",
	},
}

func testConfig(ctx *cli.Context) chi2.Config {
	cfg := chi2.DefaultConfig()
	cfg.ThetaRes = ctx.Int("theta-res")
	cfg.PhiRes = ctx.Int("phi-res")
	cfg.SampleCount = ctx.Int("samples")
	cfg.Workers = ctx.Int("workers")
	cfg.Seed = ctx.Int64("seed")
	cfg.SignificanceLevel = ctx.Float64("significance")
	cfg.TestCount = ctx.Int("tests")
	return cfg
}

// Chi2 runs the chi-square goodness-of-fit test and exits with status 1
// when the sampling routine is rejected.
func Chi2(ctx *cli.Context) error {
	bsdf, wi, mode, err := setup(ctx)
	if err != nil {
		return err
	}
	cfg := testConfig(ctx)
	cfg.Mode = mode

	result, err := chi2.Run(bsdf, wi, cfg)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Statistic", "DOF", "p-value", "Threshold", "Valid samples"})
	table.Append([]string{
		fmt.Sprintf("%.3f", result.Statistic),
		fmt.Sprintf("%d", result.DOF),
		fmt.Sprintf("%.4g", result.PValue),
		fmt.Sprintf("%.4g", result.Threshold),
		fmt.Sprintf("%d", result.Stats.Valid()),
	})
	table.Render()
	fmt.Fprintln(ctx.App.Writer, result.Message)

	if !result.Passed {
		return cli.NewExitError(fmt.Sprintf("%s: chi-square test failed", bsdf), 1)
	}
	return nil
}

// Albedo estimates the directional albedo with a white furnace test.
func Albedo(ctx *cli.Context) error {
	bsdf, wi, mode, err := setup(ctx)
	if err != nil {
		return err
	}
	cfg := testConfig(ctx)
	cfg.Mode = mode

	albedo, err := chi2.EstimateAlbedo(bsdf, wi, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "albedo: %v (std. error %.4g, %d valid samples)\n",
		albedo.Mean, albedo.StdError, albedo.Stats.Valid())
	return nil
}
