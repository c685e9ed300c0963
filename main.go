package main

import (
	"fmt"
	"os"

	"github.com/df07/go-principled/cmd"
	"github.com/urfave/cli"
)

// flags concatenates flag groups
func flags(groups ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

func newApp() *cli.App {
	// -v selects verbose logging, so the version flag only has a long name
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "bsdftool"
	app.Usage = "inspect and validate principled BSDFs"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringSliceFlag{
			Name:  "log",
			Usage: "set the log level of one package, e.g. chi2=debug",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "params",
			Usage:     "list the parameters of a material",
			ArgsUsage: "[material.pbrt]",
			Flags:     cmd.MaterialFlags,
			Action:    cmd.ListParams,
		},
		{
			Name:      "eval",
			Usage:     "evaluate the BSDF and its pdf for a pair of directions",
			ArgsUsage: "[material.pbrt]",
			Flags: flags(cmd.MaterialFlags, cmd.DirectionFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "wo",
					Value: "0,0,1",
					Usage: "outgoing direction in the local frame",
				},
			}),
			Action: cmd.Eval,
		},
		{
			Name:  "sample",
			Usage: "draw BSDF samples and report lobe statistics",
			Description: `
Draw samples for a fixed incident direction and print how often each lobe
was chosen together with the mean importance weight. With --dump every valid
sample is written to a gzip compressed CSV file.`,
			ArgsUsage: "[material.pbrt]",
			Flags: flags(cmd.MaterialFlags, cmd.DirectionFlags, []cli.Flag{
				cli.IntFlag{
					Name:  "n",
					Value: 100000,
					Usage: "number of samples",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed",
				},
				cli.StringFlag{
					Name:  "dump",
					Usage: "write samples to this .csv.gz file",
				},
			}),
			Action: cmd.Sample,
		},
		{
			Name:  "chi2",
			Usage: "run a chi-square test of the sampling routine",
			Description: `
Compare a histogram of sampled directions with the integral of the pdf over
the same cells. The command exits with status 1 when the test rejects the
sampling routine.`,
			ArgsUsage: "[material.pbrt]",
			Flags:     flags(cmd.MaterialFlags, cmd.DirectionFlags, cmd.TestFlags),
			Action:    cmd.Chi2,
		},
		{
			Name:      "albedo",
			Usage:     "estimate the directional albedo",
			ArgsUsage: "[material.pbrt]",
			Flags:     flags(cmd.MaterialFlags, cmd.DirectionFlags, cmd.TestFlags),
			Action:    cmd.Albedo,
		},
		{
			Name:      "plot",
			Usage:     "write lat-long images of the BSDF value and pdf",
			ArgsUsage: "[material.pbrt]",
			Flags: flags(cmd.MaterialFlags, cmd.DirectionFlags, []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 256,
					Usage: "image width of each half",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 128,
					Usage: "image height",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "lobe.exr",
					Usage: "output image (.exr or .png)",
				},
			}),
			Action: cmd.Plot,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
