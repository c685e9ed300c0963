package cmd

import (
	"fmt"

	"github.com/df07/go-principled/pkg/material"
	"github.com/df07/go-principled/pkg/plot"
	"github.com/urfave/cli"
)

// Plot writes lat-long images of the BSDF value and pdf.
func Plot(ctx *cli.Context) error {
	bsdf, wi, mode, err := setup(ctx)
	if err != nil {
		return err
	}

	lobe, err := plot.Tabulate(bsdf, material.NewContext(mode), wi, ctx.Int("width"), ctx.Int("height"))
	if err != nil {
		return err
	}
	out := ctx.String("out")
	if err := plot.Write(out, lobe); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "wrote %s\n", out)
	return nil
}
