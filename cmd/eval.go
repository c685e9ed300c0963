package cmd

import (
	"fmt"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/material"
	"github.com/urfave/cli"
)

// Eval prints the BSDF value and pdf for one pair of directions.
func Eval(ctx *cli.Context) error {
	bsdf, wi, mode, err := setup(ctx)
	if err != nil {
		return err
	}
	wo, err := direction(ctx, "wo")
	if err != nil {
		return err
	}

	mctx := material.NewContext(mode)
	si := core.NewSurfaceInteraction(wi)
	value := bsdf.Eval(mctx, si, wo)
	pdf := bsdf.PDF(mctx, si, wo)

	fmt.Fprintf(ctx.App.Writer, "wi:   %v\nwo:   %v\neval: %v\npdf:  %g\n", wi, wo, value, pdf)
	if pdf > 0 {
		fmt.Fprintf(ctx.App.Writer, "eval/pdf: %v\n", value.Multiply(1/pdf))
	}
	return nil
}
