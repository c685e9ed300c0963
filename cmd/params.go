package cmd

import (
	"fmt"

	"github.com/df07/go-principled/pkg/material"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListParams prints the traversed parameters of a material.
func ListParams(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	bsdf, err := loadBSDF(ctx)
	if err != nil {
		return err
	}
	params := material.NewParameterMap(bsdf)

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Parameter", "Value", "Flags"})
	for _, name := range params.Keys() {
		p, _ := params.Get(name)
		table.Append([]string{p.Name, p.Value(), p.Flags.String()})
	}
	table.SetFooter([]string{"", "Components", fmt.Sprintf("%d", len(bsdf.Components()))})
	table.Render()

	fmt.Fprintf(ctx.App.Writer, "flags: %s\n", bsdf.Flags())
	return nil
}
