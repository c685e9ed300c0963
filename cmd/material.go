package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/loaders"
	"github.com/df07/go-principled/pkg/material"
	"github.com/df07/go-principled/pkg/props"
	"github.com/urfave/cli"
)

// MaterialFlags select an inline material instead of a material file
var MaterialFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "type, t",
		Usage: "inline material plugin (" + strings.Join(material.Plugins, ", ") + ")",
	},
	cli.StringSliceFlag{
		Name:  "param, p",
		Usage: "inline material parameter as name=value, name=r,g,b or name=@image",
	},
}

// DirectionFlags select the incident direction and the transported quantity
var DirectionFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "wi",
		Value: "0,0,1",
		Usage: "incident direction in the local frame, +Z is the normal",
	},
	cli.StringFlag{
		Name:  "mode",
		Value: "radiance",
		Usage: "transport mode (radiance or importance)",
	},
}

// loadBSDF builds the BSDF described by the inline flags or the material
// file given as the only argument
func loadBSDF(ctx *cli.Context) (material.BSDF, error) {
	var p *props.Properties
	if plugin := ctx.String("type"); plugin != "" {
		if ctx.NArg() != 0 {
			return nil, errors.New("material file and --type are mutually exclusive")
		}
		p = props.New(plugin)
		for _, kv := range ctx.StringSlice("param") {
			if err := parseParam(p, kv); err != nil {
				return nil, err
			}
		}
	} else {
		if ctx.NArg() != 1 {
			return nil, errors.New("missing material file argument")
		}
		var err error
		if p, err = loaders.LoadMaterial(ctx.Args().First()); err != nil {
			return nil, err
		}
	}

	bsdf, err := material.New(p)
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded %s", bsdf)
	return bsdf, nil
}

// parseParam adds a name=value pair to p. One number sets a float, three
// comma separated numbers set a color and @path loads a bitmap texture.
func parseParam(p *props.Properties, kv string) error {
	name, value, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return fmt.Errorf("invalid parameter %q, expected name=value", kv)
	}

	if path, isFile := strings.CutPrefix(value, "@"); isFile {
		bitmap, err := loaders.LoadBitmap(path, false)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		p.SetTexture(name, bitmap)
		return nil
	}

	if strings.Contains(value, ",") {
		rgb, err := parseVec3(value)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		p.SetRGB(name, rgb)
		return nil
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("parameter %s: invalid number %q", name, value)
	}
	p.SetFloat(name, f)
	return nil
}

// parseVec3 parses "x,y,z"
func parseVec3(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("invalid vector %q, expected x,y,z", s)
	}

	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid vector %q: %w", s, err)
		}
		v[i] = f
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}

func parseMode(s string) (material.TransportMode, error) {
	switch strings.ToLower(s) {
	case "radiance":
		return material.Radiance, nil
	case "importance":
		return material.Importance, nil
	default:
		return 0, fmt.Errorf("unknown transport mode %q", s)
	}
}

// direction reads a vector flag and normalizes it
func direction(ctx *cli.Context, name string) (core.Vec3, error) {
	v, err := parseVec3(ctx.String(name))
	if err != nil {
		return core.Vec3{}, fmt.Errorf("--%s: %w", name, err)
	}
	if v.Length() == 0 {
		return core.Vec3{}, fmt.Errorf("--%s: zero vector", name)
	}
	return v.Normalize(), nil
}

// setup loads the BSDF and reads the direction flags shared by every
// command that queries it
func setup(ctx *cli.Context) (material.BSDF, core.Vec3, material.TransportMode, error) {
	if err := setupLogging(ctx); err != nil {
		return nil, core.Vec3{}, 0, err
	}

	mode, err := parseMode(ctx.String("mode"))
	if err != nil {
		return nil, core.Vec3{}, 0, err
	}
	wi, err := direction(ctx, "wi")
	if err != nil {
		return nil, core.Vec3{}, 0, err
	}
	bsdf, err := loadBSDF(ctx)
	if err != nil {
		return nil, core.Vec3{}, 0, err
	}
	return bsdf, wi, mode, nil
}
