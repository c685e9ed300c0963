package material

import (
	"fmt"

	"github.com/df07/go-principled/pkg/props"
)

// Plugins lists the plugin names New understands
var Plugins = []string{"blendbsdf", "diffuse", "principled", "principledthin"}

// New instantiates the BSDF described by p. Properties the plugin never
// asked for are reported as warnings.
func New(p *props.Properties) (BSDF, error) {
	var (
		b   BSDF
		err error
	)
	switch p.PluginName() {
	case "principled":
		b, err = asBSDF(NewPrincipled(p))
	case "principledthin":
		b, err = asBSDF(NewPrincipledThin(p))
	case "diffuse":
		b, err = asBSDF(NewLambertianFromProperties(p))
	case "blendbsdf":
		b, err = asBSDF(NewMixFromProperties(p))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, p.PluginName())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.PluginName(), err)
	}

	for _, name := range p.Unqueried() {
		logger.Warningf("%s: unused property %q", p.PluginName(), name)
	}
	return b, nil
}

// asBSDF avoids wrapping a nil pointer in a non-nil interface
func asBSDF[T BSDF](b T, err error) (BSDF, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
