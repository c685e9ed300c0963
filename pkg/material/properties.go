package material

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-principled/pkg/props"
	"github.com/df07/go-principled/pkg/texture"
)

// propReader reads plugin properties, keeping the first error so a
// constructor can check once at the end
type propReader struct {
	p   *props.Properties
	err error
}

func (r *propReader) texture(name string, def float64) texture.Texture {
	tex, err := r.p.Texture(name, def)
	if err != nil && r.err == nil {
		r.err = err
	}
	return tex
}

func (r *propReader) optional(name string) texture.Texture {
	tex, err := r.p.OptionalTexture(name)
	if err != nil && r.err == nil {
		r.err = err
	}
	return tex
}

func (r *propReader) float(name string, def float64) float64 {
	v, err := r.p.Float(name, def)
	if err != nil && r.err == nil {
		r.err = err
	}
	return v
}

func (r *propReader) samplingRate(name string) float64 {
	v := r.float(name, 1)
	if !(v > 0) && r.err == nil {
		r.err = fmt.Errorf("%w: %s = %g", ErrInvalidSamplingRate, name, v)
	}
	return v
}

func (r *propReader) bsdf(name string) BSDF {
	nested, err := r.p.Properties(name)
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		return nil
	}
	b, err := New(nested)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", name, err)
	}
	return b
}

// disableIfZero turns an optional slot holding the constant 0 back into a
// disabled lobe
func disableIfZero(tex texture.Texture) texture.Texture {
	if texture.IsConstantValue(tex, 0) {
		return nil
	}
	return tex
}

func requireTextures(slots map[string]texture.Texture) error {
	for _, name := range sortedNames(slots) {
		if slots[name] == nil {
			return fmt.Errorf("%w: %s cannot be disabled", ErrInvalidParameter, name)
		}
	}
	return nil
}

func validateSamplingRates(rates map[string]float64) error {
	for _, name := range sortedNames(rates) {
		if v := rates[name]; !(v > 0) {
			return fmt.Errorf("%w: %s = %g", ErrInvalidSamplingRate, name, v)
		}
	}
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeOptional(sb *strings.Builder, name string, tex texture.Texture) {
	if tex != nil {
		fmt.Fprintf(sb, "  %s = %v,\n", name, tex)
	}
}
