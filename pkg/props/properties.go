package props

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/texture"
)

// Kind is the type of a stored property value
type Kind int

const (
	KindFloat Kind = iota
	KindRGB
	KindString
	KindTexture
	KindProperties
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindRGB:
		return "rgb"
	case KindString:
		return "string"
	case KindTexture:
		return "texture"
	case KindProperties:
		return "bsdf"
	}
	return "invalid"
}

type entry struct {
	kind    Kind
	value   interface{}
	queried bool
}

// Properties is the named parameter bag a plugin is constructed from.
// Every getter marks the property as queried so constructors can report
// parameters they never consumed.
type Properties struct {
	pluginName string
	id         string
	entries    map[string]*entry
	order      []string
}

// New creates an empty property bag for the named plugin
func New(pluginName string) *Properties {
	return &Properties{
		pluginName: pluginName,
		entries:    make(map[string]*entry),
	}
}

// PluginName returns the plugin this bag configures
func (p *Properties) PluginName() string { return p.pluginName }

// ID returns the optional instance identifier
func (p *Properties) ID() string { return p.id }

// SetID sets the instance identifier
func (p *Properties) SetID(id string) { p.id = id }

func (p *Properties) set(name string, kind Kind, value interface{}) {
	if _, exists := p.entries[name]; !exists {
		p.order = append(p.order, name)
	}
	p.entries[name] = &entry{kind: kind, value: value}
}

// SetFloat stores a scalar
func (p *Properties) SetFloat(name string, value float64) { p.set(name, KindFloat, value) }

// SetRGB stores a color
func (p *Properties) SetRGB(name string, value core.Vec3) { p.set(name, KindRGB, value) }

// SetString stores a string
func (p *Properties) SetString(name string, value string) { p.set(name, KindString, value) }

// SetTexture stores a texture reference
func (p *Properties) SetTexture(name string, value texture.Texture) {
	p.set(name, KindTexture, value)
}

// SetProperties stores a nested plugin description
func (p *Properties) SetProperties(name string, value *Properties) {
	p.set(name, KindProperties, value)
}

// Has reports whether a property was supplied
func (p *Properties) Has(name string) bool {
	_, ok := p.entries[name]
	return ok
}

// Kind returns the type of a supplied property
func (p *Properties) Kind(name string) (Kind, bool) {
	e, ok := p.entries[name]
	if !ok {
		return 0, false
	}
	return e.kind, true
}

// Keys returns property names in insertion order
func (p *Properties) Keys() []string {
	keys := make([]string, len(p.order))
	copy(keys, p.order)
	return keys
}

func (p *Properties) lookup(name string) (*entry, bool) {
	e, ok := p.entries[name]
	if ok {
		e.queried = true
	}
	return e, ok
}

func wrongType(name string, e *entry, want string) error {
	return fmt.Errorf("%w: property %q is %s, expected %s", ErrWrongType, name, e.kind, want)
}

// Float returns a scalar property, or def when it was not supplied
func (p *Properties) Float(name string, def float64) (float64, error) {
	e, ok := p.lookup(name)
	if !ok {
		return def, nil
	}
	if e.kind != KindFloat {
		return 0, wrongType(name, e, "float")
	}
	return e.value.(float64), nil
}

// StringValue returns a string property, or def when it was not supplied
func (p *Properties) StringValue(name string, def string) (string, error) {
	e, ok := p.lookup(name)
	if !ok {
		return def, nil
	}
	if e.kind != KindString {
		return "", wrongType(name, e, "string")
	}
	return e.value.(string), nil
}

// Texture returns a property as a texture. Floats and colors become
// constant textures; a missing property yields a constant def.
func (p *Properties) Texture(name string, def float64) (texture.Texture, error) {
	tex, err := p.OptionalTexture(name)
	if err != nil {
		return nil, err
	}
	if tex == nil && !p.Has(name) {
		return texture.NewConstant(def), nil
	}
	if tex == nil {
		// supplied as scalar zero
		return texture.NewConstant(0), nil
	}
	return tex, nil
}

// OptionalTexture returns a property as a texture, or nil when it was not
// supplied or was supplied as the scalar 0
func (p *Properties) OptionalTexture(name string) (texture.Texture, error) {
	e, ok := p.lookup(name)
	if !ok {
		return nil, nil
	}
	switch e.kind {
	case KindFloat:
		v := e.value.(float64)
		if v == 0 {
			return nil, nil
		}
		return texture.NewConstant(v), nil
	case KindRGB:
		return texture.NewConstantRGB(e.value.(core.Vec3)), nil
	case KindTexture:
		return e.value.(texture.Texture), nil
	}
	return nil, wrongType(name, e, "texture")
}

// Properties returns a nested plugin description
func (p *Properties) Properties(name string) (*Properties, error) {
	e, ok := p.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissing, name)
	}
	if e.kind != KindProperties {
		return nil, wrongType(name, e, "bsdf")
	}
	return e.value.(*Properties), nil
}

// IsFloatZero reports whether the property was supplied as the scalar 0
func (p *Properties) IsFloatZero(name string) bool {
	e, ok := p.entries[name]
	return ok && e.kind == KindFloat && e.value.(float64) == 0
}

// Unqueried lists properties no getter has asked for
func (p *Properties) Unqueried() []string {
	var names []string
	for _, name := range p.order {
		if !p.entries[name].queried {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (p *Properties) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Properties[plugin=%q", p.pluginName)
	if p.id != "" {
		fmt.Fprintf(&sb, ", id=%q", p.id)
	}
	for _, name := range p.order {
		e := p.entries[name]
		fmt.Fprintf(&sb, ", %s %s=%v", e.kind, name, e.value)
	}
	sb.WriteString("]")
	return sb.String()
}
