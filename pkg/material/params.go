package material

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/texture"
)

// ParamFlags classify how a parameter behaves under differentiation
type ParamFlags uint32

const (
	// Differentiable parameters are smooth and tracked for gradients
	Differentiable ParamFlags = 0
	// NonDifferentiable parameters are never tracked for gradients
	NonDifferentiable ParamFlags = 1 << 0
	// Discontinuous parameters can introduce visibility or sampling
	// discontinuities when changed
	Discontinuous ParamFlags = 1 << 1
)

// Has reports whether any of the given flags are set
func (f ParamFlags) Has(flags ParamFlags) bool {
	return f&flags != 0
}

func (f ParamFlags) String() string {
	var parts []string
	if f.Has(NonDifferentiable) {
		parts = append(parts, "non_differentiable")
	} else {
		parts = append(parts, "differentiable")
	}
	if f.Has(Discontinuous) {
		parts = append(parts, "discontinuous")
	}
	return strings.Join(parts, " | ")
}

// TraversalCallback receives the parameters of a Traversable. Slots are
// passed by pointer so the receiver may modify them in place; a texture
// slot holding nil is a disabled optional lobe.
type TraversalCallback interface {
	PutTexture(name string, tex *texture.Texture, flags ParamFlags)
	PutFloat(name string, value *float64, flags ParamFlags)
	PutObject(name string, obj Traversable)
}

// Parameter is one entry of a ParameterMap
type Parameter struct {
	Name  string
	Flags ParamFlags

	float *float64
	tex   *texture.Texture
	owner *paramNode
	local string
}

// IsTexture reports whether the parameter is a texture slot
func (p Parameter) IsTexture() bool { return p.tex != nil }

// Texture returns the current texture, or nil for a disabled slot or a
// scalar parameter
func (p Parameter) Texture() texture.Texture {
	if p.tex == nil {
		return nil
	}
	return *p.tex
}

// Float returns the current value of a scalar parameter
func (p Parameter) Float() float64 {
	if p.float == nil {
		return 0
	}
	return *p.float
}

// Value formats the current value for display
func (p Parameter) Value() string {
	if p.float != nil {
		return fmt.Sprintf("%g", *p.float)
	}
	if *p.tex == nil {
		return "disabled"
	}
	return fmt.Sprintf("%v", *p.tex)
}

type paramNode struct {
	obj    Traversable
	prefix string
	parent *paramNode
}

// ParameterMap records the parameters of a Traversable and its nested
// objects under dotted names ("bsdf_0.roughness"). Modified parameters are
// propagated with Update, which calls ParametersChanged on each affected
// object, innermost first.
type ParameterMap struct {
	params  map[string]*Parameter
	order   []string
	touched map[string]bool
}

// NewParameterMap traverses root and records its parameters
func NewParameterMap(root Traversable) *ParameterMap {
	m := &ParameterMap{
		params:  make(map[string]*Parameter),
		touched: make(map[string]bool),
	}
	root.Traverse(&recorder{m: m, node: &paramNode{obj: root}})
	return m
}

type recorder struct {
	m    *ParameterMap
	node *paramNode
}

func (r *recorder) add(p *Parameter) {
	if _, exists := r.m.params[p.Name]; !exists {
		r.m.order = append(r.m.order, p.Name)
	}
	r.m.params[p.Name] = p
}

func (r *recorder) PutTexture(name string, tex *texture.Texture, flags ParamFlags) {
	r.add(&Parameter{Name: r.node.prefix + name, Flags: flags, tex: tex, owner: r.node, local: name})
}

func (r *recorder) PutFloat(name string, value *float64, flags ParamFlags) {
	r.add(&Parameter{Name: r.node.prefix + name, Flags: flags, float: value, owner: r.node, local: name})
}

func (r *recorder) PutObject(name string, obj Traversable) {
	child := &paramNode{obj: obj, prefix: r.node.prefix + name + ".", parent: r.node}
	obj.Traverse(&recorder{m: r.m, node: child})
}

// Keys returns parameter names in traversal order
func (m *ParameterMap) Keys() []string {
	keys := make([]string, len(m.order))
	copy(keys, m.order)
	return keys
}

// Get returns a recorded parameter
func (m *ParameterMap) Get(name string) (Parameter, bool) {
	p, ok := m.params[name]
	if !ok {
		return Parameter{}, false
	}
	return *p, true
}

func (m *ParameterMap) lookup(name string) (*Parameter, error) {
	p, ok := m.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return p, nil
}

// SetFloat assigns a scalar. Texture slots receive a constant texture.
func (m *ParameterMap) SetFloat(name string, value float64) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}
	if p.float != nil {
		*p.float = value
	} else {
		*p.tex = texture.NewConstant(value)
	}
	m.touched[name] = true
	return nil
}

// SetRGB assigns a constant color to a texture slot
func (m *ParameterMap) SetRGB(name string, value core.Vec3) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}
	if p.tex == nil {
		return fmt.Errorf("%w: %q is a scalar", ErrParameterType, name)
	}
	*p.tex = texture.NewConstantRGB(value)
	m.touched[name] = true
	return nil
}

// SetTexture assigns a texture to a texture slot
func (m *ParameterMap) SetTexture(name string, tex texture.Texture) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}
	if p.tex == nil {
		return fmt.Errorf("%w: %q is a scalar", ErrParameterType, name)
	}
	*p.tex = tex
	m.touched[name] = true
	return nil
}

// Update notifies every object owning a modified parameter, then its
// ancestors, and clears the modification set
func (m *ParameterMap) Update() error {
	if len(m.touched) == 0 {
		return nil
	}

	keysByNode := make(map[*paramNode][]string)
	var nodes []*paramNode
	addKey := func(node *paramNode, key string) {
		if _, seen := keysByNode[node]; !seen {
			nodes = append(nodes, node)
		}
		keysByNode[node] = append(keysByNode[node], key)
	}

	names := make([]string, 0, len(m.touched))
	for name := range m.touched {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := m.params[name]
		addKey(p.owner, p.local)

		// Ancestors see the key relative to themselves
		local := p.local
		for node := p.owner; node.parent != nil; node = node.parent {
			local = strings.TrimPrefix(node.prefix, node.parent.prefix) + local
			addKey(node.parent, local)
		}
	}

	// Innermost objects first
	sort.SliceStable(nodes, func(i, j int) bool {
		return depth(nodes[i]) > depth(nodes[j])
	})

	m.touched = make(map[string]bool)
	for _, node := range nodes {
		if err := node.obj.ParametersChanged(keysByNode[node]); err != nil {
			return err
		}
	}
	return nil
}

func depth(node *paramNode) int {
	d := 0
	for ; node.parent != nil; node = node.parent {
		d++
	}
	return d
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
