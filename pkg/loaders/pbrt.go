package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/log"
	"github.com/df07/go-principled/pkg/props"
	"github.com/df07/go-principled/pkg/texture"
)

var logger = log.New("loaders")

// PBRTStatement represents a parsed statement of a material description
type PBRTStatement struct {
	Type       string               // Statement type (Material, Texture, MakeNamedMaterial, ...)
	Args       []string             // Leading quoted arguments (names, classes, subtypes)
	Parameters map[string]PBRTParam // Named parameters

	order []string
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, string, texture, ...)
	Values []string // Parameter values as strings, quotes removed
}

// Subtype returns the first positional argument, or "" when there is none
func (stmt *PBRTStatement) Subtype() string {
	if len(stmt.Args) == 0 {
		return ""
	}
	return stmt.Args[0]
}

// materialState is the part of the graphics state AttributeBegin/End saves
type materialState struct {
	current *props.Properties
}

// PBRTParser turns a PBRT-style material description into property bags.
//
// Supported statements:
//
//	Texture "name" "float|spectrum" "imagemap|checkerboard|constant" params...
//	MakeNamedMaterial "name" "string type" "principled" params...
//	NamedMaterial "name"
//	Material "type" params...
//	AttributeBegin / AttributeEnd
//
// The description's material is the current material at the end of input.
type PBRTParser struct {
	baseDir        string
	textures       map[string]texture.Texture
	namedMaterials map[string]*props.Properties
	current        *props.Properties
	stateStack     []materialState
	statementLines []string
}

// NewPBRTParser creates a parser resolving relative file names against baseDir
func NewPBRTParser(baseDir string) *PBRTParser {
	return &PBRTParser{
		baseDir:        baseDir,
		textures:       make(map[string]texture.Texture),
		namedMaterials: make(map[string]*props.Properties),
		stateStack:     make([]materialState, 0),
		statementLines: make([]string, 0),
	}
}

// ParseMaterial parses a material description from an io.Reader
func ParseMaterial(reader io.Reader, baseDir string) (*props.Properties, error) {
	parser := NewPBRTParser(baseDir)

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	// Process any remaining accumulated statement
	if err := parser.processAccumulatedStatement("at end of file"); err != nil {
		return nil, err
	}

	if parser.current == nil {
		return nil, ErrNoMaterial
	}
	return parser.current, nil
}

// LoadMaterial loads and parses a material description file
func LoadMaterial(filename string) (*props.Properties, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open material file: %w", err)
	}
	defer file.Close()

	material, err := ParseMaterial(file, filepath.Dir(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return material, nil
}

// processAccumulatedStatement processes any accumulated statement lines and clears them
func (p *PBRTParser) processAccumulatedStatement(context string) error {
	if len(p.statementLines) > 0 {
		fullStatement := strings.Join(p.statementLines, " ")
		p.statementLines = nil
		stmt, err := parseStatement(fullStatement)
		if err != nil {
			return fmt.Errorf("error parsing statement %s '%s': %w", context, fullStatement, err)
		}
		if err := p.routeStatement(stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt.Type, err)
		}
	}
	return nil
}

// processLine processes a single line of input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip empty lines and comments
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	switch line {
	case "AttributeBegin":
		if err := p.processAccumulatedStatement("before AttributeBegin"); err != nil {
			return err
		}
		p.stateStack = append(p.stateStack, materialState{current: p.current})
		return nil
	case "AttributeEnd":
		if err := p.processAccumulatedStatement("before AttributeEnd"); err != nil {
			return err
		}
		if len(p.stateStack) == 0 {
			return fmt.Errorf("%w: unmatched AttributeEnd", ErrSyntax)
		}
		p.current = p.stateStack[len(p.stateStack)-1].current
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
		return nil
	}

	// Check if this line starts a new statement or continues the previous one
	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(""); err != nil {
			return err
		}
		p.statementLines = []string{line}
	} else {
		if len(p.statementLines) == 0 {
			return fmt.Errorf("%w: unexpected continuation line: %s", ErrSyntax, line)
		}
		p.statementLines = append(p.statementLines, line)
	}
	return nil
}

// routeStatement applies a parsed statement to the parser state
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "Texture":
		if len(stmt.Args) != 3 {
			return fmt.Errorf("%w: expected name, class and kind", ErrSyntax)
		}
		tex, err := p.buildTexture(stmt)
		if err != nil {
			return fmt.Errorf("texture %q: %w", stmt.Args[0], err)
		}
		p.textures[stmt.Args[0]] = tex
	case "MakeNamedMaterial":
		if len(stmt.Args) != 1 {
			return fmt.Errorf("%w: expected a material name", ErrSyntax)
		}
		pluginName, ok := stmt.GetStringParam("type")
		if !ok {
			return fmt.Errorf("%w: named material %q has no type", ErrSyntax, stmt.Args[0])
		}
		delete(stmt.Parameters, "type")
		material, err := p.buildProperties(pluginName, stmt)
		if err != nil {
			return fmt.Errorf("material %q: %w", stmt.Args[0], err)
		}
		material.SetID(stmt.Args[0])
		p.namedMaterials[stmt.Args[0]] = material
	case "NamedMaterial":
		if len(stmt.Args) != 1 {
			return fmt.Errorf("%w: expected a material name", ErrSyntax)
		}
		material, ok := p.namedMaterials[stmt.Args[0]]
		if !ok {
			return fmt.Errorf("%w: material %q", ErrUndefinedReference, stmt.Args[0])
		}
		p.current = material
	case "Material":
		if len(stmt.Args) != 1 {
			return fmt.Errorf("%w: expected a material type", ErrSyntax)
		}
		material, err := p.buildProperties(stmt.Args[0], stmt)
		if err != nil {
			return err
		}
		p.current = material
	default:
		logger.Warningf("ignoring unsupported statement %q", stmt.Type)
	}
	return nil
}

// buildProperties converts statement parameters into a property bag
func (p *PBRTParser) buildProperties(pluginName string, stmt *PBRTStatement) (*props.Properties, error) {
	properties := props.New(pluginName)

	for _, name := range stmt.ParameterNames() {
		param := stmt.Parameters[name]
		switch param.Type {
		case "float", "integer":
			v, ok := stmt.GetFloatParam(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s %q", ErrInvalidParameter, param.Type, name)
			}
			properties.SetFloat(name, v)
		case "rgb", "spectrum":
			c, ok := stmt.GetRGBParam(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s %q", ErrInvalidParameter, param.Type, name)
			}
			properties.SetRGB(name, *c)
		case "texture":
			ref, _ := stmt.GetStringParam(name)
			tex, ok := p.textures[ref]
			if !ok {
				return nil, fmt.Errorf("%w: texture %q", ErrUndefinedReference, ref)
			}
			properties.SetTexture(name, tex)
		case "string":
			if name == "materials" {
				// Nested BSDFs of a blend, in order
				for i, ref := range param.Values {
					nested, ok := p.namedMaterials[ref]
					if !ok {
						return nil, fmt.Errorf("%w: material %q", ErrUndefinedReference, ref)
					}
					properties.SetProperties(fmt.Sprintf("bsdf_%d", i), nested)
				}
				continue
			}
			v, _ := stmt.GetStringParam(name)
			properties.SetString(name, v)
		default:
			return nil, fmt.Errorf("%w: unsupported parameter type %q", ErrInvalidParameter, param.Type)
		}
	}
	return properties, nil
}

// buildTexture creates the texture a Texture statement describes
func (p *PBRTParser) buildTexture(stmt *PBRTStatement) (texture.Texture, error) {
	class, kind := stmt.Args[1], stmt.Args[2]
	if class != "float" && class != "spectrum" {
		return nil, fmt.Errorf("%w: texture class %q", ErrInvalidParameter, class)
	}

	switch kind {
	case "constant":
		return p.textureParam(stmt, "value", 1)
	case "checkerboard":
		tex1, err := p.textureParam(stmt, "tex1", 0.4)
		if err != nil {
			return nil, err
		}
		tex2, err := p.textureParam(stmt, "tex2", 0.2)
		if err != nil {
			return nil, err
		}
		return texture.NewCheckerboard(tex1, tex2), nil
	case "imagemap":
		filename, ok := stmt.GetStringParam("filename")
		if !ok {
			return nil, fmt.Errorf("%w: imagemap requires a filename", ErrInvalidParameter)
		}
		if !filepath.IsAbs(filename) {
			filename = filepath.Join(p.baseDir, filename)
		}

		// Scalar maps hold data, color maps are sRGB encoded
		raw := class == "float"
		if v, ok := stmt.GetBoolParam("raw"); ok {
			raw = v
		}

		bitmap, err := LoadBitmap(filename, raw)
		if err != nil {
			return nil, err
		}
		filterName, _ := stmt.GetStringParam("filter")
		if bitmap.Filter, err = texture.ParseFilterType(filterName); err != nil {
			return nil, err
		}
		wrapName, _ := stmt.GetStringParam("wrap")
		if bitmap.Wrap, err = texture.ParseWrapMode(wrapName); err != nil {
			return nil, err
		}
		return bitmap, nil
	}
	return nil, fmt.Errorf("%w: texture kind %q", ErrInvalidParameter, kind)
}

// textureParam reads a float, rgb or texture reference parameter as a texture
func (p *PBRTParser) textureParam(stmt *PBRTStatement, name string, def float64) (texture.Texture, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return texture.NewConstant(def), nil
	}
	switch param.Type {
	case "float":
		if v, ok := stmt.GetFloatParam(name); ok {
			return texture.NewConstant(v), nil
		}
	case "rgb", "spectrum":
		if c, ok := stmt.GetRGBParam(name); ok {
			return texture.NewConstantRGB(*c), nil
		}
	case "texture":
		ref, _ := stmt.GetStringParam(name)
		if tex, ok := p.textures[ref]; ok {
			return tex, nil
		}
		return nil, fmt.Errorf("%w: texture %q", ErrUndefinedReference, ref)
	}
	return nil, fmt.Errorf("%w: %s %q", ErrInvalidParameter, param.Type, name)
}

// validateFilePath validates a material file path
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidPath)
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("%w: null bytes not allowed", ErrInvalidPath)
	}

	// Check for extremely long paths that could cause issues
	if len(filepath.Clean(filename)) > 512 {
		return fmt.Errorf("%w: maximum 512 characters allowed", ErrInvalidPath)
	}

	// Only material descriptions
	if !strings.HasSuffix(strings.ToLower(filename), ".pbrt") {
		return fmt.Errorf("%w: only .pbrt files are allowed", ErrInvalidPath)
	}
	return nil
}

// tokenizePBRT tokenizes a line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	for _, char := range line {
		switch char {
		case '"':
			current.WriteRune(char)
			if !inBrackets {
				if inQuotes {
					// End of quoted string
					tokens = append(tokens, current.String())
					current.Reset()
				}
				inQuotes = !inQuotes
			}
		case '[':
			if !inQuotes {
				if current.Len() > 0 {
					tokens = append(tokens, current.String())
					current.Reset()
				}
				inBrackets = true
			}
			current.WriteRune(char)
		case ']':
			current.WriteRune(char)
			if !inQuotes && inBrackets {
				tokens = append(tokens, current.String())
				current.Reset()
				inBrackets = false
			}
		case ' ', '\t':
			if inQuotes || inBrackets {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, "\"") && strings.HasSuffix(token, "\"")
}

// parseStatement parses a single statement: Type "arg"... "type name" value...
func parseStatement(line string) (*PBRTStatement, error) {
	parts := tokenizePBRT(line)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: invalid statement format", ErrSyntax)
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}

	// Positional arguments are quoted single words before the first parameter
	i := 1
	for i < len(parts) && isQuoted(parts[i]) && len(strings.Fields(strings.Trim(parts[i], "\""))) == 1 {
		stmt.Args = append(stmt.Args, strings.Trim(parts[i], "\""))
		i++
	}

	for i < len(parts) {
		if !isQuoted(parts[i]) {
			return nil, fmt.Errorf("%w: unexpected token %s", ErrSyntax, parts[i])
		}

		// Find parameter name and type
		paramParts := strings.Fields(strings.Trim(parts[i], "\""))
		if len(paramParts) != 2 {
			return nil, fmt.Errorf("%w: malformed parameter declaration %s", ErrSyntax, parts[i])
		}
		paramType, paramName := paramParts[0], paramParts[1]
		i++

		if i >= len(parts) {
			return nil, fmt.Errorf("%w: parameter %q has no value", ErrSyntax, paramName)
		}

		var values []string
		if strings.HasPrefix(parts[i], "[") && strings.HasSuffix(parts[i], "]") {
			// Array value - already tokenized as single token
			for _, v := range strings.Fields(strings.Trim(parts[i], "[] ")) {
				values = append(values, strings.Trim(v, "\""))
			}
		} else {
			values = []string{strings.Trim(parts[i], "\"")}
		}
		i++

		if _, exists := stmt.Parameters[paramName]; !exists {
			stmt.order = append(stmt.order, paramName)
		}
		stmt.Parameters[paramName] = PBRTParam{
			Type:   paramType,
			Values: values,
		}
	}

	return stmt, nil
}

// ParameterNames returns parameter names in declaration order
func (stmt *PBRTStatement) ParameterNames() []string {
	names := make([]string, 0, len(stmt.order))
	for _, name := range stmt.order {
		if _, ok := stmt.Parameters[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// GetFloatParam extracts a float parameter from a statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) != 1 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetRGBParam extracts an RGB color parameter. A single value is gray.
func (stmt *PBRTStatement) GetRGBParam(name string) (*core.Vec3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, false
	}
	if len(param.Values) == 1 {
		v, err := strconv.ParseFloat(param.Values[0], 64)
		if err != nil {
			return nil, false
		}
		gray := core.Splat(v)
		return &gray, true
	}
	if len(param.Values) != 3 {
		return nil, false
	}
	r, err1 := strconv.ParseFloat(param.Values[0], 64)
	g, err2 := strconv.ParseFloat(param.Values[1], 64)
	b, err3 := strconv.ParseFloat(param.Values[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, false
	}
	return &core.Vec3{X: r, Y: g, Z: b}, true
}

// GetStringParam extracts a string parameter from a statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// GetBoolParam extracts a bool parameter from a statement
func (stmt *PBRTStatement) GetBoolParam(name string) (bool, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || param.Type != "bool" || len(param.Values) != 1 {
		return false, false
	}
	v, err := strconv.ParseBool(param.Values[0])
	if err != nil {
		return false, false
	}
	return v, true
}

// isStatementStart determines if a line starts a new statement
func isStatementStart(line string) bool {
	statementTypes := []string{
		"Texture", "Material", "MakeNamedMaterial", "NamedMaterial",
	}

	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || line == stmt {
			return true
		}
	}
	return false
}
