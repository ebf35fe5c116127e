package config

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is a single style setting as written in the config file.
//
// Graphviz cares whether an attribute value was a string or a number, so a
// Value remembers which kind of scalar it was decoded from: "1.5" (quoted)
// is a string, 1.5 is a literal.
type Value struct {
	text     string
	isString bool
}

// String returns a string-typed Value.
func String(s string) *Value { return &Value{text: s, isString: true} }

// Literal returns a non-string Value (number or boolean) with the given
// source text.
func Literal(s string) *Value { return &Value{text: s} }

// Int returns a numeric Value.
func Int(n int) *Value { return Literal(strconv.Itoa(n)) }

// Text returns the value's source text without any quoting.
func (v Value) Text() string { return v.text }

// IsString reports whether the value was a string in the source document.
func (v Value) IsString() bool { return v.isString }

// Quoted renders the value for a DOT attribute list. Strings are wrapped in
// double quotes unless they already are; literals are emitted as-is.
func (v Value) Quoted() string {
	if !v.isString {
		return v.text
	}
	if len(v.text) >= 2 && v.text[0] == '"' && v.text[len(v.text)-1] == '"' {
		return v.text
	}
	return `"` + v.text + `"`
}

// UnmarshalYAML decodes a scalar, keeping its string-ness.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	v.text = node.Value
	v.isString = node.ShortTag() == "!!str"
	return nil
}

// MarshalYAML encodes strings as YAML strings and literals as plain scalars.
func (v Value) MarshalYAML() (any, error) {
	if v.isString {
		return v.text, nil
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v.text}, nil
}

// UnmarshalTOML decodes a TOML scalar, keeping its string-ness.
func (v *Value) UnmarshalTOML(data any) error {
	switch x := data.(type) {
	case string:
		v.text, v.isString = x, true
	case int64:
		v.text, v.isString = strconv.FormatInt(x, 10), false
	case float64:
		v.text, v.isString = strconv.FormatFloat(x, 'f', -1, 64), false
	case bool:
		v.text, v.isString = strconv.FormatBool(x), false
	default:
		return fmt.Errorf("expected a scalar value, got %T", data)
	}
	return nil
}

// Attribute is one named entry of graph.attributes.
type Attribute struct {
	Name  string
	Value Value
}

// Attributes is an ordered list of extra graph attributes. YAML documents
// keep their written order; TOML tables have no order and are sorted by name.
type Attributes []Attribute

// UnmarshalYAML decodes a mapping in document order. Null entries are dropped.
func (a *Attributes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attributes must be a mapping", node.Line)
	}
	out := make(Attributes, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.ShortTag() == "!!null" {
			continue
		}
		var v Value
		if err := v.UnmarshalYAML(val); err != nil {
			return fmt.Errorf("attribute %s: %w", key.Value, err)
		}
		out = append(out, Attribute{Name: key.Value, Value: v})
	}
	*a = out
	return nil
}

// MarshalYAML encodes the attributes as an ordered mapping.
func (a Attributes) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, attr := range a {
		var val yaml.Node
		if err := val.Encode(attr.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: attr.Name},
			&val,
		)
	}
	return node, nil
}

// UnmarshalTOML decodes a TOML table, sorted by attribute name.
func (a *Attributes) UnmarshalTOML(data any) error {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("attributes must be a table, got %T", data)
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Attributes, 0, len(names))
	for _, name := range names {
		var v Value
		if err := v.UnmarshalTOML(m[name]); err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
		out = append(out, Attribute{Name: name, Value: v})
	}
	*a = out
	return nil
}
