package openapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// maxNesting bounds the depth of decoded trees; YAML aliases can otherwise
// describe self-containing structures.
const maxNesting = 512

// Map is a decoded mapping that keeps the document's key order.
type Map struct {
	Keys   []string
	Values map[string]any
}

func NewMap() *Map {
	return &Map{Values: map[string]any{}}
}

// Set appends k, or replaces its value if already present.
func (m *Map) Set(k string, v any) {
	if _, ok := m.Values[k]; !ok {
		m.Keys = append(m.Keys, k)
	}
	m.Values[k] = v
}

func (m *Map) Get(k string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Values[k]
	return v, ok
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Keys)
}

// Plain converts the tree below m to map[string]any / []any values.
func (m *Map) Plain() map[string]any {
	out := make(map[string]any, len(m.Keys))
	for _, k := range m.Keys {
		out[k] = plain(m.Values[k])
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Plain()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}

// Decode turns JSON or YAML bytes into an untyped tree of *Map, []any and
// scalars (string, int, float64, bool, nil). JSON is decoded through the
// YAML parser, which accepts it as a subset.
func Decode(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Kind: InvalidShape, Message: "document is empty"}
		}
		return nil, &ParseError{Kind: InvalidShape, Message: "malformed YAML/JSON", Cause: err}
	}
	v, err := convertNode(&root, 0)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func convertNode(n *yaml.Node, depth int) (any, error) {
	if depth > maxNesting {
		return nil, &ParseError{Kind: InvalidShape, Message: fmt.Sprintf("nesting deeper than %d levels", maxNesting)}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convertNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		return convertNode(n.Alias, depth+1)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, &ParseError{Kind: InvalidShape, Message: fmt.Sprintf("line %d: mapping key is not a scalar", k.Line)}
			}
			if _, dup := m.Values[k.Value]; dup {
				return nil, &ParseError{Kind: InvalidShape, Message: fmt.Sprintf("line %d: duplicate key %q", k.Line, k.Value)}
			}
			cv, err := convertNode(v, depth+1)
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, cv)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			cv, err := convertNode(c, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, cv)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &ParseError{Kind: InvalidShape, Message: fmt.Sprintf("line %d: bad scalar", n.Line), Cause: err}
		}
		return v, nil
	}
	return nil, nil
}
