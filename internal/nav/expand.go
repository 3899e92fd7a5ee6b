package nav

import (
	"strconv"

	"github.com/frankie567/openapi-tools/internal/model"
)

// Node is one entry of an expanded schema tree.
type Node struct {
	Name     string
	Locator  model.Locator
	Required bool
	Type     Summary
	// Cyclic marks a node whose schema already appears on the path from
	// the root; it has no children.
	Cyclic bool
	// Truncated marks a node cut off at the depth bound.
	Truncated bool
	Children  []*Node
}

// Expand returns the property tree below l, following references, down to
// depth levels.
func (e *Engine) Expand(l model.Locator, depth int) *Node {
	root := &Node{Name: e.g.Label(l), Locator: l, Type: Summarize(e.g, l)}
	e.expand(root, l, depth, map[model.Locator]bool{})
	return root
}

func (e *Engine) expand(n *Node, l model.Locator, depth int, path map[model.Locator]bool) {
	s, ok, loop := e.deref(l)
	if loop {
		n.Cyclic = true
		return
	}
	if !ok {
		return
	}
	if path[s.Locator] {
		n.Cyclic = true
		return
	}
	children := schemaChildren(s)
	if len(children) == 0 {
		return
	}
	if depth <= 0 {
		n.Truncated = true
		return
	}
	path[s.Locator] = true
	defer delete(path, s.Locator)
	for _, c := range children {
		c.Type = Summarize(e.g, c.Locator)
		e.expand(c, c.Locator, depth-1, path)
		n.Children = append(n.Children, c)
	}
}

// deref follows reference placeholders to the schema they name. loop is
// set when the chain of references comes back on itself.
func (e *Engine) deref(l model.Locator) (s *model.Schema, ok, loop bool) {
	seen := map[model.Locator]bool{}
	s, ok = e.g.Schema(l)
	for ok && s.Kind == model.KindRef {
		if seen[s.Locator] {
			return nil, false, true
		}
		seen[s.Locator] = true
		s, ok = e.g.Schema(s.RefTarget)
	}
	return s, ok, false
}

func schemaChildren(s *model.Schema) []*Node {
	var out []*Node
	for _, p := range s.Properties {
		out = append(out, &Node{Name: p.Name, Locator: p.Schema, Required: p.Required})
	}
	if !s.Items.IsZero() {
		out = append(out, &Node{Name: "[]", Locator: s.Items})
	}
	if !s.AdditionalProperties.IsZero() {
		out = append(out, &Node{Name: "{*}", Locator: s.AdditionalProperties})
	}
	for _, c := range s.Compositions {
		for i, m := range c.Members {
			out = append(out, &Node{Name: string(c.Kind) + "[" + strconv.Itoa(i) + "]", Locator: m})
		}
	}
	if !s.Not.IsZero() {
		out = append(out, &Node{Name: "not", Locator: s.Not})
	}
	return out
}
