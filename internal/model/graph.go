package model

import "strings"

// Graph is one immutable generation of a parsed document.
//
// Entities are indexed by Locator and edges hold Locator values only, so a
// graph with reference cycles is a flat set of nodes. A Graph must not be
// modified once it has been handed to a navigation engine; Clone produces a
// copy that may be.
type Graph struct {
	Generation  uint64
	Source      string
	Fingerprint uint64
	// SpecVersion is the value of the openapi or swagger field.
	SpecVersion string
	Info        Info
	Servers     []string
	Tags        []Tag
	Endpoints   []*Endpoint
	// Components lists component schema locators in document order.
	Components []Locator
	Edges      []Edge

	endpoints   map[Locator]*Endpoint
	schemas     map[Locator]*Schema
	schemaOrder []Locator
}

func NewGraph() *Graph {
	return &Graph{
		endpoints: map[Locator]*Endpoint{},
		schemas:   map[Locator]*Schema{},
	}
}

// AddEndpoint registers e and reports false if its locator is taken.
func (g *Graph) AddEndpoint(e *Endpoint) bool {
	if g.taken(e.Locator) {
		return false
	}
	g.endpoints[e.Locator] = e
	g.Endpoints = append(g.Endpoints, e)
	return true
}

// AddSchema registers s and reports false if its locator is taken.
func (g *Graph) AddSchema(s *Schema) bool {
	if g.taken(s.Locator) {
		return false
	}
	g.schemas[s.Locator] = s
	g.schemaOrder = append(g.schemaOrder, s.Locator)
	if s.Name != "" {
		g.Components = append(g.Components, s.Locator)
	}
	return true
}

func (g *Graph) taken(l Locator) bool {
	_, e := g.endpoints[l]
	_, s := g.schemas[l]
	return e || s
}

func (g *Graph) Endpoint(l Locator) (*Endpoint, bool) {
	e, ok := g.endpoints[l]
	return e, ok
}

func (g *Graph) Schema(l Locator) (*Schema, bool) {
	s, ok := g.schemas[l]
	return s, ok
}

// Has reports whether l addresses an entity of g.
func (g *Graph) Has(l Locator) bool {
	if g == nil {
		return false
	}
	return g.taken(l)
}

// Schemas returns every schema, inline ones included, in build order.
func (g *Graph) Schemas() []*Schema {
	out := make([]*Schema, 0, len(g.schemaOrder))
	for _, l := range g.schemaOrder {
		out = append(out, g.schemas[l])
	}
	return out
}

// ComponentSchemas returns the named schemas in document order.
func (g *Graph) ComponentSchemas() []*Schema {
	out := make([]*Schema, 0, len(g.Components))
	for _, l := range g.Components {
		out = append(out, g.schemas[l])
	}
	return out
}

// DanglingEdges returns the edges whose target is missing.
func (g *Graph) DanglingEdges() []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Dangling {
			out = append(out, e)
		}
	}
	return out
}

// Label returns a short human name for l.
func (g *Graph) Label(l Locator) string {
	if l.IsZero() {
		return ""
	}
	if e, ok := g.Endpoint(l); ok {
		return strings.ToUpper(e.Method) + " " + e.Path
	}
	if s, ok := g.Schema(l); ok && s.Name != "" {
		return s.Name
	}
	segs := l.Segments()
	if len(segs) >= 2 && segs[len(segs)-1] == "schema" {
		return strings.Join(segs[len(segs)-2:], ".")
	}
	return l.Last()
}

// Clone returns a copy whose schemas and edges may be modified without
// affecting g. Endpoints are shared since nothing rewrites them.
func (g *Graph) Clone() *Graph {
	c := *g
	c.Edges = append([]Edge(nil), g.Edges...)
	c.Components = append([]Locator(nil), g.Components...)
	c.schemaOrder = append([]Locator(nil), g.schemaOrder...)
	c.endpoints = make(map[Locator]*Endpoint, len(g.endpoints))
	for k, v := range g.endpoints {
		c.endpoints[k] = v
	}
	c.schemas = make(map[Locator]*Schema, len(g.schemas))
	for k, v := range g.schemas {
		s := *v
		c.schemas[k] = &s
	}
	return &c
}
