package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorEscaping(t *testing.T) {
	dotted := EndpointLocator("/v1.0/pets", "GET")
	nested := Root().Child("paths", "/v1", "0/pets", "get")

	assert.NotEqual(t, dotted, nested)
	assert.Equal(t, []string{"paths", "/v1.0/pets", "get"}, dotted.Segments())
	assert.True(t, dotted.IsEndpoint())
	assert.False(t, nested.IsEndpoint())

	tilde := SchemaComponentLocator("a~b.c")
	assert.Equal(t, Locator("components.schemas.a~0b~1c"), tilde)
	assert.Equal(t, "a~b.c", tilde.Last())
	assert.True(t, tilde.IsComponentSchema())
}

func TestLocatorShapes(t *testing.T) {
	assert.True(t, Root().IsZero())
	assert.Nil(t, Root().Segments())
	assert.True(t, DefinitionLocator("Pet").IsComponentSchema())
	assert.False(t, SchemaComponentLocator("Pet").Child("properties", "id").IsComponentSchema())
	assert.False(t, Root().Child("paths", "/pets", "parameters").IsEndpoint())
}

func TestGraphUniqueLocators(t *testing.T) {
	g := NewGraph()
	loc := EndpointLocator("/pets", "get")

	require.True(t, g.AddEndpoint(&Endpoint{Locator: loc, Method: "get", Path: "/pets"}))
	assert.False(t, g.AddEndpoint(&Endpoint{Locator: loc}))
	assert.False(t, g.AddSchema(&Schema{Locator: loc}))

	require.True(t, g.AddSchema(&Schema{Locator: SchemaComponentLocator("Pet"), Name: "Pet"}))
	require.True(t, g.AddSchema(&Schema{Locator: SchemaComponentLocator("Pet").Child("properties", "id")}))

	assert.Len(t, g.Schemas(), 2)
	assert.Len(t, g.ComponentSchemas(), 1)
	assert.Equal(t, "GET /pets", g.Label(loc))
	assert.Equal(t, "Pet", g.Label(SchemaComponentLocator("Pet")))
	assert.Equal(t, "id", g.Label(SchemaComponentLocator("Pet").Child("properties", "id")))
	assert.True(t, g.Has(loc))
	assert.False(t, g.Has(SchemaComponentLocator("Owner")))
}

func TestGraphCloneIsIndependent(t *testing.T) {
	g := NewGraph()
	pet := SchemaComponentLocator("Pet")
	require.True(t, g.AddSchema(&Schema{Locator: pet, Name: "Pet"}))
	g.Edges = []Edge{{From: pet.Child("properties", "owner"), To: SchemaComponentLocator("Owner")}}

	c := g.Clone()
	s, _ := c.Schema(pet)
	s.Cyclic = true
	c.Edges[0].Dangling = true

	orig, _ := g.Schema(pet)
	assert.False(t, orig.Cyclic)
	assert.False(t, g.Edges[0].Dangling)
}

func TestEndpointParamsOrder(t *testing.T) {
	e := &Endpoint{
		PathParams:   []Param{{Name: "id", In: ParamInPath}},
		QueryParams:  []Param{{Name: "limit", In: ParamInQuery}},
		HeaderParams: []Param{{Name: "X-Trace", In: ParamInHeader}},
		Responses:    []Response{{Code: "200"}, {Code: "404"}},
	}
	var names []string
	for _, p := range e.Params() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"id", "limit", "X-Trace"}, names)

	r, ok := e.Response("404")
	require.True(t, ok)
	assert.Equal(t, "404", r.Code)
	_, ok = e.Response("500")
	assert.False(t, ok)
}
