package openapi

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankie567/openapi-tools/internal/model"
)

const cyclic = `
openapi: 3.0.0
paths: {}
components:
  schemas:
    A:
      type: object
      properties:
        b: {$ref: '#/components/schemas/B'}
    B:
      type: object
      properties:
        a: {$ref: '#/components/schemas/A'}
    Node:
      type: object
      properties:
        children:
          type: array
          items: {$ref: '#/components/schemas/Node'}
    Leaf:
      type: object
      properties:
        a: {$ref: '#/components/schemas/A'}
        gone: {$ref: '#/components/schemas/Gone'}
        remote: {$ref: 'https://example.com/schemas.json#/Thing'}
`

func TestResolveMarksCycles(t *testing.T) {
	g := mustParse(t, cyclic)

	for _, name := range []string{"A", "B", "Node"} {
		s, ok := g.Schema(model.SchemaComponentLocator(name))
		require.True(t, ok, name)
		assert.True(t, s.Cyclic, name)
	}
	leaf, _ := g.Schema(model.SchemaComponentLocator("Leaf"))
	assert.False(t, leaf.Cyclic, "reaching a cycle is not being on one")
}

func TestResolveMarksDanglingEdges(t *testing.T) {
	g := mustParse(t, cyclic)

	dangling := g.DanglingEdges()
	require.Len(t, dangling, 2)
	assert.Equal(t, "#/components/schemas/Gone", dangling[0].Raw)
	assert.Equal(t, "https://example.com/schemas.json#/Thing", dangling[1].Raw)
	assert.False(t, g.Has(dangling[1].To))

	for _, e := range g.Edges {
		assert.Equal(t, !g.Has(e.To), e.Dangling, e.Raw)
	}
}

func TestResolveIsPure(t *testing.T) {
	tree, err := Decode([]byte(cyclic))
	require.NoError(t, err)
	built, err := Build(tree)
	require.NoError(t, err)

	resolved := Resolve(built, ResolveOptions{})

	a, _ := built.Schema(model.SchemaComponentLocator("A"))
	assert.False(t, a.Cyclic)
	assert.Empty(t, built.DanglingEdges())

	ra, _ := resolved.Schema(model.SchemaComponentLocator("A"))
	assert.True(t, ra.Cyclic)
	assert.Equal(t, len(built.Endpoints), len(resolved.Endpoints))
}

func TestResolveDepthBound(t *testing.T) {
	g := mustParse(t, cyclic)
	tree, _ := Decode([]byte(cyclic))
	built, _ := Build(tree)

	// A -> B -> A counts two schemas; the property placeholders are free.
	short := Resolve(built, ResolveOptions{MaxDepth: 1})
	a, _ := short.Schema(model.SchemaComponentLocator("A"))
	assert.False(t, a.Cyclic)

	exact := Resolve(built, ResolveOptions{MaxDepth: 2})
	a, _ = exact.Schema(model.SchemaComponentLocator("A"))
	assert.True(t, a.Cyclic)
	b, _ := exact.Schema(model.SchemaComponentLocator("B"))
	assert.True(t, b.Cyclic)

	long, _ := g.Schema(model.SchemaComponentLocator("A"))
	assert.True(t, long.Cyclic)
}

func TestResolveRefOnlyCycle(t *testing.T) {
	g := mustParse(t, `
openapi: 3.0.0
paths: {}
components:
  schemas:
    A: {$ref: '#/components/schemas/B'}
    B: {$ref: '#/components/schemas/A'}
`)
	for _, name := range []string{"A", "B"} {
		s, _ := g.Schema(model.SchemaComponentLocator(name))
		assert.True(t, s.Cyclic, name)
	}
}

func TestResolveLongChainDoesNotRecurse(t *testing.T) {
	g := model.NewGraph()
	const n = 2000
	loc := func(i int) model.Locator { return model.SchemaComponentLocator("S").Child("n", strconv.Itoa(i)) }
	for i := 0; i < n; i++ {
		s := &model.Schema{Locator: loc(i), Kind: model.KindRef, RefTarget: loc((i + 1) % n)}
		require.True(t, g.AddSchema(s))
	}
	out := Resolve(g, ResolveOptions{MaxDepth: n})
	first, _ := out.Schema(loc(0))
	assert.True(t, first.Cyclic)
}
