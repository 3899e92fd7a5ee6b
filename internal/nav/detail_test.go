package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankie567/openapi-tools/internal/model"
)

func TestDetailEndpoint(t *testing.T) {
	e := New(graph(t, petstore, 1))

	d := e.Detail(listPets)
	require.True(t, d.Found)
	require.NotNil(t, d.Endpoint)
	assert.Nil(t, d.Schema)
	assert.Equal(t, "GET /pets", d.Label)

	require.Len(t, d.Endpoint.Responses, 1)
	r := d.Endpoint.Responses[0]
	require.Len(t, r.Content, 1)
	assert.Equal(t, "array of Pet", r.Content[0].Type.Text)
	assert.Equal(t, []model.Locator{pet}, r.Content[0].Type.Links)
	assert.True(t, r.Content[0].Type.Cyclic)

	del := e.Detail(deletePet)
	require.Len(t, del.Endpoint.PathRows, 1)
	assert.Equal(t, "string", del.Endpoint.PathRows[0].Type.Text)
}

func TestDetailSchema(t *testing.T) {
	e := New(graph(t, petstore, 1))
	d := e.Detail(pet)
	require.NotNil(t, d.Schema)
	assert.Equal(t, "object", d.Schema.Type.Text)

	rows := map[string]PropertyRow{}
	for _, p := range d.Schema.Properties {
		rows[p.Name] = p
	}
	assert.True(t, rows["name"].Required)
	assert.Equal(t, "minLen 1", rows["name"].Constraints)
	assert.Equal(t, "enum(available, sold)", rows["status"].Type.Text)
	assert.Equal(t, "Owner", rows["owner"].Type.Text)
	assert.False(t, rows["owner"].Type.Dangling)

	vet := rows["vet"].Type
	assert.True(t, vet.Dangling)
	assert.Equal(t, "Vet", vet.Text)
	assert.Equal(t, "#/components/schemas/Vet", vet.Ref)
	assert.Empty(t, vet.Links)
}

func TestDetailUnknownLocator(t *testing.T) {
	e := New(graph(t, petstore, 1))
	d := e.Detail(model.SchemaComponentLocator("Nope"))
	assert.False(t, d.Found)
	assert.Nil(t, d.Endpoint)
	assert.Nil(t, d.Schema)
}

func TestSummarizeGrammar(t *testing.T) {
	g := graph(t, `
openapi: 3.1.0
components:
  schemas:
    Choice:
      oneOf:
        - {$ref: '#/components/schemas/A'}
        - {type: integer, format: int64}
    Map:
      type: object
      additionalProperties: {type: boolean}
    Maybe: {type: [string, "null"]}
    Free: {}
    A: {type: object}
`, 1)
	cases := map[string]string{
		"Choice": "oneOf(A, integer (int64))",
		"Map":    "map of boolean",
		"Maybe":  "string | null",
		"Free":   "any",
		"A":      "object",
	}
	for name, want := range cases {
		assert.Equal(t, want, Summarize(g, model.SchemaComponentLocator(name)).Text, name)
	}
	assert.Equal(t, "any", Summarize(g, model.Root()).Text)
}

func TestConstraintsText(t *testing.T) {
	lo, hi, mult := 1.5, 10.0, 0.5
	minLen, maxItems := 2, 5
	c := model.Constraints{
		Minimum: &lo, Maximum: &hi, ExclusiveMaximum: "true", MultipleOf: &mult,
		MinLength: &minLen, Pattern: "^[a-z]+$", MaxItems: &maxItems, UniqueItems: true,
	}
	assert.Equal(t, "min 1.5, max 10, excl. max true, multiple of 0.5, minLen 2, pattern ^[a-z]+$, maxItems 5, unique", ConstraintsText(c))
	assert.Empty(t, ConstraintsText(model.Constraints{}))
}

func TestExpandStopsAtCycles(t *testing.T) {
	e := New(graph(t, petstore, 1))
	tree := e.Expand(pet, 10)
	require.Len(t, tree.Children, 4)

	ownerNode := tree.Children[2]
	assert.Equal(t, "owner", ownerNode.Name)
	require.Len(t, ownerNode.Children, 1)
	pets := ownerNode.Children[0]
	require.Len(t, pets.Children, 1)
	item := pets.Children[0]
	assert.Equal(t, "[]", item.Name)
	assert.True(t, item.Cyclic, "Pet repeats on the path")
	assert.Empty(t, item.Children)

	assert.True(t, tree.Children[3].Type.Dangling)
	assert.Empty(t, tree.Children[3].Children)
}

func TestExpandMarksReferenceOnlyCycle(t *testing.T) {
	e := New(graph(t, `
openapi: 3.0.0
paths: {}
components:
  schemas:
    A: {$ref: '#/components/schemas/B'}
    B: {$ref: '#/components/schemas/A'}
`, 1))
	a := model.SchemaComponentLocator("A")
	s, ok := e.Graph().Schema(a)
	require.True(t, ok)
	assert.True(t, s.Cyclic)

	tree := e.Expand(a, 10)
	assert.True(t, tree.Cyclic)
	assert.Empty(t, tree.Children)
}

func TestExpandShowsNot(t *testing.T) {
	e := New(graph(t, `
openapi: 3.0.0
paths: {}
components:
  schemas:
    NotText:
      not: {type: string}
`, 1))
	tree := e.Expand(model.SchemaComponentLocator("NotText"), 2)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "not", tree.Children[0].Name)
	assert.Equal(t, "string", tree.Children[0].Type.Text)
}

func TestExpandDepthBound(t *testing.T) {
	e := New(graph(t, petstore, 1))
	tree := e.Expand(pet, 1)
	ownerNode := tree.Children[2]
	assert.True(t, ownerNode.Truncated)
	assert.Empty(t, ownerNode.Children)
	assert.False(t, tree.Children[0].Truncated, "leaves are never truncated")
}
