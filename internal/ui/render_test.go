package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankie567/openapi-tools/internal/model"
	"github.com/frankie567/openapi-tools/internal/nav"
	"github.com/frankie567/openapi-tools/internal/openapi"
)

const petstore = `
openapi: 3.0.3
info: {title: Petstore, version: 1.0.0}
servers:
  - url: https://api.example.com
paths:
  /pets:
    get:
      tags: [pets]
      summary: List pets
      operationId: listPets
      parameters:
        - {name: limit, in: query, schema: {type: integer, maximum: 100}}
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: {$ref: '#/components/schemas/Pet'}
    post:
      tags: [pets]
      requestBody:
        required: true
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Pet'}
      responses:
        '201': {description: created}
  /pets/{id}:
    parameters:
      - {name: id, in: path, required: true, schema: {type: string}}
    delete:
      tags: [pets, admin]
      responses:
        '204': {description: gone}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name: {type: string, minLength: 1}
        owner: {$ref: '#/components/schemas/Owner'}
        vet: {$ref: '#/components/schemas/Vet'}
      example: {name: Rex}
    Owner:
      type: object
      properties:
        pets:
          type: array
          items: {$ref: '#/components/schemas/Pet'}
    Color: {type: string, enum: [red, green]}
`

var (
	listPets  = model.EndpointLocator("/pets", "get")
	createPet = model.EndpointLocator("/pets", "post")
	deletePet = model.EndpointLocator("/pets/{id}", "delete")
	pet       = model.SchemaComponentLocator("Pet")
	owner     = model.SchemaComponentLocator("Owner")
)

func engine(t *testing.T) *nav.Engine {
	t.Helper()
	g, err := openapi.Parse([]byte(petstore), openapi.ResolveOptions{})
	require.NoError(t, err)
	return nav.New(g)
}

func plain(lines []line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = stripANSI(l.text)
	}
	return out
}

func findLine(t *testing.T, lines []line, substr string) line {
	t.Helper()
	for _, l := range lines {
		if strings.Contains(stripANSI(l.text), substr) {
			return l
		}
	}
	require.Failf(t, "line not found", "no line contains %q in %v", substr, plain(lines))
	return line{}
}

func TestListItems_EndpointsGroupedByTag(t *testing.T) {
	items := listItems(engine(t))

	var headers []string
	var endpoints int
	for _, it := range items {
		if it.header {
			headers = append(headers, stripANSI(it.text))
			continue
		}
		endpoints++
	}
	assert.Equal(t, []string{"pets", "admin"}, headers)
	// delete is listed under both of its tags
	assert.Equal(t, 4, endpoints)
	assert.Equal(t, listPets, items[1].loc)
	assert.Contains(t, stripANSI(items[1].text), "GET")
	assert.Contains(t, items[1].key, "List pets")
}

func TestListItems_Schemas(t *testing.T) {
	e := engine(t)
	e.SelectTopLevel(nav.ModeSchemas)

	items := listItems(e)
	var names []string
	for _, it := range items {
		names = append(names, it.key)
	}
	assert.Equal(t, []string{"Color", "Owner", "Pet"}, names)
	assert.Contains(t, stripANSI(items[2].text), "↻")
	assert.NotContains(t, stripANSI(items[0].text), "↻")
}

func TestFilterItems(t *testing.T) {
	items := listItems(engine(t))

	assert.Equal(t, items, filterItems(items, "  "))

	got := filterItems(items, "delete")
	require.Len(t, got, 1, "an endpoint under two tags is kept once")
	assert.Equal(t, deletePet, got[0].loc)

	got = filterItems(items, "post")
	require.Len(t, got, 1)
	assert.Equal(t, createPet, got[0].loc)

	for _, it := range filterItems(items, "p") {
		assert.False(t, it.header)
	}
	assert.Empty(t, filterItems(items, "zzz"))
}

func TestBreadcrumbText(t *testing.T) {
	e := engine(t)
	assert.Equal(t, "Endpoints", stripANSI(breadcrumbText(e.Snapshot())))

	e.Open(listPets)
	e.Open(pet)
	assert.Equal(t, "Endpoints › GET /pets › Pet", stripANSI(breadcrumbText(e.Snapshot())))

	e.SelectTopLevel(nav.ModeSchemas)
	e.Back()
	e.Back()
	assert.Equal(t, "Schemas", stripANSI(breadcrumbText(e.Snapshot())))
	e.Open(owner)
	assert.Equal(t, "Schemas › Owner", stripANSI(breadcrumbText(e.Snapshot())))
}

func TestHeaderText(t *testing.T) {
	e := engine(t)
	assert.Equal(t, "openapi-tools  Petstore 1.0.0 · petstore.yaml", stripANSI(headerText(e.Graph(), "petstore.yaml")))
}

func TestDetailLines_Root(t *testing.T) {
	e := engine(t)
	title, lines := detailLines(e, e.Current(), tabInfo)
	assert.Equal(t, "Endpoints", title)
	text := strings.Join(plain(lines), "\n")
	assert.Contains(t, text, "Petstore 1.0.0")
	assert.Contains(t, text, "https://api.example.com")
	assert.Contains(t, text, "3 endpoints, 3 schemas")
	assert.Contains(t, text, "1 unresolved references")
}

func TestDetailLines_EndpointTabs(t *testing.T) {
	e := engine(t)
	e.Open(listPets)

	title, lines := detailLines(e, e.Current(), tabInfo)
	assert.Equal(t, "GET /pets · Info", title)
	findLine(t, lines, "operationId: listPets")
	findLine(t, lines, "tags: pets")

	_, lines = detailLines(e, e.Current(), tabQuery)
	l := findLine(t, lines, "limit")
	assert.Contains(t, stripANSI(l.text), "integer")
	assert.True(t, l.link.IsZero())

	_, lines = detailLines(e, e.Current(), tabPath)
	findLine(t, lines, "(none)")

	_, lines = detailLines(e, e.Current(), tabResponses)
	findLine(t, lines, "200")
	l = findLine(t, lines, "application/json")
	assert.Contains(t, stripANSI(l.text), "array of Pet")
	assert.Equal(t, pet, l.link)
}

func TestDetailLines_InheritedPathParam(t *testing.T) {
	e := engine(t)
	e.Open(deletePet)
	_, lines := detailLines(e, e.Current(), tabPath)
	l := findLine(t, lines, "id   ")
	assert.True(t, strings.HasPrefix(stripANSI(l.text), "*"))
}

func TestDetailLines_Body(t *testing.T) {
	e := engine(t)
	e.Open(createPet)
	_, lines := detailLines(e, e.Current(), tabBody)
	findLine(t, lines, "required")
	l := findLine(t, lines, "application/json")
	assert.Equal(t, pet, l.link)

	e.Open(listPets)
	_, lines = detailLines(e, e.Current(), tabBody)
	findLine(t, lines, "(no body)")
}

func TestDetailLines_Schema(t *testing.T) {
	e := engine(t)
	e.Open(pet)

	title, lines := detailLines(e, e.Current(), schemaTabDetail)
	assert.Equal(t, "Pet · Detail", title)
	findLine(t, lines, "part of a reference cycle")

	name := findLine(t, lines, "name")
	assert.True(t, strings.HasPrefix(stripANSI(name.text), "*"))
	assert.Contains(t, stripANSI(name.text), "minLen 1")

	o := findLine(t, lines, "owner")
	assert.Equal(t, owner, o.link)

	v := findLine(t, lines, "vet")
	assert.Contains(t, stripANSI(v.text), "Vet ("+danglingText+")")
	assert.True(t, v.link.IsZero())

	findLine(t, lines, `"name": "Rex"`)
}

func TestDetailLines_SchemaTree(t *testing.T) {
	e := engine(t)
	e.Open(pet)

	title, lines := detailLines(e, e.Current(), schemaTabTree)
	assert.Equal(t, "Pet · Tree", title)
	assert.Contains(t, stripANSI(lines[0].text), "Pet")

	o := findLine(t, lines, "owner")
	assert.Equal(t, owner, o.link)
	findLine(t, lines, "pets")
	c := findLine(t, lines, "(cycle)")
	assert.Contains(t, stripANSI(c.text), "[]")

	// tabs past the last schema tab wrap around
	title, _ = detailLines(e, e.Current(), schemaTabTree+schemaTabCount)
	assert.Equal(t, "Pet · Tree", title)
}

func TestDetailLines_EnumSchema(t *testing.T) {
	e := engine(t)
	e.Open(model.SchemaComponentLocator("Color"))
	_, lines := detailLines(e, e.Current(), tabInfo)
	findLine(t, lines, "enum(red, green)")
	findLine(t, lines, "Enum")
}

func TestDetailLines_MissingLocator(t *testing.T) {
	e := engine(t)
	e.Open(model.SchemaComponentLocator("Nope"))
	title, lines := detailLines(e, e.Current(), tabInfo)
	assert.Equal(t, "Nope", title)
	assert.Equal(t, []string{danglingText}, plain(lines))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "GET    /pets/{id}", stripANSI(colorizeMethod("get")+highlightPathParams("/pets/{id}")))
}
