package nav

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/frankie567/openapi-tools/internal/model"
)

// UntaggedGroup names the group of endpoints that declare no tag.
const UntaggedGroup = "untagged"

type TagGroup struct {
	Name        string
	Description string
	Endpoints   []*model.Endpoint
}

// EndpointsByTag groups endpoints by tag. Tags declared at the top level
// come first in declaration order, then undeclared tags in order of first
// use, then the untagged group. An endpoint with several tags appears in
// each of their groups. Empty groups are omitted and group names are
// unique.
func (e *Engine) EndpointsByTag() []TagGroup {
	index := map[string]int{}
	var groups []TagGroup
	group := func(name, desc string) int {
		if i, ok := index[name]; ok {
			return i
		}
		index[name] = len(groups)
		groups = append(groups, TagGroup{Name: name, Description: desc})
		return len(groups) - 1
	}
	for _, t := range e.g.Tags {
		group(t.Name, t.Description)
	}

	var untagged []*model.Endpoint
	for _, ep := range e.g.Endpoints {
		if len(ep.Tags) == 0 {
			untagged = append(untagged, ep)
			continue
		}
		seen := map[string]bool{}
		for _, t := range ep.Tags {
			if seen[t] {
				continue
			}
			seen[t] = true
			i := group(t, "")
			groups[i].Endpoints = append(groups[i].Endpoints, ep)
		}
	}

	// A tag literally named "untagged" absorbs the endpoints without tags.
	if len(untagged) > 0 {
		if i, ok := index[UntaggedGroup]; ok {
			groups[i].Endpoints = append(groups[i].Endpoints, untagged...)
		} else {
			groups = append(groups, TagGroup{Name: UntaggedGroup, Endpoints: untagged})
		}
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Endpoints) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// SchemasByName returns the component schemas ordered by name, ignoring
// case the way a reader would.
func (e *Engine) SchemasByName() []*model.Schema {
	schemas := e.g.ComponentSchemas()
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(schemas, func(i, j int) bool {
		if r := c.CompareString(schemas[i].Name, schemas[j].Name); r != 0 {
			return r < 0
		}
		return schemas[i].Locator < schemas[j].Locator
	})
	return schemas
}
