// Package diff compares two document graphs and reports added, removed
// and modified operations and component schemas.
package diff

import (
	"slices"
	"sort"
	"strings"

	"github.com/frankie567/openapi-tools/internal/model"
)

// ChangeType indicates whether an element was added, removed or modified.
type ChangeType string

const (
	ChangeTypeAdded    ChangeType = "added"
	ChangeTypeRemoved  ChangeType = "removed"
	ChangeTypeModified ChangeType = "modified"
)

// FieldChange is one field whose value differs. A nil value means the
// field is absent on that side.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

type ParameterChange struct {
	Name         string        `json:"name"`
	Location     string        `json:"location"`
	ChangeType   ChangeType    `json:"change_type"`
	FieldChanges []FieldChange `json:"field_changes"`
}

type RequestBodyChange struct {
	ChangeType   ChangeType    `json:"change_type"`
	FieldChanges []FieldChange `json:"field_changes"`
}

type ResponseChange struct {
	StatusCode   string        `json:"status_code"`
	ChangeType   ChangeType    `json:"change_type"`
	FieldChanges []FieldChange `json:"field_changes"`
}

type OperationChange struct {
	Path              string             `json:"path"`
	Method            string             `json:"method"`
	ChangeType        ChangeType         `json:"change_type"`
	ParameterChanges  []ParameterChange  `json:"parameter_changes"`
	RequestBodyChange *RequestBodyChange `json:"request_body_change"`
	ResponseChanges   []ResponseChange   `json:"response_changes"`
}

type PropertyChange struct {
	Name         string        `json:"name"`
	ChangeType   ChangeType    `json:"change_type"`
	FieldChanges []FieldChange `json:"field_changes"`
}

type SchemaChange struct {
	Name            string           `json:"name"`
	ChangeType      ChangeType       `json:"change_type"`
	PropertyChanges []PropertyChange `json:"property_changes"`
}

// Result lists the changes from base to head, sorted by path and method
// for operations and by name for schemas.
type Result struct {
	OperationChanges []OperationChange `json:"operation_changes"`
	SchemaChanges    []SchemaChange    `json:"schema_changes"`
}

func (r Result) Empty() bool {
	return len(r.OperationChanges) == 0 && len(r.SchemaChanges) == 0
}

type side struct {
	g *model.Graph
}

// Compare reports the differences between base and head.
func Compare(base, head *model.Graph) Result {
	b, h := side{base}, side{head}
	var res Result

	headOps := map[model.Locator]*model.Endpoint{}
	for _, ep := range head.Endpoints {
		headOps[ep.Locator] = ep
	}
	for _, ep := range base.Endpoints {
		other, ok := headOps[ep.Locator]
		if !ok {
			res.OperationChanges = append(res.OperationChanges, OperationChange{Path: ep.Path, Method: ep.Method, ChangeType: ChangeTypeRemoved})
			continue
		}
		if c, changed := compareOperation(b, h, ep, other); changed {
			res.OperationChanges = append(res.OperationChanges, c)
		}
	}
	for _, ep := range head.Endpoints {
		if _, ok := base.Endpoint(ep.Locator); !ok {
			res.OperationChanges = append(res.OperationChanges, OperationChange{Path: ep.Path, Method: ep.Method, ChangeType: ChangeTypeAdded})
		}
	}

	baseSchemas := namedSchemas(base)
	headSchemas := namedSchemas(head)
	for name, s := range baseSchemas {
		other, ok := headSchemas[name]
		if !ok {
			res.SchemaChanges = append(res.SchemaChanges, SchemaChange{Name: name, ChangeType: ChangeTypeRemoved})
			continue
		}
		bs, bok := b.deref(s)
		hs, hok := h.deref(other)
		if !bok || !hok {
			continue
		}
		if props := compareProperties(b, h, bs, hs); len(props) > 0 {
			res.SchemaChanges = append(res.SchemaChanges, SchemaChange{Name: name, ChangeType: ChangeTypeModified, PropertyChanges: props})
		}
	}
	for name := range headSchemas {
		if _, ok := baseSchemas[name]; !ok {
			res.SchemaChanges = append(res.SchemaChanges, SchemaChange{Name: name, ChangeType: ChangeTypeAdded})
		}
	}

	sort.Slice(res.OperationChanges, func(i, j int) bool {
		x, y := res.OperationChanges[i], res.OperationChanges[j]
		if x.Path != y.Path {
			return x.Path < y.Path
		}
		return x.Method < y.Method
	})
	sort.Slice(res.SchemaChanges, func(i, j int) bool {
		return res.SchemaChanges[i].Name < res.SchemaChanges[j].Name
	})
	return res
}

func namedSchemas(g *model.Graph) map[string]*model.Schema {
	out := map[string]*model.Schema{}
	for _, s := range g.ComponentSchemas() {
		out[s.Name] = s
	}
	return out
}

func compareOperation(b, h side, base, head *model.Endpoint) (OperationChange, bool) {
	c := OperationChange{Path: base.Path, Method: base.Method, ChangeType: ChangeTypeModified}
	c.ParameterChanges = compareParameters(b, h, base.Params(), head.Params())
	c.RequestBodyChange = compareBody(base.Body, head.Body)
	c.ResponseChanges = compareResponses(b, h, base.Responses, head.Responses)
	changed := len(c.ParameterChanges) > 0 || c.RequestBodyChange != nil || len(c.ResponseChanges) > 0
	return c, changed
}

func compareParameters(b, h side, base, head []model.Param) []ParameterChange {
	key := func(p model.Param) string { return p.Name + "\x00" + string(p.In) }
	headByKey := map[string]model.Param{}
	for _, p := range head {
		headByKey[key(p)] = p
	}
	baseByKey := map[string]model.Param{}
	var out []ParameterChange
	for _, p := range base {
		baseByKey[key(p)] = p
		other, ok := headByKey[key(p)]
		if !ok {
			out = append(out, ParameterChange{Name: p.Name, Location: string(p.In), ChangeType: ChangeTypeRemoved})
			continue
		}
		var fields []FieldChange
		fields = appendIfChanged(fields, "required", p.Required, other.Required)
		fields = appendIfChanged(fields, "description", optional(p.Description), optional(other.Description))
		fields = appendIfChanged(fields, "deprecated", p.Deprecated, other.Deprecated)
		if bt, ht, ok := bothInlineTypes(b, h, p.Schema, other.Schema); ok {
			fields = appendIfChanged(fields, "schema.type", bt, ht)
		}
		if len(fields) > 0 {
			out = append(out, ParameterChange{Name: p.Name, Location: string(p.In), ChangeType: ChangeTypeModified, FieldChanges: fields})
		}
	}
	for _, p := range head {
		if _, ok := baseByKey[key(p)]; !ok {
			out = append(out, ParameterChange{Name: p.Name, Location: string(p.In), ChangeType: ChangeTypeAdded})
		}
	}
	return out
}

func compareBody(base, head *model.RequestBody) *RequestBodyChange {
	if base != nil && base.Ref != "" {
		base = nil
	}
	if head != nil && head.Ref != "" {
		head = nil
	}
	switch {
	case base == nil && head == nil:
		return nil
	case base == nil:
		return &RequestBodyChange{ChangeType: ChangeTypeAdded}
	case head == nil:
		return &RequestBodyChange{ChangeType: ChangeTypeRemoved}
	}
	var fields []FieldChange
	fields = appendIfChanged(fields, "required", base.Required, head.Required)
	fields = appendIfChanged(fields, "description", optional(base.Description), optional(head.Description))
	fields = append(fields, contentTypeChanges(base.Content, head.Content)...)
	if len(fields) == 0 {
		return nil
	}
	return &RequestBodyChange{ChangeType: ChangeTypeModified, FieldChanges: fields}
}

func compareResponses(b, h side, base, head []model.Response) []ResponseChange {
	headByCode := map[string]model.Response{}
	for _, r := range head {
		headByCode[r.Code] = r
	}
	baseByCode := map[string]bool{}
	var out []ResponseChange
	for _, r := range base {
		baseByCode[r.Code] = true
		other, ok := headByCode[r.Code]
		if !ok {
			out = append(out, ResponseChange{StatusCode: r.Code, ChangeType: ChangeTypeRemoved})
			continue
		}
		if r.Ref != "" || other.Ref != "" {
			continue
		}
		var fields []FieldChange
		fields = appendIfChanged(fields, "description", r.Description, other.Description)
		fields = append(fields, contentTypeChanges(r.Content, other.Content)...)
		for _, mt := range r.Content {
			for _, omt := range other.Content {
				if mt.ContentType == omt.ContentType {
					fields = appendIfChanged(fields, "content."+mt.ContentType+".schema", b.refOf(mt.Schema), h.refOf(omt.Schema))
				}
			}
		}
		if len(fields) > 0 {
			out = append(out, ResponseChange{StatusCode: r.Code, ChangeType: ChangeTypeModified, FieldChanges: fields})
		}
	}
	for _, r := range head {
		if !baseByCode[r.Code] {
			out = append(out, ResponseChange{StatusCode: r.Code, ChangeType: ChangeTypeAdded})
		}
	}
	return out
}

func contentTypeChanges(base, head []model.MediaType) []FieldChange {
	has := func(list []model.MediaType, ct string) bool {
		return slices.ContainsFunc(list, func(m model.MediaType) bool { return m.ContentType == ct })
	}
	var out []FieldChange
	for _, m := range base {
		if !has(head, m.ContentType) {
			out = append(out, FieldChange{Field: "content." + m.ContentType, OldValue: m.ContentType})
		}
	}
	for _, m := range head {
		if !has(base, m.ContentType) {
			out = append(out, FieldChange{Field: "content." + m.ContentType, NewValue: m.ContentType})
		}
	}
	return out
}

func compareProperties(b, h side, base, head *model.Schema) []PropertyChange {
	headProps := map[string]model.Property{}
	for _, p := range head.Properties {
		headProps[p.Name] = p
	}
	baseProps := map[string]bool{}
	var out []PropertyChange
	for _, p := range base.Properties {
		baseProps[p.Name] = true
		other, ok := headProps[p.Name]
		if !ok {
			out = append(out, PropertyChange{Name: p.Name, ChangeType: ChangeTypeRemoved})
			continue
		}
		var fields []FieldChange
		fields = appendIfChanged(fields, "required", p.Required, other.Required)
		bs, bok := b.g.Schema(p.Schema)
		hs, hok := h.g.Schema(other.Schema)
		if bok && hok && bs.Kind != model.KindRef && hs.Kind != model.KindRef {
			fields = appendIfChanged(fields, "type", typeText(bs), typeText(hs))
			fields = appendIfChanged(fields, "description", optional(bs.Description), optional(hs.Description))
			fields = appendIfChanged(fields, "enum", enumValue(bs), enumValue(hs))
		}
		if len(fields) > 0 {
			out = append(out, PropertyChange{Name: p.Name, ChangeType: ChangeTypeModified, FieldChanges: fields})
		}
	}
	for _, p := range head.Properties {
		if !baseProps[p.Name] {
			out = append(out, PropertyChange{Name: p.Name, ChangeType: ChangeTypeAdded})
		}
	}
	return out
}

func (s side) deref(sc *model.Schema) (*model.Schema, bool) {
	if sc.Kind != model.KindRef {
		return sc, true
	}
	return s.g.Schema(sc.RefTarget)
}

// refOf returns the raw $ref of the schema at l, or nil for inline schemas.
func (s side) refOf(l model.Locator) any {
	if sc, ok := s.g.Schema(l); ok && sc.Kind == model.KindRef {
		return sc.Ref
	}
	return nil
}

func bothInlineTypes(b, h side, bl, hl model.Locator) (any, any, bool) {
	bs, bok := b.g.Schema(bl)
	hs, hok := h.g.Schema(hl)
	if !bok || !hok || bs.Kind == model.KindRef || hs.Kind == model.KindRef {
		return nil, nil, false
	}
	return typeText(bs), typeText(hs), true
}

func typeText(s *model.Schema) any {
	if len(s.Types) == 0 {
		return nil
	}
	return strings.Join(s.Types, " | ")
}

func enumValue(s *model.Schema) any {
	if len(s.Constraints.Enum) == 0 {
		return nil
	}
	return s.Constraints.Enum
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func appendIfChanged(fields []FieldChange, name string, before, after any) []FieldChange {
	if equal(before, after) {
		return fields
	}
	return append(fields, FieldChange{Field: name, OldValue: before, NewValue: after})
}

func equal(a, b any) bool {
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if aok || bok {
		return aok && bok && slices.Equal(as, bs)
	}
	return a == b
}
