package nav

import (
	"github.com/frankie567/openapi-tools/internal/model"
)

type ParamRow struct {
	model.Param
	Type Summary
}

type MediaRow struct {
	ContentType string
	Type        Summary
}

type BodyDetail struct {
	Description string
	Required    bool
	Content     []MediaRow
	// Ref is set when the body is a reference that could not be followed.
	Ref string
}

type ResponseDetail struct {
	Code        string
	Description string
	Content     []MediaRow
	Ref         string
}

type EndpointDetail struct {
	*model.Endpoint
	PathRows   []ParamRow
	QueryRows  []ParamRow
	HeaderRows []ParamRow
	CookieRows []ParamRow
	FormRows   []ParamRow

	Body      *BodyDetail
	Responses []ResponseDetail
}

type PropertyRow struct {
	Name        string
	Schema      model.Locator
	Required    bool
	Type        Summary
	Constraints string
	Description string
}

type CompositionRow struct {
	Kind    model.CompositionKind
	Members []Summary
}

type SchemaDetail struct {
	*model.Schema
	Type         Summary
	Properties   []PropertyRow
	Items        *Summary
	Additional   *Summary
	Compositions []CompositionRow
	Not          *Summary
	Constraints  string
}

// Detail describes one entity. Exactly one of Endpoint and Schema is set
// when Found.
type Detail struct {
	Locator  model.Locator
	Label    string
	Found    bool
	Endpoint *EndpointDetail
	Schema   *SchemaDetail
}

// Detail resolves l and the references one level below it.
func (e *Engine) Detail(l model.Locator) Detail {
	d := Detail{Locator: l, Label: e.g.Label(l)}
	if ep, ok := e.g.Endpoint(l); ok {
		d.Found = true
		d.Endpoint = e.endpointDetail(ep)
		return d
	}
	if s, ok := e.g.Schema(l); ok {
		d.Found = true
		d.Schema = e.schemaDetail(s)
	}
	return d
}

func (e *Engine) endpointDetail(ep *model.Endpoint) *EndpointDetail {
	rows := func(params []model.Param) []ParamRow {
		out := make([]ParamRow, 0, len(params))
		for _, p := range params {
			out = append(out, ParamRow{Param: p, Type: Summarize(e.g, p.Schema)})
		}
		return out
	}
	d := &EndpointDetail{
		Endpoint:   ep,
		PathRows:   rows(ep.PathParams),
		QueryRows:  rows(ep.QueryParams),
		HeaderRows: rows(ep.HeaderParams),
		CookieRows: rows(ep.CookieParams),
		FormRows:   rows(ep.FormParams),
	}
	if ep.Body != nil {
		d.Body = &BodyDetail{
			Description: ep.Body.Description,
			Required:    ep.Body.Required,
			Content:     e.mediaRows(ep.Body.Content),
			Ref:         ep.Body.Ref,
		}
	}
	for _, r := range ep.Responses {
		d.Responses = append(d.Responses, ResponseDetail{
			Code:        r.Code,
			Description: r.Description,
			Content:     e.mediaRows(r.Content),
			Ref:         r.Ref,
		})
	}
	return d
}

func (e *Engine) mediaRows(content []model.MediaType) []MediaRow {
	out := make([]MediaRow, 0, len(content))
	for _, mt := range content {
		row := MediaRow{ContentType: mt.ContentType}
		if !mt.Schema.IsZero() {
			row.Type = Summarize(e.g, mt.Schema)
		}
		out = append(out, row)
	}
	return out
}

func (e *Engine) schemaDetail(s *model.Schema) *SchemaDetail {
	d := &SchemaDetail{
		Schema:      s,
		Type:        Summarize(e.g, s.Locator),
		Constraints: ConstraintsText(s.Constraints),
	}
	for _, p := range s.Properties {
		row := PropertyRow{Name: p.Name, Schema: p.Schema, Required: p.Required, Type: Summarize(e.g, p.Schema)}
		if ps, ok := e.g.Schema(p.Schema); ok {
			row.Constraints = ConstraintsText(ps.Constraints)
			row.Description = ps.Description
		}
		d.Properties = append(d.Properties, row)
	}
	optional := func(l model.Locator) *Summary {
		if l.IsZero() {
			return nil
		}
		sum := Summarize(e.g, l)
		return &sum
	}
	d.Items = optional(s.Items)
	d.Additional = optional(s.AdditionalProperties)
	d.Not = optional(s.Not)
	for _, c := range s.Compositions {
		row := CompositionRow{Kind: c.Kind}
		for _, m := range c.Members {
			row.Members = append(row.Members, Summarize(e.g, m))
		}
		d.Compositions = append(d.Compositions, row)
	}
	return d
}
