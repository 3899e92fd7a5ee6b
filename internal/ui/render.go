package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frankie567/openapi-tools/internal/model"
	"github.com/frankie567/openapi-tools/internal/nav"
)

const danglingText = "reference target not found"

// item is one row of the left-hand list.
type item struct {
	text   string
	key    string
	loc    model.Locator
	header bool
}

// line is one row of the detail pane; rows with a link open it on enter.
type line struct {
	text string
	link model.Locator
}

type tab int

const (
	tabInfo tab = iota
	tabPath
	tabQuery
	tabHeaders
	tabBody
	tabResponses
	tabCount
)

var tabNames = [tabCount]string{"Info", "Path", "Query", "Headers", "Body", "Responses"}

// Schemas have their own, shorter tab cycle.
const (
	schemaTabDetail tab = iota
	schemaTabTree
	schemaTabCount
)

var schemaTabNames = [schemaTabCount]string{"Detail", "Tree"}

// treeDepth bounds the property tree of the schema Tree tab.
const treeDepth = 4

func listItems(e *nav.Engine) []item {
	var items []item
	if e.Mode() == nav.ModeSchemas {
		for _, s := range e.SchemasByName() {
			text := s.Name
			if s.Cyclic {
				text += colorDim + " ↻" + colorReset
			}
			if s.Deprecated {
				text += colorDim + " (deprecated)" + colorReset
			}
			items = append(items, item{text: text, key: s.Name, loc: s.Locator})
		}
		return items
	}
	for _, grp := range e.EndpointsByTag() {
		items = append(items, item{text: colorBold + grp.Name + colorReset, header: true})
		for _, ep := range grp.Endpoints {
			label := firstNonEmpty(ep.Summary, ep.OperationID)
			text := "  " + colorizeMethod(ep.Method) + highlightPathParams(ep.Path)
			if ep.Deprecated {
				text += colorDim + " (deprecated)" + colorReset
			}
			items = append(items, item{
				text: text,
				key:  strings.ToUpper(ep.Method) + " " + ep.Path + " " + label,
				loc:  ep.Locator,
			})
		}
	}
	return items
}

// filterItems keeps the rows matching needle, best match first. Group
// headers are dropped and an endpoint listed under several tags is kept
// once.
func filterItems(items []item, needle string) []item {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return items
	}
	var scored []scoredIdx
	seen := map[model.Locator]bool{}
	for i, it := range items {
		if it.header || seen[it.loc] {
			continue
		}
		if s, ok := fuzzyMatchScore(needle, it.key); ok {
			seen[it.loc] = true
			scored = append(scored, scoredIdx{idx: i, score: s})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score == scored[j].score {
			return scored[i].idx < scored[j].idx
		}
		return scored[i].score < scored[j].score
	})
	out := make([]item, 0, len(scored))
	for _, s := range scored {
		out = append(out, items[s.idx])
	}
	return out
}

func headerText(g *model.Graph, label string) string {
	title := strings.TrimSpace(g.Info.Title + " " + g.Info.Version)
	if title == "" {
		title = "untitled"
	}
	return colorGreen + "openapi-tools" + colorReset + "  " + title + colorDim + " · " + label + colorReset
}

// breadcrumbText renders the trail from the mode root to the current frame.
func breadcrumbText(s nav.Snapshot) string {
	parts := make([]string, 0, len(s.Breadcrumbs)+1)
	if !s.Current.IsRoot() {
		parts = append(parts, s.Mode.Title())
	}
	for i, c := range s.Breadcrumbs {
		if i == len(s.Breadcrumbs)-1 {
			parts = append(parts, colorBold+c.Label+colorReset)
			continue
		}
		parts = append(parts, c.Label)
	}
	return strings.Join(parts, colorDim+" › "+colorReset)
}

// detailLines renders the current frame. Endpoints are shown one tab at a
// time.
func detailLines(e *nav.Engine, f nav.Frame, t tab) (string, []line) {
	if f.IsRoot() {
		return f.Mode.Title(), overviewLines(e)
	}
	d := e.Detail(f.Locator)
	switch {
	case d.Endpoint != nil:
		return d.Label + " · " + tabNames[t], endpointLines(e.Graph(), d.Endpoint, t)
	case d.Schema != nil:
		t %= schemaTabCount
		if t == schemaTabTree {
			return d.Label + " · " + schemaTabNames[t], treeLines(e.Graph(), e.Expand(f.Locator, treeDepth))
		}
		return d.Label + " · " + schemaTabNames[t], schemaLines(e.Graph(), d.Schema)
	}
	return f.Locator.Last(), []line{{text: colorRed + danglingText + colorReset}}
}

func overviewLines(e *nav.Engine) []line {
	g := e.Graph()
	var out []line
	add := func(format string, args ...any) { out = append(out, line{text: fmt.Sprintf(format, args...)}) }

	add("%s%s%s %s", colorBold, firstNonEmpty(g.Info.Title, "untitled"), colorReset, g.Info.Version)
	if g.SpecVersion != "" {
		add("%sspec version %s%s", colorDim, g.SpecVersion, colorReset)
	}
	if g.Info.Description != "" {
		add("")
		for _, l := range strings.Split(strings.TrimSpace(g.Info.Description), "\n") {
			add("%s", l)
		}
	}
	if len(g.Servers) > 0 {
		add("")
		add("%sServers%s", colorBold, colorReset)
		for _, s := range g.Servers {
			add("  %s", s)
		}
	}
	add("")
	add("%d endpoints, %d schemas", len(g.Endpoints), len(g.Components))
	if n := len(g.DanglingEdges()); n > 0 {
		add("%s%d unresolved references%s", colorRed, n, colorReset)
	}
	add("")
	add("%senter open · e endpoints · s schemas · / filter · b back · ctrl+r reload · q quit%s", colorDim, colorReset)
	return out
}

// summaryText renders a type summary with its markers.
func summaryText(s nav.Summary) string {
	switch {
	case s.Dangling:
		return colorRed + s.Text + " (" + danglingText + ")" + colorReset
	case s.Cyclic:
		return colorCyan + s.Text + colorReset + colorDim + " ↻" + colorReset
	case len(s.Links) > 0:
		return colorCyan + s.Text + colorReset
	}
	return s.Text
}

// linkFor picks what enter opens on a row describing the schema at l: the
// referenced schema, or the inline schema itself when it has structure.
func linkFor(g *model.Graph, l model.Locator, s nav.Summary) model.Locator {
	if len(s.Links) > 0 {
		return s.Links[0]
	}
	if s.Dangling {
		return ""
	}
	if sc, ok := g.Schema(l); ok && len(sc.Children()) > 0 {
		return l
	}
	return ""
}

func required(r bool) string {
	if r {
		return colorRed + "*" + colorReset
	}
	return " "
}

func tabBar(t tab) string {
	parts := make([]string, 0, tabCount)
	for i, name := range tabNames {
		if tab(i) == t {
			parts = append(parts, colorBold+"["+name+"]"+colorReset)
			continue
		}
		parts = append(parts, colorDim+name+colorReset)
	}
	return strings.Join(parts, " ")
}

func endpointLines(g *model.Graph, d *nav.EndpointDetail, t tab) []line {
	out := []line{
		{text: colorizeMethod(d.Method) + highlightPathParams(d.Path)},
		{text: tabBar(t)},
		{},
	}
	add := func(text string, link model.Locator) { out = append(out, line{text: text, link: link}) }
	params := func(rows []nav.ParamRow) {
		if len(rows) == 0 {
			add(colorDim+"(none)"+colorReset, "")
			return
		}
		for _, p := range rows {
			text := required(p.Required) + padRight(p.Name, 16) + " " + summaryText(p.Type)
			if p.In == model.ParamInCookie || p.In == model.ParamInFormData {
				text += colorDim + " (" + string(p.In) + ")" + colorReset
			}
			if p.Deprecated {
				text += colorDim + " deprecated" + colorReset
			}
			add(text, linkFor(g, p.Schema, p.Type))
			if p.Description != "" {
				add("   "+colorDim+p.Description+colorReset, "")
			}
		}
	}
	content := func(rows []nav.MediaRow, indent string) {
		for _, m := range rows {
			text := indent + m.ContentType
			if m.Type.Text != "" {
				text += ": " + summaryText(m.Type)
			}
			var link model.Locator
			if len(m.Type.Links) > 0 {
				link = m.Type.Links[0]
			}
			add(text, link)
		}
	}

	switch t {
	case tabInfo:
		if d.Summary != "" {
			add(colorBold+d.Summary+colorReset, "")
		}
		if d.Description != "" {
			for _, l := range strings.Split(d.Description, "\n") {
				add(l, "")
			}
		}
		if d.OperationID != "" {
			add("operationId: "+d.OperationID, "")
		}
		if len(d.Tags) > 0 {
			add("tags: "+strings.Join(d.Tags, ", "), "")
		}
		if d.Deprecated {
			add(colorYellow+"deprecated"+colorReset, "")
		}
		for _, ref := range d.UnresolvedParams {
			add(colorRed+"parameter "+ref+" ("+danglingText+")"+colorReset, "")
		}
	case tabPath:
		params(d.PathRows)
	case tabQuery:
		params(d.QueryRows)
	case tabHeaders:
		params(append(append([]nav.ParamRow(nil), d.HeaderRows...), d.CookieRows...))
	case tabBody:
		if len(d.FormRows) > 0 {
			add(colorBold+"Form data"+colorReset, "")
			params(d.FormRows)
		}
		b := d.Body
		switch {
		case b == nil && len(d.FormRows) == 0:
			add(colorDim+"(no body)"+colorReset, "")
		case b == nil:
		case b.Ref != "":
			add(colorRed+b.Ref+" ("+danglingText+")"+colorReset, "")
		default:
			if b.Required {
				add("required", "")
			} else {
				add(colorDim+"optional"+colorReset, "")
			}
			if b.Description != "" {
				add(b.Description, "")
			}
			content(b.Content, "  ")
		}
	case tabResponses:
		if len(d.Responses) == 0 {
			add(colorDim+"(none)"+colorReset, "")
		}
		for _, r := range d.Responses {
			if r.Ref != "" {
				add(colorizeStatus(padRight(r.Code, 8))+colorRed+r.Ref+" ("+danglingText+")"+colorReset, "")
				continue
			}
			add(colorizeStatus(padRight(r.Code, 8))+r.Description, "")
			content(r.Content, "          ")
		}
	}
	return out
}

func schemaLines(g *model.Graph, d *nav.SchemaDetail) []line {
	var out []line
	add := func(text string, link model.Locator) { out = append(out, line{text: text, link: link}) }
	section := func(name string) {
		add("", "")
		add(colorBold+name+colorReset, "")
	}

	typeLink := model.Locator("")
	if d.Kind == model.KindRef && len(d.Type.Links) > 0 {
		typeLink = d.Type.Links[0]
	}
	add("type: "+summaryText(d.Type), typeLink)
	if d.Title != "" {
		add("title: "+d.Title, "")
	}
	var flags []string
	for _, f := range []struct {
		on   bool
		name string
	}{{d.Nullable, "nullable"}, {d.Deprecated, "deprecated"}, {d.ReadOnly, "read-only"}, {d.WriteOnly, "write-only"}} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	if len(flags) > 0 {
		add(colorYellow+strings.Join(flags, ", ")+colorReset, "")
	}
	if d.Cyclic {
		add(colorDim+"↻ part of a reference cycle"+colorReset, "")
	}
	if d.Constraints != "" {
		add(colorDim+d.Constraints+colorReset, "")
	}
	if d.Description != "" {
		add("", "")
		for _, l := range strings.Split(d.Description, "\n") {
			add(l, "")
		}
	}

	if len(d.Properties) > 0 {
		section("Properties")
		for _, p := range d.Properties {
			text := required(p.Required) + padRight(p.Name, 20) + " " + summaryText(p.Type)
			if p.Constraints != "" {
				text += colorDim + "  " + p.Constraints + colorReset
			}
			add(text, linkFor(g, p.Schema, p.Type))
			if p.Description != "" {
				add("   "+colorDim+firstLine(p.Description)+colorReset, "")
			}
		}
	}
	if d.Items != nil {
		section("Items")
		add("  "+summaryText(*d.Items), linkFor(g, d.Schema.Items, *d.Items))
	}
	if d.Additional != nil {
		section("Additional properties")
		add("  "+summaryText(*d.Additional), linkFor(g, d.AdditionalProperties, *d.Additional))
	}
	for i, c := range d.Compositions {
		section(string(c.Kind))
		for j, m := range c.Members {
			add("  "+summaryText(m), linkFor(g, d.Schema.Compositions[i].Members[j], m))
		}
	}
	if d.Not != nil {
		section("Not")
		add("  "+summaryText(*d.Not), linkFor(g, d.Schema.Not, *d.Not))
	}
	if len(d.Schema.Constraints.Enum) > 0 {
		section("Enum")
		for _, v := range d.Schema.Constraints.Enum {
			add("  "+v, "")
		}
	}
	if d.Example != "" {
		section("Example")
		for _, l := range strings.Split(colorizeExample(d.Example), "\n") {
			add(l, "")
		}
	}
	return out
}

// treeLines draws the expanded property tree below root.
func treeLines(g *model.Graph, root *nav.Node) []line {
	out := []line{{text: colorBold + root.Name + colorReset + "  " + summaryText(root.Type)}}
	var walk func(n *nav.Node, prefix string)
	walk = func(n *nav.Node, prefix string) {
		for i, c := range n.Children {
			branch, next := "├─ ", "│  "
			if i == len(n.Children)-1 {
				branch, next = "└─ ", "   "
			}
			text := prefix + branch + required(c.Required) + c.Name + "  " + summaryText(c.Type)
			switch {
			case c.Cyclic:
				text += colorDim + " (cycle)" + colorReset
			case c.Truncated:
				text += colorDim + " …" + colorReset
			}
			out = append(out, line{text: text, link: linkFor(g, c.Locator, c.Type)})
			walk(c, prefix+next)
		}
	}
	walk(root, "")
	if len(root.Children) == 0 {
		out = append(out, line{text: colorDim + "(no nested properties)" + colorReset})
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
