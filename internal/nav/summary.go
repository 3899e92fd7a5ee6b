package nav

import (
	"strconv"
	"strings"

	"github.com/frankie567/openapi-tools/internal/model"
)

const (
	maxEnumShown   = 6
	maxSummaryNest = 8
)

// Summary is a one-line description of a schema with the locators it
// links to.
type Summary struct {
	Text  string
	Links []model.Locator
	// Dangling is set when a $ref in the summary has no target. Ref then
	// holds the raw reference.
	Dangling bool
	Ref      string
	// Cyclic is set when a linked schema lies on a reference cycle.
	Cyclic bool
}

// Summarize describes the schema at l. References are not followed; they
// are summarized by the name of their target.
func Summarize(g *model.Graph, l model.Locator) Summary {
	var sum Summary
	sum.Text = summarize(g, l, &sum, 0)
	return sum
}

func summarize(g *model.Graph, l model.Locator, sum *Summary, depth int) string {
	if l.IsZero() {
		return "any"
	}
	s, ok := g.Schema(l)
	if !ok {
		return "unknown"
	}
	if depth > maxSummaryNest {
		return "…"
	}
	text := kindText(g, s, sum, depth)
	if s.Nullable {
		text += " | null"
	}
	return text
}

func kindText(g *model.Graph, s *model.Schema, sum *Summary, depth int) string {
	switch s.Kind {
	case model.KindRef:
		target, ok := g.Schema(s.RefTarget)
		if !ok {
			sum.Dangling = true
			sum.Ref = s.Ref
			return refName(s.Ref)
		}
		sum.Links = append(sum.Links, s.RefTarget)
		sum.Cyclic = sum.Cyclic || target.Cyclic
		return g.Label(s.RefTarget)
	case model.KindArray:
		return "array of " + summarize(g, s.Items, sum, depth+1)
	case model.KindComposition:
		var parts []string
		for _, c := range s.Compositions {
			members := make([]string, 0, len(c.Members))
			for _, m := range c.Members {
				members = append(members, summarize(g, m, sum, depth+1))
			}
			parts = append(parts, string(c.Kind)+"("+strings.Join(members, ", ")+")")
		}
		return strings.Join(parts, " & ")
	case model.KindObject:
		if len(s.Properties) == 0 && !s.AdditionalProperties.IsZero() {
			return "map of " + summarize(g, s.AdditionalProperties, sum, depth+1)
		}
		return "object"
	}
	if enum := s.Constraints.Enum; len(enum) > 0 {
		shown := enum
		if len(shown) > maxEnumShown {
			shown = append(append([]string(nil), shown[:maxEnumShown]...), "…")
		}
		return "enum(" + strings.Join(shown, ", ") + ")"
	}
	if s.Kind == model.KindPrimitive && len(s.Types) > 0 {
		text := strings.Join(s.Types, " | ")
		if s.Format != "" {
			text += " (" + s.Format + ")"
		}
		return text
	}
	return "any"
}

// refName shortens a raw $ref to its last path segment.
func refName(ref string) string {
	if i := strings.LastIndexAny(ref, "/#"); i >= 0 && i < len(ref)-1 {
		return ref[i+1:]
	}
	return ref
}

// ConstraintsText renders validation keywords as a compact list.
func ConstraintsText(c model.Constraints) string {
	var parts []string
	add := func(label, v string) { parts = append(parts, label+" "+v) }
	num := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

	if c.Minimum != nil {
		add("min", num(*c.Minimum))
	}
	if c.Maximum != nil {
		add("max", num(*c.Maximum))
	}
	if c.ExclusiveMinimum != "" {
		add("excl. min", c.ExclusiveMinimum)
	}
	if c.ExclusiveMaximum != "" {
		add("excl. max", c.ExclusiveMaximum)
	}
	if c.MultipleOf != nil {
		add("multiple of", num(*c.MultipleOf))
	}
	if c.MinLength != nil {
		add("minLen", strconv.Itoa(*c.MinLength))
	}
	if c.MaxLength != nil {
		add("maxLen", strconv.Itoa(*c.MaxLength))
	}
	if c.Pattern != "" {
		add("pattern", c.Pattern)
	}
	if c.MinItems != nil {
		add("minItems", strconv.Itoa(*c.MinItems))
	}
	if c.MaxItems != nil {
		add("maxItems", strconv.Itoa(*c.MaxItems))
	}
	if c.UniqueItems {
		parts = append(parts, "unique")
	}
	if c.Default != "" {
		add("default", c.Default)
	}
	return strings.Join(parts, ", ")
}
