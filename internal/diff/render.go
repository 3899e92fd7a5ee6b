package diff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

var icons = map[ChangeType]string{
	ChangeTypeAdded:    "🔼",
	ChangeTypeRemoved:  "🔽",
	ChangeTypeModified: "🔀",
}

// JSON renders r as indented JSON.
func JSON(r Result) (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode diff: %w", err)
	}
	return string(b), nil
}

// Markdown renders r as a nested Markdown list.
func Markdown(r Result) string {
	lines := []string{"# API Diff", ""}

	if len(r.OperationChanges) > 0 {
		lines = append(lines, "## Operations", "")
		for _, c := range r.OperationChanges {
			lines = append(lines, fmt.Sprintf("- %s `%s %s` (%s)", icons[c.ChangeType], strings.ToUpper(c.Method), c.Path, c.ChangeType))
			for _, pc := range c.ParameterChanges {
				lines = append(lines, fmt.Sprintf("  - %s Parameter `%s` (in %s) %s", icons[pc.ChangeType], pc.Name, pc.Location, pc.ChangeType))
				lines = appendFields(lines, pc.FieldChanges)
			}
			if rb := c.RequestBodyChange; rb != nil {
				lines = append(lines, fmt.Sprintf("  - %s Request body %s", icons[rb.ChangeType], rb.ChangeType))
				lines = appendFields(lines, rb.FieldChanges)
			}
			responses := append([]ResponseChange(nil), c.ResponseChanges...)
			sort.Slice(responses, func(i, j int) bool { return responses[i].StatusCode < responses[j].StatusCode })
			for _, rc := range responses {
				lines = append(lines, fmt.Sprintf("  - %s Response `%s` %s", icons[rc.ChangeType], rc.StatusCode, rc.ChangeType))
				lines = appendFields(lines, rc.FieldChanges)
			}
		}
		lines = append(lines, "")
	}

	if len(r.SchemaChanges) > 0 {
		lines = append(lines, "## Schemas", "")
		for _, c := range r.SchemaChanges {
			lines = append(lines, fmt.Sprintf("- %s `%s` (%s)", icons[c.ChangeType], c.Name, c.ChangeType))
			for _, pc := range c.PropertyChanges {
				lines = append(lines, fmt.Sprintf("  - %s Property `%s` %s", icons[pc.ChangeType], pc.Name, pc.ChangeType))
				lines = appendFields(lines, pc.FieldChanges)
			}
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func appendFields(lines []string, fields []FieldChange) []string {
	for _, fc := range fields {
		lines = append(lines, fmt.Sprintf("    - `%s`: `%s` → `%s`", fc.Field, valueText(fc.OldValue), valueText(fc.NewValue)))
	}
	return lines
}

func valueText(v any) string {
	switch t := v.(type) {
	case nil:
		return "none"
	case []string:
		return "[" + strings.Join(t, ", ") + "]"
	}
	return fmt.Sprint(v)
}
