package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// colorizeExample pretty-prints a JSON example with colors. Text that is
// not JSON is returned as is.
func colorizeExample(raw string) string {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return colorizeJSON(v, 0)
}

func colorizeJSON(v any, indent int) string {
	prefix := strings.Repeat("  ", indent)

	switch val := v.(type) {
	case nil:
		return colorNull + "null" + colorReset
	case bool:
		return colorBool + strconv.FormatBool(val) + colorReset
	case float64:
		return colorNumber + strconv.FormatFloat(val, 'f', -1, 64) + colorReset
	case string:
		b, _ := json.Marshal(val)
		return colorString + string(b) + colorReset
	case []any:
		if len(val) == 0 {
			return colorBracket + "[]" + colorReset
		}
		var sb strings.Builder
		sb.WriteString(colorBracket + "[" + colorReset + "\n")
		for i, item := range val {
			sb.WriteString(prefix + "  " + colorizeJSON(item, indent+1))
			if i < len(val)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(prefix + colorBracket + "]" + colorReset)
		return sb.String()
	case map[string]any:
		if len(val) == 0 {
			return colorBracket + "{}" + colorReset
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		sb.WriteString(colorBracket + "{" + colorReset + "\n")
		for i, k := range keys {
			kb, _ := json.Marshal(k)
			sb.WriteString(prefix + "  " + colorKey + string(kb) + colorReset + ": ")
			sb.WriteString(colorizeJSON(val[k], indent+1))
			if i < len(keys)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(prefix + colorBracket + "}" + colorReset)
		return sb.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
