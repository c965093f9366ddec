package evaluation

import (
	"math"
	"strings"
)

// Criteria documents and grading output were authored under several field
// naming conventions over the years (including French-localized keys). All
// alias resolution lives here: first present value among known aliases wins,
// otherwise the caller's default applies.

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// firstString returns the first non-empty string among the given keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if t := strings.TrimSpace(s); t != "" {
				return t
			}
		}
	}
	return ""
}

// firstNumber returns the first numeric value among the given keys.
func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			if !math.IsNaN(n) && !math.IsInf(n, 0) {
				return n, true
			}
		case int:
			return float64(n), true
		}
	}
	return 0, false
}

// firstValue returns the first present value among the given keys.
func firstValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// stringList flattens a value into a list of non-empty strings. Elements may
// be plain strings or objects carrying a description or name field; anything
// else is dropped.
func stringList(v any) []string {
	items, ok := asSlice(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch e := item.(type) {
		case string:
			if t := strings.TrimSpace(e); t != "" {
				out = append(out, t)
			}
		case map[string]any:
			if s := firstString(e, "description", "name", "text", "label"); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
