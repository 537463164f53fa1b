package adapter

import (
	"strings"
	"unicode/utf8"
)

// stringVal reads a string field from a raw item, tolerating absence.
func stringVal(item RawItem, key string) string {
	if v, ok := item[key].(string); ok {
		return v
	}
	return ""
}

// floatVal reads a numeric field from a raw item. JSON numbers decode as
// float64.
func floatVal(item RawItem, key string) (float64, bool) {
	v, ok := item[key].(float64)
	return v, ok
}

// stringSliceVal reads a list-of-strings field from a raw item.
func stringSliceVal(item RawItem, key string) []string {
	raw, ok := item[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// mapVal reads a nested object field from a raw item.
func mapVal(item RawItem, key string) RawItem {
	if v, ok := item[key].(map[string]any); ok {
		return v
	}
	return nil
}

// truncate bounds free text so one verbose provider cannot dominate the
// synthesis prompt budget.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	} else {
		// No space to cut at: the byte slice may have split a multibyte
		// rune, so drop the partial rune at the end.
		for len(cut) > 0 {
			r, size := utf8.DecodeLastRuneInString(cut)
			if r != utf8.RuneError || size > 1 {
				break
			}
			cut = cut[:len(cut)-1]
		}
	}
	return cut + "…"
}
