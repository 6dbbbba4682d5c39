package validation

import "strings"

// SanitizeString strips null bytes and control characters (other than
// newline, tab, and carriage return) and trims surrounding whitespace.
// Sanitization runs before validation so field validators never see raw
// control characters.
func SanitizeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == 0 {
			continue
		}
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' {
			continue
		}
		if r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// SanitizePayload walks a raw payload and sanitizes every string value in
// place, recursing through nested maps and lists.
func SanitizePayload(v any) any {
	switch t := v.(type) {
	case string:
		return SanitizeString(t)
	case map[string]any:
		for k, val := range t {
			t[k] = SanitizePayload(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = SanitizePayload(val)
		}
		return t
	default:
		return v
	}
}
