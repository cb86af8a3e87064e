package util

import "strings"

// SanitizeText strips control characters that document extractors leak into
// text output. NUL in particular breaks Postgres text columns and confuses
// provider prompts.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch == '\n' || ch == '\r' || ch == '\t':
			b.WriteRune(ch)
		case ch < 0x20:
			// NUL and other non-printing controls, dropped.
		default:
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}
