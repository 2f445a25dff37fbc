package codegen

import "strings"

// Escape makes sql safe to embed between double quotes in the emitted source.
// Line endings are normalized first so that the backslash pass never sees a
// carriage return; backslashes must be doubled before quotes are escaped.
func Escape(sql string) string {
	s := strings.ReplaceAll(sql, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Unescape reverses Escape, except for the line ending normalization.
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// normalizeNewlines applies the line ending rewrite of Escape alone.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}
