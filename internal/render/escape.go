package render

import (
	"html"
	"strings"
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"`", "&#96;",
)

// Escape makes s safe to embed as HTML text
func Escape(s string) string {
	return html.EscapeString(s)
}

// EscapeAttr makes s safe to embed inside a quoted HTML attribute value
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// Unescape reverses Escape and EscapeAttr
func Unescape(s string) string {
	return html.UnescapeString(s)
}
