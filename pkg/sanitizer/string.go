package sanitizer

import (
	"html"
	"strings"
)

// quoteEntities swaps the numeric quote entities html.EscapeString emits for
// the named forms already stored in the sheet.
var quoteEntities = strings.NewReplacer("&#34;", "&quot;", "&#39;", "&#x27;")

// Sanitize trims s and HTML-escapes it. Entities already present are decoded
// first so that an escaped value passes through unchanged.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return quoteEntities.Replace(html.EscapeString(strings.TrimSpace(html.UnescapeString(s))))
}
