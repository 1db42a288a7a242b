// Package htmlutil holds the small amount of markup handling shared by the
// search index, OPML writer, and iCalendar exporter: none of them render
// HTML, they just need a plain-text projection of node content.
package htmlutil

import "strings"

// StripHTML removes tags and decodes the handful of entities the upstream
// rich-text editor is known to emit. It is not a general HTML parser.
func StripHTML(html string) string {
	var b strings.Builder
	b.Grow(len(html))
	inTag := false
	for _, c := range html {
		switch {
		case c == '<':
			inTag = true
		case c == '>':
			inTag = false
		case !inTag:
			b.WriteRune(c)
		}
	}
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	)
	return strings.TrimSpace(replacer.Replace(b.String()))
}
