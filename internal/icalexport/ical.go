// Package icalexport renders nodes carrying a Date as an iCalendar feed
// (RFC 5545), one VEVENT per node, per spec §4.6 and §6's output contract:
// CRLF line endings, X-WR-CALNAME: Outline Tasks.
package icalexport

import (
	"fmt"
	"strings"

	"github.com/andynu/outline/internal/htmlutil"
	"github.com/andynu/outline/internal/outline"
)

const crlf = "\r\n"

// Generate renders every node in nodes that carries a non-empty Date as one
// VEVENT. All-day events use VALUE=DATE; UID is "<node-id>@outline.local".
func Generate(nodes []outline.Node) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR" + crlf)
	b.WriteString("VERSION:2.0" + crlf)
	b.WriteString("PRODID:-//outline//outline//EN" + crlf)
	b.WriteString("X-WR-CALNAME:Outline Tasks" + crlf)

	for _, n := range nodes {
		if n.Date == nil || *n.Date == "" {
			continue
		}
		writeEvent(&b, n)
	}

	b.WriteString("END:VCALENDAR" + crlf)
	return b.String()
}

func writeEvent(b *strings.Builder, n outline.Node) {
	date := strings.ReplaceAll(*n.Date, "-", "")

	b.WriteString("BEGIN:VEVENT" + crlf)
	fmt.Fprintf(b, "UID:%s@outline.local%s", n.ID.String(), crlf)
	fmt.Fprintf(b, "DTSTART;VALUE=DATE:%s%s", date, crlf)

	summary := escapeText(htmlutil.StripHTML(n.Content))
	fmt.Fprintf(b, "SUMMARY:%s%s", summary, crlf)

	status := "CONFIRMED"
	if n.IsChecked {
		status = "COMPLETED"
	}
	fmt.Fprintf(b, "STATUS:%s%s", status, crlf)

	if n.DateRecurrence != nil && *n.DateRecurrence != "" {
		fmt.Fprintf(b, "RRULE:%s%s", *n.DateRecurrence, crlf)
	}
	if n.Note != nil && *n.Note != "" {
		fmt.Fprintf(b, "DESCRIPTION:%s%s", escapeText(*n.Note), crlf)
	}

	b.WriteString("END:VEVENT" + crlf)
}

// escapeText applies RFC 5545 TEXT escaping: backslash, newline, comma,
// semicolon.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"\n", `\n`,
		",", `\,`,
		";", `\;`,
	)
	return r.Replace(s)
}
