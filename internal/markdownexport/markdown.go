// Package markdownexport renders a document's nodes as depth-indented
// Markdown bullets with calendar-app-compatible emoji metadata (due date,
// recurrence, completion), grounded on original_source/markdown.rs and
// carried into the Go idiom: a pure function over []outline.Node, no writer
// interface needed since the whole output is built in memory in one pass
// (the same shape the OPML writer in internal/opml/writer.go uses).
package markdownexport

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

// Generate renders nodes as Markdown, starting from the roots (ParentID ==
// nil) and recursing depth-first in (position, id) order.
func Generate(nodes []outline.Node) string {
	var b strings.Builder
	writeChildren(&b, groupByParent(nodes), nil, 0)
	return b.String()
}

func groupByParent(nodes []outline.Node) map[uuid.UUID][]outline.Node {
	m := map[uuid.UUID][]outline.Node{}
	var rootKey uuid.UUID
	for _, n := range nodes {
		key := rootKey
		if n.ParentID != nil {
			key = *n.ParentID
		}
		m[key] = append(m[key], n)
	}
	for k, children := range m {
		sort.Slice(children, func(i, j int) bool {
			if children[i].Position != children[j].Position {
				return children[i].Position < children[j].Position
			}
			return children[i].ID.String() < children[j].ID.String()
		})
		m[k] = children
	}
	return m
}

func writeChildren(b *strings.Builder, childrenOf map[uuid.UUID][]outline.Node, parentID *uuid.UUID, depth int) {
	var key uuid.UUID
	if parentID != nil {
		key = *parentID
	}
	indent := strings.Repeat("  ", depth)

	for _, n := range childrenOf[key] {
		b.WriteString(indent)
		b.WriteString(bulletPrefix(n))
		b.WriteByte(' ')
		b.WriteString(htmlToMarkdown(n.Content))

		if n.Date != nil && *n.Date != "" {
			b.WriteString(" \U0001F4C5 ")
			b.WriteString(*n.Date)
		}
		if n.DateRecurrence != nil && *n.DateRecurrence != "" {
			if human, ok := RRuleToHuman(*n.DateRecurrence); ok {
				b.WriteString(" \U0001F501 ")
				b.WriteString(human)
			}
		}
		if n.IsChecked {
			b.WriteString(" ✅ ")
			b.WriteString(n.UpdatedAt.Format("2006-01-02"))
		}
		b.WriteByte('\n')

		if n.Note != nil && *n.Note != "" {
			noteIndent := strings.Repeat("  ", depth+1)
			for _, line := range strings.Split(*n.Note, "\n") {
				b.WriteString(noteIndent)
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}

		id := n.ID
		writeChildren(b, childrenOf, &id, depth+1)
	}
}

func bulletPrefix(n outline.Node) string {
	switch {
	case n.IsChecked:
		return "- [x]"
	case n.NodeType == outline.NodeTypeCheckbox:
		return "- [ ]"
	default:
		return "-"
	}
}

var weekdayNames = map[string]string{
	"MO": "Monday", "TU": "Tuesday", "WE": "Wednesday", "TH": "Thursday",
	"FR": "Friday", "SA": "Saturday", "SU": "Sunday",
}

// RRuleToHuman converts a FREQ=…;INTERVAL=…;BYDAY=… recurrence rule into an
// Obsidian-Tasks-style phrase ("every day", "every 2 weeks", "every week on
// Monday, Wednesday, Friday"). Reports false for an unrecognized FREQ.
func RRuleToHuman(rrule string) (string, bool) {
	var freq string
	interval := 1
	var byday []string

	for _, part := range strings.Split(rrule, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		switch key {
		case "FREQ":
			freq = value
		case "INTERVAL":
			if n, err := strconv.Atoi(value); err == nil {
				interval = n
			}
		case "BYDAY":
			byday = strings.Split(value, ",")
		}
	}

	var unit string
	switch freq {
	case "DAILY":
		unit = "day"
	case "WEEKLY":
		unit = "week"
	case "MONTHLY":
		unit = "month"
	case "YEARLY":
		unit = "year"
	default:
		return "", false
	}
	if interval != 1 {
		unit += "s"
	}

	var result string
	if interval == 1 {
		result = "every " + unit
	} else {
		result = "every " + strconv.Itoa(interval) + " " + unit
	}

	if freq == "WEEKLY" && len(byday) > 0 {
		names := make([]string, 0, len(byday))
		for _, d := range byday {
			if name, ok := weekdayNames[d]; ok {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			result += " on " + strings.Join(names, ", ")
		}
	}

	return result, true
}
