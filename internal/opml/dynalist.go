package opml

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// colorLabels maps Dynalist's colorLabel=n attribute to the color name
// stored on Node.Color.
var colorLabels = map[string]string{
	"1": "red",
	"2": "orange",
	"3": "yellow",
	"4": "green",
	"5": "blue",
	"6": "purple",
}

var dateRecurrencePattern = regexp.MustCompile(`!\(\s*(\d{4}-\d{2}-\d{2})\s*(?:\|\s*([^)]+?)\s*)?\)`)

// extractDateRecurrence removes every `!(YYYY-MM-DD)` / `!(YYYY-MM-DD | recur)`
// occurrence from text, returning the cleaned text plus the FIRST date and
// (optional) recurrence encountered.
func extractDateRecurrence(text string) (cleaned, date, recurrence string) {
	matches := dateRecurrencePattern.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		date = matches[0][1]
		if len(matches[0]) > 2 && matches[0][2] != "" {
			recurrence = recurrenceToRRule(matches[0][2])
		}
	}
	cleaned = dateRecurrencePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(cleaned), date, recurrence
}

var markPattern = regexp.MustCompile(`==([^=]+)==`)

func convertMark(text string) string {
	return markPattern.ReplaceAllString(text, "<mark>$1</mark>")
}

var obsidianLinkPattern = regexp.MustCompile(`\[@ob\]\(obsidian://open\?vault=[^&]+&file=([^)]+)\)`)

// convertObsidianLink rewrites Dynalist's obsidian deep links into a plain
// [[basename]] wiki-link, the only part of the reference worth keeping once
// the vault is gone.
func convertObsidianLink(text string) string {
	return obsidianLinkPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := obsidianLinkPattern.FindStringSubmatch(m)
		filePath, err := url.QueryUnescape(sub[1])
		if err != nil {
			filePath = sub[1]
		}
		base := path.Base(filePath)
		base = strings.TrimSuffix(base, path.Ext(base))
		return fmt.Sprintf("[[%s]]", base)
	})
}

// processText runs the three text-processing steps, in order, on an
// attribute value. Returns the cleaned text plus any date/recurrence
// extracted (only ever set for the `text` attribute, by convention of the
// caller).
func processText(raw string) (cleaned, date, recurrence string) {
	cleaned, date, recurrence = extractDateRecurrence(raw)
	cleaned = convertMark(cleaned)
	cleaned = convertObsidianLink(cleaned)
	return cleaned, date, recurrence
}

var recurrencePattern = regexp.MustCompile(`^~?(\d+)([dwmy])$`)

var recurrenceUnit = map[string]string{
	"d": "DAILY",
	"w": "WEEKLY",
	"m": "MONTHLY",
	"y": "YEARLY",
}

// recurrenceToRRule converts Dynalist's `{N}{d|w|m|y}` shorthand (optionally
// `~`-prefixed for "approximately") into an RRULE subset. Unknown units
// yield no recurrence.
func recurrenceToRRule(shorthand string) string {
	shorthand = strings.TrimSpace(shorthand)
	m := recurrencePattern.FindStringSubmatch(shorthand)
	if m == nil {
		return ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return ""
	}
	freq, ok := recurrenceUnit[m[2]]
	if !ok {
		return ""
	}
	if n == 1 {
		return "FREQ=" + freq
	}
	return fmt.Sprintf("FREQ=%s;INTERVAL=%d", freq, n)
}
