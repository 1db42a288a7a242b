package markdownexport

import "strings"

// htmlToMarkdown converts the small subset of inline HTML the upstream
// rich-text editor emits (bold/italic/code/links/line-breaks) into Markdown,
// then decodes the entities internal/htmlutil also handles. Ported in
// spirit from original_source/markdown.rs's html_to_markdown, restructured
// around a tokenizing loop instead of a manual peekable-char-iterator dance.
func htmlToMarkdown(html string) string {
	var out strings.Builder
	out.Grow(len(html))

	runes := []rune(html)
	i := 0
	for i < len(runes) {
		if runes[i] != '<' {
			out.WriteRune(runes[i])
			i++
			continue
		}

		end := indexRune(runes, i, '>')
		if end < 0 {
			out.WriteRune(runes[i])
			i++
			continue
		}
		tag := string(runes[i+1 : end])
		i = end + 1

		closing := strings.HasPrefix(tag, "/")
		tag = strings.TrimPrefix(tag, "/")
		name := strings.ToLower(firstWord(tag))

		switch name {
		case "strong", "b":
			out.WriteString("**")
		case "em", "i":
			out.WriteByte('*')
		case "code":
			out.WriteByte('`')
		case "br":
			if !closing {
				out.WriteByte('\n')
			}
		case "a":
			if closing {
				continue
			}
			href := attrValue(tag, "href")
			linkEnd := findClosingTag(runes, i, "a")
			text := string(runes[i:linkEnd])
			out.WriteByte('[')
			out.WriteString(text)
			out.WriteString("](")
			out.WriteString(href)
			out.WriteByte(')')
			i = skipPastClosingTag(runes, linkEnd)
		}
	}

	return decodeEntities(strings.TrimSpace(out.String()))
}

func indexRune(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func attrValue(tag, attr string) string {
	needle := attr + `="`
	idx := strings.Index(tag, needle)
	if idx < 0 {
		return ""
	}
	rest := tag[idx+len(needle):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// findClosingTag returns the rune index of the "<" that begins the next
// </name> starting the scan at from.
func findClosingTag(runes []rune, from int, name string) int {
	closeTag := "</" + name
	for i := from; i < len(runes); i++ {
		if runes[i] == '<' && strings.HasPrefix(strings.ToLower(string(runes[i:min(i+len(closeTag), len(runes))])), closeTag) {
			return i
		}
	}
	return len(runes)
}

func skipPastClosingTag(runes []rune, from int) int {
	end := indexRune(runes, from, '>')
	if end < 0 {
		return len(runes)
	}
	return end + 1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func decodeEntities(s string) string {
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	)
	return replacer.Replace(s)
}
