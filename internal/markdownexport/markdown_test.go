package markdownexport

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

func node(content string) outline.Node {
	return outline.Node{ID: uuid.Must(uuid.NewV7()), Content: content, NodeType: outline.NodeTypeBullet}
}

func TestGenerateSimple(t *testing.T) {
	a, b := node("First item"), node("Second item")
	a.Position, b.Position = 0, 1
	out := Generate([]outline.Node{a, b})
	if !strings.Contains(out, "- First item") || !strings.Contains(out, "- Second item") {
		t.Errorf("got:\n%s", out)
	}
}

func TestGenerateNested(t *testing.T) {
	parent := node("Parent")
	child := node("Child")
	child.ParentID = &parent.ID
	out := Generate([]outline.Node{parent, child})
	if !strings.Contains(out, "- Parent\n") || !strings.Contains(out, "  - Child\n") {
		t.Errorf("got:\n%s", out)
	}
}

func TestGenerateCheckbox(t *testing.T) {
	n := node("Task")
	n.NodeType = outline.NodeTypeCheckbox
	out := Generate([]outline.Node{n})
	if !strings.Contains(out, "- [ ] Task") {
		t.Errorf("got:\n%s", out)
	}
}

func TestGenerateChecked(t *testing.T) {
	n := node("Done task")
	n.NodeType = outline.NodeTypeCheckbox
	n.IsChecked = true
	n.UpdatedAt = time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	out := Generate([]outline.Node{n})
	if !strings.Contains(out, "- [x] Done task") || !strings.Contains(out, "✅ 2025-03-04") {
		t.Errorf("got:\n%s", out)
	}
}

func TestGenerateDueDateAndRecurrence(t *testing.T) {
	n := node("Recurring task")
	n.NodeType = outline.NodeTypeCheckbox
	date := "2025-01-15"
	rec := "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR"
	n.Date = &date
	n.DateRecurrence = &rec
	out := Generate([]outline.Node{n})
	if !strings.Contains(out, "📅 2025-01-15") {
		t.Errorf("missing due date: %s", out)
	}
	if !strings.Contains(out, "🔁 every week on Monday, Wednesday, Friday") {
		t.Errorf("missing recurrence phrase: %s", out)
	}
}

func TestRRuleToHuman(t *testing.T) {
	cases := map[string]string{
		"FREQ=DAILY;INTERVAL=1":   "every day",
		"FREQ=DAILY;INTERVAL=2":   "every 2 days",
		"FREQ=WEEKLY;INTERVAL=1":  "every week",
		"FREQ=MONTHLY;INTERVAL=1": "every month",
		"FREQ=YEARLY;INTERVAL=1":  "every year",
		"FREQ=WEEKLY;INTERVAL=2":  "every 2 weeks",
	}
	for rrule, want := range cases {
		got, ok := RRuleToHuman(rrule)
		if !ok || got != want {
			t.Errorf("RRuleToHuman(%q) = %q, %v; want %q", rrule, got, ok, want)
		}
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	cases := map[string]string{
		"<strong>bold</strong>":                           "**bold**",
		"<b>bold</b>":                                      "**bold**",
		"<em>italic</em>":                                  "*italic*",
		"<code>code</code>":                                "`code`",
		`<a href="https://example.com">link text</a>`:      "[link text](https://example.com)",
		"Hello <strong>world</strong> and <em>italic</em>": "Hello **world** and *italic*",
		"Hello&nbsp;World":                                 "Hello World",
		"A &amp; B":                                        "A & B",
	}
	for in, want := range cases {
		if got := htmlToMarkdown(in); got != want {
			t.Errorf("htmlToMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSelectExcludesOutOfScopeAndRerootsParent(t *testing.T) {
	root := node("root")
	mid := node("mid")
	mid.ParentID = &root.ID
	leaf := node("leaf")
	leaf.ParentID = &mid.ID
	other := node("other")

	nodes := []outline.Node{root, mid, leaf, other}
	selected := map[uuid.UUID]bool{mid.ID: true}

	got := Select(nodes, selected, false)
	if len(got) != 2 {
		t.Fatalf("want 2 nodes (mid, leaf), got %d", len(got))
	}
	for _, n := range got {
		if n.ID == mid.ID && n.ParentID != nil {
			t.Errorf("mid should be re-rooted, parent=%v", n.ParentID)
		}
	}
}

func TestSelectExcludeChecked(t *testing.T) {
	root := node("root")
	root.NodeType = outline.NodeTypeCheckbox
	root.IsChecked = true
	child := node("child")
	child.ParentID = &root.ID

	got := Select([]outline.Node{root, child}, map[uuid.UUID]bool{root.ID: true}, true)
	if len(got) != 0 {
		t.Fatalf("want checked subtree excluded entirely, got %d nodes", len(got))
	}
}
