package icalexport

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

func TestGenerateSkipsNodesWithoutDate(t *testing.T) {
	n := outline.Node{ID: uuid.Must(uuid.NewV7()), Content: "no date"}
	out := Generate([]outline.Node{n})
	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("expected no VEVENT, got:\n%s", out)
	}
}

func TestGenerateEvent(t *testing.T) {
	date := "2025-06-01"
	note := "details; with, punctuation\nand newline"
	n := outline.Node{
		ID: uuid.Must(uuid.NewV7()), Content: "Birthday",
		Date: &date, Note: &note, IsChecked: true,
	}
	out := Generate([]outline.Node{n})

	if !strings.Contains(out, "DTSTART;VALUE=DATE:20250601") {
		t.Errorf("missing DTSTART: %s", out)
	}
	if !strings.Contains(out, "UID:"+n.ID.String()+"@outline.local") {
		t.Errorf("missing UID: %s", out)
	}
	if !strings.Contains(out, "STATUS:COMPLETED") {
		t.Errorf("expected COMPLETED status: %s", out)
	}
	if !strings.Contains(out, `DESCRIPTION:details\; with\, punctuation\nand newline`) {
		t.Errorf("description not escaped correctly: %s", out)
	}
	if !strings.Contains(out, "X-WR-CALNAME:Outline Tasks") {
		t.Errorf("missing calendar name: %s", out)
	}
	if !strings.Contains(out, "\r\n") {
		t.Errorf("expected CRLF line endings")
	}
}
