package pipeline

import (
	"strings"
	"testing"

	"github.com/pavelanni/examgen/internal/extract"
)

func TestAssembleContextPastedOnly(t *testing.T) {
	got := AssembleContext("Mitosis is cell division.", nil, 0)

	if !strings.HasPrefix(got, "=== Pasted notes ===\n") {
		t.Errorf("context should start with the pasted-notes header, got %q", got)
	}
	if !strings.Contains(got, "Mitosis is cell division.") {
		t.Error("context should contain the pasted text verbatim")
	}
	if strings.Contains(got, "=== Source:") {
		t.Error("context should contain no document headers")
	}
}

func TestAssembleContextOrderAndProvenance(t *testing.T) {
	docs := []extract.Extracted{
		{Filename: "lecture1.pdf", Text: "Mitosis is division."},
		{Filename: "lecture2.docx", Text: "Meiosis halves chromosomes."},
	}
	got := AssembleContext("my pasted notes", docs, 0)

	pasted := strings.Index(got, "=== Pasted notes ===")
	first := strings.Index(got, "=== Source: lecture1.pdf ===")
	second := strings.Index(got, "=== Source: lecture2.docx ===")

	if pasted < 0 || first < 0 || second < 0 {
		t.Fatalf("missing provenance headers in %q", got)
	}
	if !(pasted < first && first < second) {
		t.Errorf("blocks out of order: pasted=%d first=%d second=%d", pasted, first, second)
	}
	if !strings.Contains(got, "Meiosis halves chromosomes.") {
		t.Error("second document text missing")
	}
}

func TestAssembleContextEmpty(t *testing.T) {
	if got := AssembleContext("", nil, 0); got != "" {
		t.Errorf("AssembleContext() = %q, want empty", got)
	}
	if got := AssembleContext("   \n", nil, 0); got != "" {
		t.Errorf("whitespace-only pasted text should assemble to empty, got %q", got)
	}
	docs := []extract.Extracted{{Filename: "a.txt", Text: ""}}
	if got := AssembleContext("", docs, 0); got != "" {
		t.Errorf("empty document text should assemble to empty, got %q", got)
	}
}

func TestAssembleContextTruncation(t *testing.T) {
	long := strings.Repeat("я", 500) // multi-byte runes exercise the boundary cut
	got := AssembleContext(long, nil, 100)

	if len(got) > 100+len("\n"+truncationMarker) {
		t.Errorf("context length %d exceeds cap plus marker", len(got))
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Error("truncated context should end with the truncation marker")
	}
	if !strings.ContainsRune(got, 'я') {
		t.Error("truncated context lost its content")
	}
}

func TestAssembleContextUnderCapUntouched(t *testing.T) {
	got := AssembleContext("short", nil, 1000)
	if strings.Contains(got, truncationMarker) {
		t.Error("context under the cap must not be truncated")
	}
}
