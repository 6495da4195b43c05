package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/pavelanni/examgen/internal/extract"
)

const (
	pastedHeader     = "=== Pasted notes ==="
	truncationMarker = "[...source material truncated...]"
)

// DefaultMaxContextSize caps the assembled context at roughly a 30k-token
// budget, well inside common model input limits.
const DefaultMaxContextSize = 120_000

// AssembleContext combines pasted text and extracted document text into
// one bounded context string. Pasted text comes first under a fixed
// provenance header; each document follows under a header naming its
// source file, in upload order. Contexts longer than maxSize are cut at a
// rune boundary and tagged with a truncation marker.
func AssembleContext(pasted string, docs []extract.Extracted, maxSize int) string {
	var sb strings.Builder

	if strings.TrimSpace(pasted) != "" {
		sb.WriteString(pastedHeader)
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(pasted))
		sb.WriteString("\n\n")
	}
	for _, d := range docs {
		if d.Text == "" {
			continue
		}
		sb.WriteString("=== Source: ")
		sb.WriteString(d.Filename)
		sb.WriteString(" ===\n")
		sb.WriteString(d.Text)
		sb.WriteString("\n\n")
	}

	combined := strings.TrimSpace(sb.String())
	if maxSize <= 0 {
		maxSize = DefaultMaxContextSize
	}
	if len(combined) <= maxSize {
		return combined
	}

	cut := maxSize
	for cut > 0 && !utf8.RuneStart(combined[cut]) {
		cut--
	}
	return combined[:cut] + "\n" + truncationMarker
}
