package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pavelanni/examgen/internal/model"
)

// buildDOCX assembles a minimal DOCX container holding the given paragraphs.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	escaper := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		body.WriteString(escaper.Replace(p))
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	got, err := Extract(MediaText, []byte("Mitosis is cell division.\n\nIt has phases."))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Mitosis is cell division. It has phases." {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtractPlainTextWithCharset(t *testing.T) {
	got, err := Extract("text/plain; charset=utf-8", []byte("notes"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "notes" {
		t.Errorf("Extract() = %q, want 'notes'", got)
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	_, err := Extract(MediaText, []byte{0xff, 0xfe, 0x00, 0x41})
	if err == nil {
		t.Error("Extract() accepted invalid UTF-8 text")
	}
}

func TestExtractZeroByteFile(t *testing.T) {
	got, err := Extract(MediaPDF, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "" {
		t.Errorf("Extract() = %q, want empty for zero-byte file", got)
	}
}

func TestExtractUnknownTypeSkipped(t *testing.T) {
	got, err := Extract("image/png", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("Extract() errored on unknown type: %v", err)
	}
	if got != "" {
		t.Errorf("Extract() = %q, want empty for unknown type", got)
	}
}

func TestExtractDOCX(t *testing.T) {
	data := buildDOCX(t, "The cell membrane is selectively permeable.", "Diffusion requires no energy.")
	got, err := Extract(MediaDOCX, data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "selectively permeable") {
		t.Errorf("extracted text missing first paragraph: %q", got)
	}
	if !strings.Contains(got, "Diffusion requires no energy") {
		t.Errorf("extracted text missing second paragraph: %q", got)
	}
}

func TestExtractCorruptDOCX(t *testing.T) {
	_, err := Extract(MediaDOCX, []byte("not a zip archive"))
	if err == nil {
		t.Error("Extract() accepted a corrupt DOCX")
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	_, err := Extract(MediaPDF, []byte("%PDF-1.4 truncated garbage"))
	if err == nil {
		t.Fatal("Extract() accepted a corrupt PDF")
	}
	if !strings.Contains(err.Error(), "pdf") {
		t.Errorf("PDF error should name the failing interface, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{MediaPDF, true},
		{MediaDOCX, true},
		{MediaText, true},
		{"text/plain; charset=utf-8", true},
		{"image/jpeg", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.mediaType); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.mediaType, got, tt.want)
		}
	}
}

func TestAllPreservesUploadOrder(t *testing.T) {
	docs := []model.SourceDocument{
		{Filename: "a.txt", MediaType: MediaText, Data: []byte("first document")},
		{Filename: "b.txt", MediaType: MediaText, Data: []byte("second document")},
		{Filename: "c.txt", MediaType: MediaText, Data: []byte("third document")},
		{Filename: "d.txt", MediaType: MediaText, Data: []byte("fourth document")},
	}

	results, warnings, err := All(context.Background(), docs)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, want := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		if results[i].Filename != want {
			t.Errorf("results[%d].Filename = %q, want %q", i, results[i].Filename, want)
		}
	}
}

func TestAllCollectsFailuresWithoutAborting(t *testing.T) {
	docs := []model.SourceDocument{
		{Filename: "notes.txt", MediaType: MediaText, Data: []byte("usable text")},
		{Filename: "broken.docx", MediaType: MediaDOCX, Data: []byte("not a zip")},
		{Filename: "photo.png", MediaType: "image/png", Data: []byte{1, 2, 3}},
	}

	results, warnings, err := All(context.Background(), docs)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(results) != 1 || results[0].Filename != "notes.txt" {
		t.Fatalf("expected only notes.txt to extract, got %v", results)
	}
	// The corrupt file warns; the unsupported type is silently skipped.
	if len(warnings) != 1 || warnings[0].Filename != "broken.docx" {
		t.Fatalf("expected one warning for broken.docx, got %v", warnings)
	}
}

func TestAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []model.SourceDocument{
		{Filename: "a.txt", MediaType: MediaText, Data: []byte("text")},
	}
	if _, _, err := All(ctx, docs); err == nil {
		t.Error("All() should fail on cancelled context")
	}
}
