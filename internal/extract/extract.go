// Package extract converts uploaded source documents into plain text.
// Each supported format has one fixed contract: bytes in, text out. The
// rest of the pipeline never sees which library (or library shape) did
// the work.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
)

// Media types the extractor understands. Anything else is skipped.
const (
	MediaPDF  = "application/pdf"
	MediaDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaText = "text/plain"
)

// Extract converts one file's binary content into plain text based on its
// declared media type. Zero-length files and unrecognized media types are
// skipped: the result is empty text and no error, so incidental
// attachments never fail a request.
func Extract(mediaType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	mt := normalizeMediaType(mediaType)
	switch mt {
	case MediaPDF:
		return PDF(data)
	case MediaDOCX:
		return DOCX(data)
	case MediaText:
		return Text(data)
	default:
		return "", nil
	}
}

// Supported reports whether the media type maps to an extractor.
func Supported(mediaType string) bool {
	switch normalizeMediaType(mediaType) {
	case MediaPDF, MediaDOCX, MediaText:
		return true
	}
	return false
}

func normalizeMediaType(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	// Strip parameters such as "; charset=utf-8".
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// PDF extracts plain text from PDF bytes. Errors name the library
// interface stage that failed so dependency drift shows up in logs.
func PDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

// DOCX extracts raw text from a DOCX container by walking the <w:t> runs
// in word/document.xml. Layout and formatting are discarded.
func DOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx container: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx container: word/document.xml missing")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("docx document part: %w", err)
	}
	defer rc.Close()

	text, err := textRuns(rc)
	if err != nil {
		return "", fmt.Errorf("docx xml: %w", err)
	}
	return collapseWhitespace(text), nil
}

// textRuns gathers the character data of every <w:t> element.
func textRuns(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "t" {
			continue
		}
		var v string
		if err := dec.DecodeElement(&v, &se); err != nil {
			return "", err
		}
		if v != "" {
			out.WriteString(v)
			out.WriteString(" ")
		}
	}
	return out.String(), nil
}

// Text decodes the bytes as UTF-8 plain text.
func Text(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text file is not valid UTF-8")
	}
	return collapseWhitespace(string(data)), nil
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
