package extract

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/examgen/internal/model"
)

// extractConcurrency bounds parallel extractions within one request.
const extractConcurrency = 4

// Extracted is one document's text, tagged with its source filename.
type Extracted struct {
	Filename string
	Text     string
}

// Warning records a per-file extraction failure that did not abort the batch.
type Warning struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// All extracts every document concurrently and returns the successful
// results re-ordered to match the upload order, plus a warning for each
// file that failed, also in upload order. A failed or skipped file never
// aborts the batch.
func All(ctx context.Context, docs []model.SourceDocument) ([]Extracted, []Warning, error) {
	texts := make([]string, len(docs))
	failures := make([]error, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extractConcurrency)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := Extract(doc.MediaType, doc.Data)
			if err != nil {
				slog.Warn("document extraction failed",
					"filename", doc.Filename, "media_type", doc.MediaType, "error", err)
				failures[i] = err
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		results  []Extracted
		warnings []Warning
	)
	for i, doc := range docs {
		if failures[i] != nil {
			warnings = append(warnings, Warning{Filename: doc.Filename, Reason: failures[i].Error()})
			continue
		}
		if texts[i] == "" {
			continue
		}
		results = append(results, Extracted{Filename: doc.Filename, Text: texts[i]})
	}
	return results, warnings, nil
}
