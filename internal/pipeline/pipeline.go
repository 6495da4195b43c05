// Package pipeline runs one exam generation request end to end: input
// validation, document extraction, context assembly, schema-constrained
// generation, answer normalization, and transactional persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/examgen/internal/answers"
	"github.com/pavelanni/examgen/internal/extract"
	"github.com/pavelanni/examgen/internal/model"
	"github.com/pavelanni/examgen/internal/store"
)

var (
	// ErrNoSourceMaterial means the request carried no topic, no usable
	// documents, and no pasted text.
	ErrNoSourceMaterial = errors.New("no usable source material")

	// ErrInvalidCount means the requested question count is non-positive.
	ErrInvalidCount = errors.New("question count must be positive")
)

// Generator is the structured-generation capability the pipeline invokes.
type Generator interface {
	GenerateExam(ctx context.Context, topic, difficulty string, count int, contextText string) (*model.GeneratedExam, error)
}

// Pipeline wires the generation flow to its collaborators.
type Pipeline struct {
	store          *store.Store
	gen            Generator
	maxContextSize int
}

// New creates a Pipeline. maxContextSize <= 0 selects the default cap.
func New(s *store.Store, gen Generator, maxContextSize int) *Pipeline {
	if maxContextSize <= 0 {
		maxContextSize = DefaultMaxContextSize
	}
	return &Pipeline{store: s, gen: gen, maxContextSize: maxContextSize}
}

// Result is the outcome of one successful generation request.
type Result struct {
	ExamID   int64             `json:"exam_id"`
	Warnings []extract.Warning `json:"warnings,omitempty"`
}

// Run processes one generation request for userID and returns the new
// exam's identifier. Per-file extraction failures are tolerated and
// reported as warnings; every other failure aborts the request before
// anything is persisted.
func (p *Pipeline) Run(ctx context.Context, userID int64, req model.GenerationRequest) (*Result, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Count <= 0 {
		return nil, ErrInvalidCount
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DefaultDifficulty
	}
	if req.Topic == "" && len(req.Documents) == 0 && strings.TrimSpace(req.PastedText) == "" {
		return nil, ErrNoSourceMaterial
	}

	extracted, warnings, err := extract.All(ctx, req.Documents)
	if err != nil {
		return nil, fmt.Errorf("extract documents: %w", err)
	}

	contextText := AssembleContext(req.PastedText, extracted, p.maxContextSize)
	if req.Topic == "" && contextText == "" {
		// Every supplied file failed or was skipped and there is nothing
		// else to ground generation on.
		return nil, ErrNoSourceMaterial
	}

	slog.Info("generating exam",
		"user_id", userID,
		"topic", req.Topic,
		"difficulty", req.Difficulty,
		"count", req.Count,
		"context_chars", len(contextText),
		"documents", len(req.Documents),
		"extraction_warnings", len(warnings),
	)

	gen, err := p.gen.GenerateExam(ctx, req.Topic, req.Difficulty, req.Count, contextText)
	if err != nil {
		return nil, fmt.Errorf("generate exam: %w", err)
	}

	// A cancelled request must never reach the store.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topic := req.Topic
	if topic == "" {
		topic = model.FallbackTopic
	}
	exam := model.Exam{
		UserID:     userID,
		Title:      gen.Title,
		Topic:      topic,
		Difficulty: req.Difficulty,
		TimeLimit:  req.TimeLimit,
	}

	questions := make([]model.Question, 0, len(gen.Questions))
	for i, gq := range gen.Questions {
		stored, err := answers.Encode(gq.CorrectAnswer)
		if err != nil {
			return nil, fmt.Errorf("normalize answer for question %d: %w", i+1, err)
		}
		questions = append(questions, model.Question{
			Position:      i,
			Text:          gq.Text,
			Options:       gq.Options,
			CorrectAnswer: stored,
			Explanation:   gq.Explanation,
			Type:          gq.Type,
			Subtopic:      gq.Subtopic,
		})
	}

	examID, err := p.store.CreateExam(ctx, exam, questions)
	if err != nil {
		return nil, fmt.Errorf("persist exam: %w", err)
	}

	slog.Info("exam created", "exam_id", examID, "user_id", userID, "questions", len(questions))
	return &Result{ExamID: examID, Warnings: warnings}, nil
}
