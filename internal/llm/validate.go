package llm

import (
	"fmt"
	"strings"

	"github.com/pavelanni/examgen/internal/model"
)

// ValidateExam checks generator output against the invariants the model
// cannot be trusted to respect: the exact question count and the
// option/answer shape of each question type. Any breach is a hard
// ErrSchemaViolation; nothing is coerced or repaired.
func ValidateExam(exam *model.GeneratedExam, count int) error {
	if strings.TrimSpace(exam.Title) == "" {
		return fmt.Errorf("%w: empty title", ErrSchemaViolation)
	}
	if len(exam.Questions) != count {
		return fmt.Errorf("%w: got %d questions, want exactly %d", ErrSchemaViolation, len(exam.Questions), count)
	}

	for i, q := range exam.Questions {
		if err := validateQuestion(q); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrSchemaViolation, i+1, err)
		}
	}
	return nil
}

func validateQuestion(q model.GeneratedQuestion) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("empty question text")
	}
	if !q.Type.Valid() {
		return fmt.Errorf("unknown question type %q", q.Type)
	}

	switch q.Type {
	case model.TypeMultipleChoice:
		if len(q.Options) != 4 {
			return fmt.Errorf("multiple_choice needs exactly 4 options, got %d", len(q.Options))
		}
		if q.CorrectAnswer.IsList {
			return fmt.Errorf("multiple_choice answer must be a single string")
		}
		if n := countOption(q.Options, q.CorrectAnswer.Single); n != 1 {
			return fmt.Errorf("answer %q must match exactly one option, matches %d", q.CorrectAnswer.Single, n)
		}

	case model.TypeTrueFalse:
		if !isTrueFalseOptions(q.Options) {
			return fmt.Errorf(`true_false options must be exactly ["True", "False"], got %v`, q.Options)
		}
		if q.CorrectAnswer.IsList {
			return fmt.Errorf("true_false answer must be a single string")
		}
		if q.CorrectAnswer.Single != "True" && q.CorrectAnswer.Single != "False" {
			return fmt.Errorf(`true_false answer must be "True" or "False", got %q`, q.CorrectAnswer.Single)
		}

	case model.TypeFillBlank:
		if len(q.Options) != 0 {
			return fmt.Errorf("fill_blank must have no options, got %d", len(q.Options))
		}
		if q.CorrectAnswer.IsList {
			return fmt.Errorf("fill_blank answer must be a single string")
		}
		if strings.TrimSpace(q.CorrectAnswer.Single) == "" {
			return fmt.Errorf("fill_blank answer is empty")
		}

	case model.TypeSelectAll:
		if len(q.Options) < 4 {
			return fmt.Errorf("select_all needs at least 4 options, got %d", len(q.Options))
		}
		if !q.CorrectAnswer.IsList {
			return fmt.Errorf("select_all answer must be a list of strings")
		}
		if len(q.CorrectAnswer.Multi) == 0 {
			return fmt.Errorf("select_all needs at least one correct answer")
		}
		seen := make(map[string]bool)
		for _, a := range q.CorrectAnswer.Multi {
			if seen[a] {
				return fmt.Errorf("duplicate answer %q", a)
			}
			seen[a] = true
			if countOption(q.Options, a) != 1 {
				return fmt.Errorf("answer %q must match exactly one option", a)
			}
		}
	}
	return nil
}

func countOption(options []string, answer string) int {
	n := 0
	for _, o := range options {
		if o == answer {
			n++
		}
	}
	return n
}

func isTrueFalseOptions(options []string) bool {
	if len(options) != 2 {
		return false
	}
	return (options[0] == "True" && options[1] == "False") ||
		(options[0] == "False" && options[1] == "True")
}
