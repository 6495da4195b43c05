// Package answers converts generator-produced correct-answer values to and
// from the single TEXT column they are stored in. Single-answer question
// types store the string verbatim; select-all stores a JSON array so the
// ordered list round-trips exactly.
package answers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pavelanni/examgen/internal/model"
)

// ErrCorruptAnswer marks a stored value that does not decode for its
// question type. This is a data-integrity failure detected at read time,
// not a generation-time validation error.
var ErrCorruptAnswer = errors.New("corrupt stored answer")

// Encode converts a generator answer value into its storage form.
// A list becomes a JSON array string; a single string is stored verbatim.
func Encode(v model.AnswerValue) (string, error) {
	if !v.IsList {
		return v.Single, nil
	}
	if len(v.Multi) == 0 {
		return "", fmt.Errorf("encode answer: empty list")
	}
	data, err := json.Marshal(v.Multi)
	if err != nil {
		return "", fmt.Errorf("encode answer: %w", err)
	}
	return string(data), nil
}

// Decode restores the stored form for the given question type. Select-all
// questions decode to a non-empty ordered list; every other type decodes
// to the original single string.
func Decode(qt model.QuestionType, stored string) (model.AnswerValue, error) {
	if qt != model.TypeSelectAll {
		return model.SingleAnswer(stored), nil
	}
	var list []string
	if err := json.Unmarshal([]byte(stored), &list); err != nil {
		return model.AnswerValue{}, fmt.Errorf("%w: %q is not a JSON list: %v", ErrCorruptAnswer, stored, err)
	}
	if len(list) == 0 {
		return model.AnswerValue{}, fmt.Errorf("%w: select-all answer decoded to empty list", ErrCorruptAnswer)
	}
	return model.MultiAnswer(list...), nil
}
