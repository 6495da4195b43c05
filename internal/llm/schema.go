package llm

import (
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/pavelanni/examgen/internal/model"
)

// examSchema describes the exam payload the generator must produce.
// correct_answer is deliberately untyped: single-answer types return a
// string, select_all returns a list of strings. The array-length
// constraint is stated here but enforced structurally by ValidateExam.
func examSchema(count int) jsonschema.Definition {
	typeNames := make([]string, len(model.QuestionTypes))
	for i, t := range model.QuestionTypes {
		typeNames[i] = string(t)
	}

	question := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"text": {Type: jsonschema.String, Description: "The question text"},
			"type": {Type: jsonschema.String, Enum: typeNames},
			"options": {
				Type:  jsonschema.Array,
				Items: &jsonschema.Definition{Type: jsonschema.String},
			},
			"correct_answer": {
				Description: "The correct option string, or for select_all a list of correct option strings",
			},
			"explanation": {Type: jsonschema.String, Description: "Why the correct answer is correct"},
			"subtopic":    {Type: jsonschema.String, Description: "Short subtopic label"},
		},
		Required: []string{"text", "type", "options", "correct_answer", "explanation", "subtopic"},
	}

	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title": {Type: jsonschema.String, Description: "A descriptive exam title"},
			"questions": {
				Type:        jsonschema.Array,
				Description: fmt.Sprintf("Exactly %d questions", count),
				Items:       &question,
			},
		},
		Required: []string{"title", "questions"},
	}
}
