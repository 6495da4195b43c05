// Package prompts builds the generation instructions sent to the LLM.
// Prompts are deterministic: the same request data always produces the
// same instruction text.
package prompts

import (
	"fmt"
	"strings"
)

// System is the system prompt for exam generation.
const System = "You are an expert exam author. You write clear, unambiguous practice exam " +
	"questions with plausible distractors and concise explanations. " +
	"Respond ONLY with a JSON object matching the requested schema."

// Generation builds the user prompt for one exam generation request.
// The grounding directive and source material block are emitted only when
// contextText is non-empty.
func Generation(topic, difficulty string, count int, contextText string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Create a practice exam with exactly %d questions.\n\n", count)
	fmt.Fprintf(&sb, "DIFFICULTY: %s\n", difficulty)
	if topic != "" {
		fmt.Fprintf(&sb, "TOPIC: %s\n", topic)
	}

	sb.WriteString("\nQUESTION TYPES (use only these, in a diverse mix):\n")
	sb.WriteString("- multiple_choice: exactly 4 options, exactly one correct. correct_answer is the correct option string.\n")
	sb.WriteString("- true_false: options are exactly [\"True\", \"False\"]. correct_answer is \"True\" or \"False\".\n")
	sb.WriteString("- fill_blank: options is an empty list. correct_answer is the expected answer string.\n")
	sb.WriteString("- select_all: at least 4 options, one or more correct. correct_answer is a list of the correct option strings.\n")

	sb.WriteString("\nFor every question provide an explanation of the correct answer and a short subtopic label.\n")

	if contextText != "" {
		sb.WriteString("\nBase every question strictly on the source material below. ")
		sb.WriteString("Do not introduce facts that the material does not support.\n\n")
		sb.WriteString("SOURCE MATERIAL:\n")
		sb.WriteString(contextText)
		sb.WriteString("\n")
	}

	return sb.String()
}
