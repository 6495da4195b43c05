package model

import "time"

// UserExport is the top-level JSON structure for exporting one user's exams.
type UserExport struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	ExportedAt  time.Time    `json:"exported_at"`
	Exams       []ExamExport `json:"exams"`
}

// ExamExport holds one exam with its questions for export.
type ExamExport struct {
	Title      string           `json:"title"`
	Topic      string           `json:"topic"`
	Difficulty string           `json:"difficulty"`
	TimeLimit  int              `json:"time_limit,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	Questions  []QuestionExport `json:"questions"`
}

// QuestionExport holds per-question data for export. CorrectAnswer is
// restored to its original shape (string or list) rather than the
// storage encoding.
type QuestionExport struct {
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer AnswerValue  `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Subtopic      string       `json:"subtopic"`
}
