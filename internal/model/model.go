package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent is a student user role.
	UserRoleStudent UserRole = "student"
	// UserRoleAdmin is an admin user role.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// QuestionType is the closed set of question kinds the generator may produce.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeFillBlank      QuestionType = "fill_blank"
	TypeSelectAll      QuestionType = "select_all"
)

// QuestionTypes lists every valid question type in a stable order.
var QuestionTypes = []QuestionType{TypeMultipleChoice, TypeTrueFalse, TypeFillBlank, TypeSelectAll}

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeFillBlank, TypeSelectAll:
		return true
	}
	return false
}

// FallbackTopic is stored when the user supplied no topic and the exam
// was generated purely from uploaded or pasted material.
const FallbackTopic = "Custom material"

// DefaultDifficulty is used when the request carries no difficulty label.
const DefaultDifficulty = "Medium"

// DefaultQuestionCount is used when the request carries no count.
const DefaultQuestionCount = 5

// Exam is a persisted collection of generated questions with shared metadata.
type Exam struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Title      string    `json:"title"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
	TimeLimit  int       `json:"time_limit,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Question is a single persisted exam question. CorrectAnswer holds the
// storage encoding produced by the answers package: a plain string for
// single-answer types, a JSON array string for select-all.
type Question struct {
	ID            int64        `json:"id"`
	ExamID        int64        `json:"exam_id"`
	Position      int          `json:"position"`
	Text          string       `json:"text"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Type          QuestionType `json:"type"`
	Subtopic      string       `json:"subtopic"`
}

// ExamView combines an exam with its questions in generation order.
type ExamView struct {
	Exam      Exam       `json:"exam"`
	Questions []Question `json:"questions"`
}

// SourceDocument is one uploaded file awaiting extraction.
type SourceDocument struct {
	Filename  string
	MediaType string
	Data      []byte
}

// GenerationRequest carries one exam generation invocation. It is
// transient and never persisted.
type GenerationRequest struct {
	Topic      string
	Difficulty string
	Count      int
	TimeLimit  int
	Documents  []SourceDocument
	PastedText string
}

// ExamResult records a user's scored attempt at an exam. Answers maps
// question IDs to the submitted answer value.
type ExamResult struct {
	ID        int64                 `json:"id"`
	ExamID    int64                 `json:"exam_id"`
	UserID    int64                 `json:"user_id"`
	Score     int                   `json:"score"`
	Total     int                   `json:"total"`
	Answers   map[int64]AnswerValue `json:"answers"`
	CreatedAt time.Time             `json:"created_at"`
}

// AnswerValue is a correct-answer or submitted-answer value that may be
// either a single string or a list of strings, matching the two answer
// shapes the generator produces.
type AnswerValue struct {
	Single string
	Multi  []string
	IsList bool
}

// SingleAnswer wraps a plain string answer.
func SingleAnswer(s string) AnswerValue {
	return AnswerValue{Single: s}
}

// MultiAnswer wraps a list-of-strings answer.
func MultiAnswer(vals ...string) AnswerValue {
	return AnswerValue{Multi: vals, IsList: true}
}

// UnmarshalJSON accepts either a JSON string or a JSON array of strings.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AnswerValue{Single: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = AnswerValue{Multi: list, IsList: true}
		return nil
	}
	return fmt.Errorf("answer value must be a string or a list of strings: %s", data)
}

// MarshalJSON emits the value in its original shape.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.IsList {
		return json.Marshal(a.Multi)
	}
	return json.Marshal(a.Single)
}

// GeneratedQuestion is one question as produced by the generator, before
// normalization and persistence.
type GeneratedQuestion struct {
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options"`
	CorrectAnswer AnswerValue  `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Subtopic      string       `json:"subtopic"`
}

// GeneratedExam is the generator's full schema-constrained output.
type GeneratedExam struct {
	Title     string              `json:"title"`
	Questions []GeneratedQuestion `json:"questions"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	Lang           string
	MaxContextSize int  // assembled context cap, in characters
	SecureCookies  bool // Set Secure flag on cookies (disable for local dev)
}
