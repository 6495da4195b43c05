package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/examgen/internal/answers"
	"github.com/pavelanni/examgen/internal/model"
)

// ExportUserExams builds an export of every exam owned by the named
// user, with answers restored to their original generator shape.
func (s *Store) ExportUserExams(username string) (*model.UserExport, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}

	exams, err := s.ListExamsByUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	export := &model.UserExport{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		ExportedAt:  time.Now(),
	}

	for _, e := range exams {
		questions, err := s.GetExamQuestions(e.ID)
		if err != nil {
			return nil, fmt.Errorf("get questions for exam %d: %w", e.ID, err)
		}

		ee := model.ExamExport{
			Title:      e.Title,
			Topic:      e.Topic,
			Difficulty: e.Difficulty,
			TimeLimit:  e.TimeLimit,
			CreatedAt:  e.CreatedAt,
		}
		for _, q := range questions {
			answer, err := answers.Decode(q.Type, q.CorrectAnswer)
			if err != nil {
				return nil, fmt.Errorf("decode answer for question %d: %w", q.ID, err)
			}
			ee.Questions = append(ee.Questions, model.QuestionExport{
				Text:          q.Text,
				Type:          q.Type,
				Options:       q.Options,
				CorrectAnswer: answer,
				Explanation:   q.Explanation,
				Subtopic:      q.Subtopic,
			})
		}
		export.Exams = append(export.Exams, ee)
	}

	return export, nil
}
