package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/examgen/internal/model"
)

// CreateExam writes the exam header and its full question batch in one
// transaction. The returned exam ID is only observable if every question
// committed; a failure anywhere rolls the whole exam back.
func (s *Store) CreateExam(ctx context.Context, exam model.Exam, questions []model.Question) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO exams (user_id, title, topic, difficulty, time_limit, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		exam.UserID, exam.Title, exam.Topic, exam.Difficulty, exam.TimeLimit, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	examID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, q := range questions {
		opts, err := marshalOptions(q.Options)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions (exam_id, position, text, options, correct_answer, explanation, type, subtopic)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			examID, q.Position, q.Text, opts, q.CorrectAnswer, q.Explanation, q.Type, q.Subtopic,
		)
		if err != nil {
			return 0, err
		}
	}

	return examID, tx.Commit()
}

// GetExam returns an exam header by ID.
func (s *Store) GetExam(id int64) (model.Exam, error) {
	var e model.Exam
	err := s.db.QueryRow(
		`SELECT id, user_id, title, topic, difficulty, time_limit, created_at FROM exams WHERE id = ?`, id,
	).Scan(&e.ID, &e.UserID, &e.Title, &e.Topic, &e.Difficulty, &e.TimeLimit, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return e, fmt.Errorf("exam %d: %w", id, ErrNotFound)
	}
	return e, err
}

// GetExamQuestions returns an exam's questions in generation order.
// Ordering is by the explicit position column assigned at persist time,
// with ID as a tiebreak, so it does not depend on rowid assignment.
func (s *Store) GetExamQuestions(examID int64) ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, exam_id, position, text, options, correct_answer, explanation, type, subtopic
		 FROM questions WHERE exam_id = ? ORDER BY position, id`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var opts string
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Position, &q.Text, &opts, &q.CorrectAnswer, &q.Explanation, &q.Type, &q.Subtopic); err != nil {
			return nil, err
		}
		if q.Options, err = unmarshalOptions(opts); err != nil {
			return nil, fmt.Errorf("question %d options: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetExamView returns the exam header with its full question list.
func (s *Store) GetExamView(id int64) (*model.ExamView, error) {
	exam, err := s.GetExam(id)
	if err != nil {
		return nil, err
	}
	questions, err := s.GetExamQuestions(id)
	if err != nil {
		return nil, err
	}
	return &model.ExamView{Exam: exam, Questions: questions}, nil
}

// ListExamsByUser returns a user's exams, newest first.
func (s *Store) ListExamsByUser(userID int64) ([]model.Exam, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, topic, difficulty, time_limit, created_at
		 FROM exams WHERE user_id = ? ORDER BY id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Topic, &e.Difficulty, &e.TimeLimit, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// DeleteExam removes an exam; its questions and results cascade.
func (s *Store) DeleteExam(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exams WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("exam %d: %w", id, ErrNotFound)
	}
	return nil
}

// ExamCount returns the number of exams in the database.
func (s *Store) ExamCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM exams`).Scan(&count)
	return count, err
}

func marshalOptions(options []string) (string, error) {
	if len(options) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalOptions(stored string) ([]string, error) {
	var options []string
	if err := json.Unmarshal([]byte(stored), &options); err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, nil
	}
	return options, nil
}
