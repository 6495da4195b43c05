package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/examgen/internal/model"
)

// CreateResult records a scored exam attempt.
func (s *Store) CreateResult(ctx context.Context, r model.ExamResult) (int64, error) {
	answersJSON, err := json.Marshal(r.Answers)
	if err != nil {
		return 0, fmt.Errorf("marshal answers: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_results (exam_id, user_id, score, total, answers, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ExamID, r.UserID, r.Score, r.Total, string(answersJSON), time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListResults returns a user's results for one exam, newest first.
func (s *Store) ListResults(examID, userID int64) ([]model.ExamResult, error) {
	rows, err := s.db.Query(
		`SELECT id, exam_id, user_id, score, total, answers, created_at
		 FROM exam_results WHERE exam_id = ? AND user_id = ? ORDER BY id DESC`, examID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		var r model.ExamResult
		var answersJSON string
		if err := rows.Scan(&r.ID, &r.ExamID, &r.UserID, &r.Score, &r.Total, &answersJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answersJSON), &r.Answers); err != nil {
			return nil, fmt.Errorf("result %d answers: %w", r.ID, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
