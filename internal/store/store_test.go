package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pavelanni/examgen/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, username string) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{
		Username:     username,
		DisplayName:  "Test " + username,
		PasswordHash: "hash",
		Role:         model.UserRoleStudent,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("createTestUser: %v", err)
	}
	return id
}

func testQuestions(n int) []model.Question {
	var qs []model.Question
	for i := 0; i < n; i++ {
		qs = append(qs, model.Question{
			Position:      i,
			Text:          "Question " + string(rune('A'+i)),
			Options:       []string{"W", "X", "Y", "Z"},
			CorrectAnswer: "W",
			Explanation:   "because",
			Type:          model.TypeMultipleChoice,
			Subtopic:      "sub",
		})
	}
	return qs
}

func createTestExam(t *testing.T, s *Store, userID int64, n int) int64 {
	t.Helper()
	id, err := s.CreateExam(context.Background(), model.Exam{
		UserID:     userID,
		Title:      "Cell Biology Practice",
		Topic:      "Cell Biology",
		Difficulty: "Medium",
		TimeLimit:  30,
	}, testQuestions(n))
	if err != nil {
		t.Fatalf("createTestExam: %v", err)
	}
	return id
}

func TestCreateAndReadExam(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "alice")
	examID := createTestExam(t, s, userID, 5)

	exam, err := s.GetExam(examID)
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if exam.Title != "Cell Biology Practice" {
		t.Errorf("Title = %q", exam.Title)
	}
	if exam.UserID != userID {
		t.Errorf("UserID = %d, want %d", exam.UserID, userID)
	}
	if exam.TimeLimit != 30 {
		t.Errorf("TimeLimit = %d, want 30", exam.TimeLimit)
	}

	questions, err := s.GetExamQuestions(examID)
	if err != nil {
		t.Fatalf("GetExamQuestions: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.Position != i {
			t.Errorf("questions[%d].Position = %d, want %d", i, q.Position, i)
		}
		if q.ExamID != examID {
			t.Errorf("questions[%d].ExamID = %d, want %d", i, q.ExamID, examID)
		}
		if !reflect.DeepEqual(q.Options, []string{"W", "X", "Y", "Z"}) {
			t.Errorf("questions[%d].Options = %v", i, q.Options)
		}
	}

	// Questions come back in generation order.
	for i := 1; i < len(questions); i++ {
		if questions[i].ID <= questions[i-1].ID {
			t.Errorf("question IDs not ascending: %d then %d", questions[i-1].ID, questions[i].ID)
		}
	}
}

func TestGetExamNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetExam(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExam(9999) error = %v, want ErrNotFound", err)
	}
}

func TestCreateExamEmptyOptions(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "alice")

	examID, err := s.CreateExam(context.Background(), model.Exam{
		UserID: userID, Title: "T", Topic: "t", Difficulty: "Easy",
	}, []model.Question{{
		Position:      0,
		Text:          "The powerhouse of the cell is ___.",
		CorrectAnswer: "mitochondria",
		Type:          model.TypeFillBlank,
	}})
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}

	questions, err := s.GetExamQuestions(examID)
	if err != nil {
		t.Fatalf("GetExamQuestions: %v", err)
	}
	if len(questions[0].Options) != 0 {
		t.Errorf("fill_blank options = %v, want empty", questions[0].Options)
	}
}

func TestListExamsByUser(t *testing.T) {
	s := newTestStore(t)
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	first := createTestExam(t, s, alice, 2)
	second := createTestExam(t, s, alice, 2)
	createTestExam(t, s, bob, 2)

	exams, err := s.ListExamsByUser(alice)
	if err != nil {
		t.Fatalf("ListExamsByUser: %v", err)
	}
	if len(exams) != 2 {
		t.Fatalf("expected 2 exams for alice, got %d", len(exams))
	}
	// Newest first.
	if exams[0].ID != second || exams[1].ID != first {
		t.Errorf("exams ordered %d, %d; want %d, %d", exams[0].ID, exams[1].ID, second, first)
	}
}

func TestDeleteExamCascades(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "alice")
	examID := createTestExam(t, s, userID, 3)

	if _, err := s.CreateResult(context.Background(), model.ExamResult{
		ExamID: examID, UserID: userID, Score: 2, Total: 3,
		Answers: map[int64]model.AnswerValue{1: model.SingleAnswer("W")},
	}); err != nil {
		t.Fatalf("CreateResult: %v", err)
	}

	if err := s.DeleteExam(context.Background(), examID); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}

	if _, err := s.GetExam(examID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted exam still readable: %v", err)
	}
	questions, err := s.GetExamQuestions(examID)
	if err != nil {
		t.Fatalf("GetExamQuestions: %v", err)
	}
	if len(questions) != 0 {
		t.Errorf("expected cascade to remove questions, got %d", len(questions))
	}
	results, err := s.ListResults(examID, userID)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected cascade to remove results, got %d", len(results))
	}

	if err := s.DeleteExam(context.Background(), examID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestResults(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "alice")
	examID := createTestExam(t, s, userID, 2)

	answers := map[int64]model.AnswerValue{
		1: model.SingleAnswer("W"),
		2: model.MultiAnswer("B", "D"),
	}
	if _, err := s.CreateResult(context.Background(), model.ExamResult{
		ExamID: examID, UserID: userID, Score: 1, Total: 2, Answers: answers,
	}); err != nil {
		t.Fatalf("CreateResult: %v", err)
	}

	results, err := s.ListResults(examID, userID)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Score != 1 || r.Total != 2 {
		t.Errorf("Score/Total = %d/%d, want 1/2", r.Score, r.Total)
	}
	if !reflect.DeepEqual(r.Answers[2].Multi, []string{"B", "D"}) {
		t.Errorf("Answers[2] = %v, want [B D]", r.Answers[2])
	}
	if r.Answers[1].Single != "W" || r.Answers[1].IsList {
		t.Errorf("Answers[1] = %v, want single W", r.Answers[1])
	}
}

func TestGetExamView(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "alice")
	examID := createTestExam(t, s, userID, 3)

	view, err := s.GetExamView(examID)
	if err != nil {
		t.Fatalf("GetExamView: %v", err)
	}
	if view.Exam.ID != examID {
		t.Errorf("view.Exam.ID = %d, want %d", view.Exam.ID, examID)
	}
	if len(view.Questions) != 3 {
		t.Errorf("expected 3 questions, got %d", len(view.Questions))
	}
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.UserCount()
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	id := createTestUser(t, s, "alice")

	u, err := s.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("GetUserByUsername returned %v", u)
	}

	missing, err := s.GetUserByUsername("nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %v", missing)
	}

	if err := s.SetUserActive(id, false); err != nil {
		t.Fatalf("SetUserActive: %v", err)
	}
	u, err = s.GetUserByID(id)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u.Active {
		t.Error("user should be inactive")
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "alice")

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("GetAuthSession returned %v", sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess != nil {
		t.Error("deleted session still resolves")
	}
}

func TestExportUserExams(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "alice")

	if _, err := s.CreateExam(context.Background(), model.Exam{
		UserID: userID, Title: "T", Topic: "t", Difficulty: "Medium",
	}, []model.Question{{
		Position:      0,
		Text:          "Select all prime numbers.",
		Options:       []string{"2", "3", "4", "6"},
		CorrectAnswer: `["2","3"]`,
		Type:          model.TypeSelectAll,
	}}); err != nil {
		t.Fatalf("CreateExam: %v", err)
	}

	export, err := s.ExportUserExams("alice")
	if err != nil {
		t.Fatalf("ExportUserExams: %v", err)
	}
	if len(export.Exams) != 1 || len(export.Exams[0].Questions) != 1 {
		t.Fatalf("unexpected export shape: %+v", export)
	}
	q := export.Exams[0].Questions[0]
	if !q.CorrectAnswer.IsList || !reflect.DeepEqual(q.CorrectAnswer.Multi, []string{"2", "3"}) {
		t.Errorf("exported answer = %+v, want list [2 3]", q.CorrectAnswer)
	}

	if _, err := s.ExportUserExams("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ExportUserExams(nobody) error = %v, want ErrNotFound", err)
	}
}
