// Package handler exposes the exam generation pipeline and its stored
// exams over a JSON HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/examgen/internal/answers"
	appI18n "github.com/pavelanni/examgen/internal/i18n"
	"github.com/pavelanni/examgen/internal/llm"
	"github.com/pavelanni/examgen/internal/model"
	"github.com/pavelanni/examgen/internal/pipeline"
	"github.com/pavelanni/examgen/internal/store"
)

// maxUploadBytes caps one multipart generation request.
const maxUploadBytes = 32 << 20

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	pipeline *pipeline.Pipeline
	config   model.ServerConfig
}

// New creates a new Handler.
func New(s *store.Store, p *pipeline.Pipeline, cfg model.ServerConfig) *Handler {
	return &Handler{store: s, pipeline: p, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Post("/api/exams", h.handleGenerateExam)
		r.Get("/api/exams", h.handleListExams)
		r.Get("/api/exams/{examID}", h.handleGetExam)
		r.Delete("/api/exams/{examID}", h.handleDeleteExam)
		r.Post("/api/exams/{examID}/results", h.handleSubmitResult)
		r.Get("/api/exams/{examID}/results", h.handleListResults)

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(requireRole(model.UserRoleAdmin))
			r.Get("/users", h.handleListUsers)
			r.Post("/users", h.handleCreateUser)
			r.Post("/users/{userID}/active", h.handleSetUserActive)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, map[string]string{"error": appI18n.T(r.Context(), msgID)})
}

// handleGenerateExam accepts a multipart form with topic, difficulty,
// count, time_limit and text fields plus any number of uploads under
// "files", runs the generation pipeline, and returns the new exam's ID
// together with per-file extraction warnings.
func (h *Handler) handleGenerateExam(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	req := model.GenerationRequest{
		Topic:      r.FormValue("topic"),
		Difficulty: r.FormValue("difficulty"),
		Count:      model.DefaultQuestionCount,
		PastedText: r.FormValue("text"),
	}
	if v := r.FormValue("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "InvalidCount")
			return
		}
		req.Count = n
	}
	if v := r.FormValue("time_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "InvalidRequest")
			return
		}
		req.TimeLimit = n
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "InvalidRequest")
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "InvalidRequest")
				return
			}
			req.Documents = append(req.Documents, model.SourceDocument{
				Filename:  fh.Filename,
				MediaType: fh.Header.Get("Content-Type"),
				Data:      data,
			})
		}
	}

	result, err := h.pipeline.Run(r.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrInvalidCount):
			writeError(w, r, http.StatusBadRequest, "InvalidCount")
		case errors.Is(err, pipeline.ErrNoSourceMaterial):
			writeError(w, r, http.StatusBadRequest, "NoSourceMaterial")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Client went away; nothing useful to send.
		case errors.Is(err, llm.ErrSchemaViolation):
			slog.Error("generation produced invalid output", "user_id", user.ID, "error", err)
			writeError(w, r, http.StatusBadGateway, "GenerateFailed")
		default:
			slog.Error("exam generation failed", "user_id", user.ID, "error", err)
			writeError(w, r, http.StatusInternalServerError, "GenerateFailed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	exams, err := h.store.ListExamsByUser(user.ID)
	if err != nil {
		slog.Error("failed to list exams", "user_id", user.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	writeJSON(w, http.StatusOK, exams)
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	exam, ok := h.ownedExam(w, r)
	if !ok {
		return
	}

	view, err := h.store.GetExamView(exam.ID)
	if err != nil {
		slog.Error("failed to load exam", "exam_id", exam.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	exam, ok := h.ownedExam(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteExam(r.Context(), exam.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "ExamNotFound")
			return
		}
		slog.Error("failed to delete exam", "exam_id", exam.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	slog.Info("exam deleted", "exam_id", exam.ID, "user_id", model.UserFromContext(r.Context()).ID)
	w.WriteHeader(http.StatusNoContent)
}

type submitResultRequest struct {
	Answers map[int64]model.AnswerValue `json:"answers"`
}

// handleSubmitResult scores a submitted answer sheet against the stored
// correct answers and persists the result. Scoring happens server side;
// the stored answers never leave the database here.
func (h *Handler) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	exam, ok := h.ownedExam(w, r)
	if !ok {
		return
	}

	var req submitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	questions, err := h.store.GetExamQuestions(exam.ID)
	if err != nil {
		slog.Error("failed to load questions", "exam_id", exam.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	score := 0
	for _, q := range questions {
		correct, err := answers.Decode(q.Type, q.CorrectAnswer)
		if err != nil {
			slog.Error("stored answer unreadable", "question_id", q.ID, "error", err)
			writeError(w, r, http.StatusInternalServerError, "InternalError")
			return
		}
		submitted, answered := req.Answers[q.ID]
		if !answered {
			continue
		}
		if answerMatches(correct, submitted) {
			score++
		}
	}

	result := model.ExamResult{
		ExamID:  exam.ID,
		UserID:  user.ID,
		Score:   score,
		Total:   len(questions),
		Answers: req.Answers,
	}
	id, err := h.store.CreateResult(r.Context(), result)
	if err != nil {
		slog.Error("failed to save result", "exam_id", exam.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	result.ID = id

	slog.Info("result recorded", "exam_id", exam.ID, "user_id", user.ID, "score", score, "total", len(questions))
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	exam, ok := h.ownedExam(w, r)
	if !ok {
		return
	}

	results, err := h.store.ListResults(exam.ID, user.ID)
	if err != nil {
		slog.Error("failed to list results", "exam_id", exam.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// ownedExam loads the exam named in the URL and enforces ownership. A
// missing exam is 404; an exam owned by someone else is 403 so the
// caller learns it exists but is not theirs. Admins may access any exam.
func (h *Handler) ownedExam(w http.ResponseWriter, r *http.Request) (model.Exam, bool) {
	user := model.UserFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "examID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return model.Exam{}, false
	}

	exam, err := h.store.GetExam(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "ExamNotFound")
			return model.Exam{}, false
		}
		slog.Error("failed to load exam", "exam_id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return model.Exam{}, false
	}

	if exam.UserID != user.ID && user.Role != model.UserRoleAdmin {
		writeError(w, r, http.StatusForbidden, "Forbidden")
		return model.Exam{}, false
	}
	return exam, true
}

// answerMatches compares a submitted answer against the correct one.
// Single answers must match exactly; select-all answers are compared as
// unordered sets.
func answerMatches(correct, submitted model.AnswerValue) bool {
	if correct.IsList != submitted.IsList {
		return false
	}
	if !correct.IsList {
		return strings.TrimSpace(submitted.Single) == correct.Single
	}
	if len(correct.Multi) != len(submitted.Multi) {
		return false
	}
	a := append([]string(nil), correct.Multi...)
	b := append([]string(nil), submitted.Multi...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
