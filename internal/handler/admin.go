package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-chi/chi/v5"
	"github.com/pavelanni/examgen/internal/model"
)

// userView is the user shape sent over the API. It never carries the
// password hash.
type userView struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name"`
	Role        model.UserRole `json:"role"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
}

func userResponse(u *model.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
	}
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		slog.Error("failed to list users", "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, userResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

type createUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	role := model.UserRole(req.Role)
	if req.Role == "" {
		role = model.UserRoleStudent
	}
	if role != model.UserRoleStudent && role != model.UserRoleAdmin {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	existing, err := h.store.GetUserByUsername(req.Username)
	if err != nil {
		slog.Error("failed to check username", "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if existing != nil {
		writeError(w, r, http.StatusConflict, "UserExists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	id, err := h.store.CreateUser(model.User{
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		slog.Error("failed to create user", "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	user, err := h.store.GetUserByID(id)
	if err != nil || user == nil {
		slog.Error("failed to load created user", "id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	slog.Info("user created", "id", id, "username", req.Username, "role", role)
	writeJSON(w, http.StatusCreated, userResponse(user))
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) handleSetUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	user, err := h.store.GetUserByID(id)
	if err != nil {
		slog.Error("failed to load user", "id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if user == nil {
		writeError(w, r, http.StatusNotFound, "UserNotFound")
		return
	}

	if err := h.store.SetUserActive(id, req.Active); err != nil {
		slog.Error("failed to update user", "id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	slog.Info("user active flag updated", "id", id, "active", req.Active)
	w.WriteHeader(http.StatusNoContent)
}
