package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-chi/chi/v5"

	"github.com/lexplan/lexplan/internal/model"
	"github.com/lexplan/lexplan/internal/store"
)

type settingsResponse struct {
	MinutesPerPage float64 `json:"minutes_per_page"`
	Timezone       string  `json:"timezone"`
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	mpp, err := h.store.MinutesPerPage()
	if err != nil {
		slog.Error("load settings", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	tz, err := h.store.Timezone()
	if err != nil {
		slog.Error("load settings", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, settingsResponse{MinutesPerPage: mpp, Timezone: tz})
}

type settingsRequest struct {
	MinutesPerPage *float64 `json:"minutes_per_page,omitempty"`
	Timezone       *string  `json:"timezone,omitempty"`
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MinutesPerPage != nil {
		if *req.MinutesPerPage <= 0 {
			respondError(w, http.StatusBadRequest, "minutes_per_page must be positive")
			return
		}
		v := strconv.FormatFloat(*req.MinutesPerPage, 'f', -1, 64)
		if err := h.store.SetSetting(store.SettingMinutesPerPage, v); err != nil {
			slog.Error("save setting", "key", store.SettingMinutesPerPage, "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	if req.Timezone != nil {
		if err := h.store.SetSetting(store.SettingTimezone, *req.Timezone); err != nil {
			slog.Error("save setting", "key", store.SettingTimezone, "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	h.handleGetSettings(w, r)
}

// userResponse is the admin-facing view of an account; password hashes
// never leave the store layer.
type userResponse struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name"`
	Role        model.UserRole `json:"role"`
	Active      bool           `json:"active"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		slog.Error("list users", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Role:        u.Role,
			Active:      u.Active,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Password    string `json:"password"`
	Role        string `json:"role,omitempty"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}
	role := model.UserRole(req.Role)
	if role == "" {
		role = model.UserRoleStudent
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
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":       id,
		"username": req.Username,
		"role":     role,
	})
}

func (h *Handler) handleToggleUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.store.ToggleUserActive(id); err != nil {
		slog.Error("failed to toggle user active", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
