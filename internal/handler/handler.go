package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lexplan/lexplan/internal/model"
	"github.com/lexplan/lexplan/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	config model.AppConfig
}

// New creates a new Handler.
func New(s *store.Store, cfg model.AppConfig) *Handler {
	return &Handler{store: s, config: cfg}
}

// Routes registers all HTTP routes. Everything except login requires a
// valid session cookie.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Post("/api/logout", h.handleLogout)

		r.Post("/api/wizard/text", h.handleWizardText)
		r.Post("/api/wizard/table", h.handleWizardTable)
		r.Post("/api/wizard/commit", h.handleWizardCommit)

		r.Get("/api/courses", h.handleListCourses)
		r.Post("/api/courses", h.handleCreateCourse)
		r.Get("/api/courses/{courseID}", h.handleGetCourse)
		r.Put("/api/courses/{courseID}", h.handleUpdateCourse)
		r.Delete("/api/courses/{courseID}", h.handleDeleteCourse)
		r.Get("/api/courses/{courseID}/calendar.ics", h.handleCourseCalendar)

		r.Get("/api/tasks", h.handleListTasks)
		r.Post("/api/tasks", h.handleCreateTask)
		r.Get("/api/tasks/{taskID}", h.handleGetTask)
		r.Put("/api/tasks/{taskID}", h.handleUpdateTask)
		r.Delete("/api/tasks/{taskID}", h.handleDeleteTask)
		r.Post("/api/tasks/{taskID}/log", h.handleLogTask)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.UserRoleAdmin))
			r.Get("/api/settings", h.handleGetSettings)
			r.Put("/api/settings", h.handleUpdateSettings)
			r.Get("/api/users", h.handleListUsers)
			r.Post("/api/users", h.handleCreateUser)
			r.Post("/api/users/{userID}/toggle", h.handleToggleUserActive)
		})
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON parses a request body, rejecting unknown fields so client
// typos surface as 400s instead of silently dropped data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
