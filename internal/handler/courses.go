package handler

import (
	"log/slog"
	"net/http"

	"github.com/lexplan/lexplan/internal/ics"
	"github.com/lexplan/lexplan/internal/model"
)

func (h *Handler) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.store.ListCourses()
	if err != nil {
		slog.Error("list courses", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	respondJSON(w, http.StatusOK, courses)
}

func (h *Handler) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var c model.Course
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if c.Code == "" && c.Title == "" {
		respondError(w, http.StatusBadRequest, "course code or title is required")
		return
	}

	id, err := h.store.CreateCourse(c)
	if err != nil {
		slog.Error("create course", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	created, err := h.store.GetCourse(id)
	if err != nil || created == nil {
		slog.Error("load created course", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "courseID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}
	c, err := h.store.GetCourse(id)
	if err != nil {
		slog.Error("get course", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "course not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "courseID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}
	existing, err := h.store.GetCourse(id)
	if err != nil {
		slog.Error("get course", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "course not found")
		return
	}

	var c model.Course
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c.ID = id
	if err := h.store.UpdateCourse(c); err != nil {
		slog.Error("update course", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	updated, err := h.store.GetCourse(id)
	if err != nil || updated == nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "courseID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}
	existing, err := h.store.GetCourse(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "course not found")
		return
	}
	if err := h.store.DeleteCourse(id); err != nil {
		slog.Error("delete course", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleCourseCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "courseID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}
	course, err := h.store.GetCourse(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if course == nil {
		respondError(w, http.StatusNotFound, "course not found")
		return
	}
	sessions, err := h.store.ListClassSessions(id)
	if err != nil {
		slog.Error("list sessions", "course_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	tasks, err := h.store.ListTasks(id)
	if err != nil {
		slog.Error("list tasks", "course_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if _, err := w.Write([]byte(ics.Calendar(*course, sessions, tasks))); err != nil {
		slog.Error("write calendar", "error", err)
	}
}
