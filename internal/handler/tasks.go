package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lexplan/lexplan/internal/model"
	"github.com/lexplan/lexplan/internal/pagerange"
)

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var courseID int64
	if v := r.URL.Query().Get("course_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid course_id")
			return
		}
		courseID = id
	}

	tasks, err := h.store.ListTasks(courseID)
	if err != nil {
		slog.Error("list tasks", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t model.Task
	if err := decodeJSON(r, &t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(t.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if t.DueAt.IsZero() {
		respondError(w, http.StatusBadRequest, "due_at is required")
		return
	}
	if t.CourseID != 0 {
		course, err := h.store.GetCourse(t.CourseID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if course == nil {
			respondError(w, http.StatusBadRequest, "course does not exist")
			return
		}
	}

	id, err := h.store.CreateTask(t)
	if err != nil {
		slog.Error("create task", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	created, err := h.store.GetTask(id)
	if err != nil || created == nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "taskID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid task ID")
		return
	}
	t, err := h.store.GetTask(id)
	if err != nil {
		slog.Error("get task", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if t == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "taskID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid task ID")
		return
	}
	existing, err := h.store.GetTask(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	var t model.Task
	if err := decodeJSON(r, &t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(t.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	t.ID = id
	if err := h.store.UpdateTask(t); err != nil {
		slog.Error("update task", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	updated, err := h.store.GetTask(id)
	if err != nil || updated == nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "taskID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid task ID")
		return
	}
	existing, err := h.store.GetTask(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if err := h.store.DeleteTask(id); err != nil {
		slog.Error("delete task", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type logRequest struct {
	Minutes int    `json:"minutes"`
	Pages   string `json:"pages,omitempty"`
	Note    string `json:"note,omitempty"`
}

// handleLogTask records a work sitting against a task and reports what
// remains: total minutes logged and, for paged tasks, the pages not yet
// covered by any log.
func (h *Handler) handleLogTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "taskID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid task ID")
		return
	}
	task, err := h.store.GetTask(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	var req logRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Minutes <= 0 && strings.TrimSpace(req.Pages) == "" {
		respondError(w, http.StatusBadRequest, "minutes or pages required")
		return
	}

	logID, err := h.store.AddTimeLog(model.TimeLog{
		TaskID:  id,
		Minutes: req.Minutes,
		Pages:   req.Pages,
		Note:    req.Note,
	})
	if err != nil {
		slog.Error("add time log", "task_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	total, err := h.store.TotalLoggedMinutes(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := map[string]any{
		"log_id":        logID,
		"total_minutes": total,
	}
	if task.Pages != "" {
		remaining, err := h.remainingPages(task)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp["remaining_pages"] = remaining
	}
	respondJSON(w, http.StatusCreated, resp)
}

// remainingPages subtracts every logged page spec from the task's
// assigned pages.
func (h *Handler) remainingPages(task *model.Task) (string, error) {
	logs, err := h.store.ListTimeLogs(task.ID)
	if err != nil {
		return "", err
	}
	ranges := pagerange.ParseExtended(task.Pages)
	for _, l := range logs {
		if l.Pages == "" {
			continue
		}
		ranges = pagerange.Subtract(ranges, l.Pages)
	}
	return pagerange.Format(ranges), nil
}
