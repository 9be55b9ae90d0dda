package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lexplan/lexplan/internal/model"
	"github.com/lexplan/lexplan/internal/wizard"
)

// wizardOptions is the client-facing slice of wizard.Options. Missing
// fields fall back to stored settings, then engine defaults.
type wizardOptions struct {
	Timezone        string     `json:"timezone,omitempty"`
	MinutesPerPage  float64    `json:"minutes_per_page,omitempty"`
	ReferenceDate   *time.Time `json:"reference_date,omitempty"`
	HeadingFraction float64    `json:"heading_fraction,omitempty"`
}

func (h *Handler) engineOptions(o wizardOptions) wizard.Options {
	opts := wizard.Options{
		Timezone:        o.Timezone,
		MinutesPerPage:  o.MinutesPerPage,
		HeadingFraction: o.HeadingFraction,
	}
	if o.ReferenceDate != nil {
		opts.ReferenceDate = *o.ReferenceDate
	}
	if opts.Timezone == "" {
		tz, err := h.store.Timezone()
		if err != nil {
			slog.Error("load timezone setting", "error", err)
		}
		opts.Timezone = tz
	}
	if opts.MinutesPerPage <= 0 {
		mpp, err := h.store.MinutesPerPage()
		if err != nil {
			slog.Error("load minutes_per_page setting", "error", err)
		}
		opts.MinutesPerPage = mpp
	}
	return opts
}

type wizardTextRequest struct {
	Text       string        `json:"text"`
	CourseHint string        `json:"course_hint,omitempty"`
	Options    wizardOptions `json:"options,omitempty"`
}

func (h *Handler) handleWizardText(w http.ResponseWriter, r *http.Request) {
	var req wizardTextRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	preview := wizard.ExtractFromText(req.Text, req.CourseHint, h.engineOptions(req.Options))
	respondJSON(w, http.StatusOK, preview)
}

type wizardTableRequest struct {
	Rows    [][]string       `json:"rows"`
	Mapping *wizard.Mapping  `json:"mapping"`
	Options tableOptionsJSON `json:"options,omitempty"`
}

type tableOptionsJSON struct {
	Timezone       string             `json:"timezone,omitempty"`
	MinutesPerPage float64            `json:"minutes_per_page,omitempty"`
	CourseStart    *time.Time         `json:"course_start,omitempty"`
	CourseEnd      *time.Time         `json:"course_end,omitempty"`
	Course         *wizard.CourseMeta `json:"course,omitempty"`
}

func (h *Handler) handleWizardTable(w http.ResponseWriter, r *http.Request) {
	var req wizardTableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Rows) == 0 {
		respondError(w, http.StatusBadRequest, "rows are required")
		return
	}
	if req.Mapping == nil {
		respondError(w, http.StatusBadRequest, "column mapping is required")
		return
	}
	if req.Mapping.DateCol < 0 {
		respondError(w, http.StatusBadRequest, "date column must be mapped")
		return
	}
	if req.Mapping.TopicCol < 0 && req.Mapping.ReadingsCol < 0 && req.Mapping.AssignmentsCol < 0 {
		respondError(w, http.StatusBadRequest, "at least one content column must be mapped")
		return
	}

	base := h.engineOptions(wizardOptions{
		Timezone:       req.Options.Timezone,
		MinutesPerPage: req.Options.MinutesPerPage,
	})
	topts := wizard.TableOptions{
		Timezone:       base.Timezone,
		MinutesPerPage: base.MinutesPerPage,
		CourseStart:    req.Options.CourseStart,
		CourseEnd:      req.Options.CourseEnd,
		Course:         req.Options.Course,
	}

	preview := wizard.ExtractFromTableRows(req.Rows, *req.Mapping, topts)
	respondJSON(w, http.StatusOK, preview)
}

// commitRequest carries the human-reviewed import. Task session_id
// values reference sessions by slice index; the store rewires them to
// row IDs inside the commit transaction.
type commitRequest struct {
	ImportID string               `json:"import_id"`
	Course   model.Course         `json:"course"`
	Sessions []model.ClassSession `json:"sessions"`
	Tasks    []model.Task         `json:"tasks"`
}

func (h *Handler) handleWizardCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ImportID == "" {
		respondError(w, http.StatusBadRequest, "import_id is required")
		return
	}
	if req.Course.Code == "" && req.Course.Title == "" {
		respondError(w, http.StatusBadRequest, "course code or title is required")
		return
	}
	for _, t := range req.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			respondError(w, http.StatusBadRequest, "every task needs a title")
			return
		}
		if t.DueAt.IsZero() {
			respondError(w, http.StatusBadRequest, "every task needs a due date")
			return
		}
	}

	courseID, sessionIDs, taskIDs, err := h.store.CommitImport(req.Course, req.Sessions, req.Tasks)
	if err != nil {
		slog.Error("commit import", "import_id", req.ImportID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to commit import")
		return
	}

	slog.Info("committed wizard import",
		"import_id", req.ImportID,
		"course_id", courseID,
		"sessions", len(sessionIDs),
		"tasks", len(taskIDs))

	respondJSON(w, http.StatusCreated, map[string]any{
		"course_id":   courseID,
		"session_ids": sessionIDs,
		"task_ids":    taskIDs,
	})
}
