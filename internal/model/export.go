package model

// PlanExport is the top-level JSON structure for plan export.
type PlanExport struct {
	GeneratedAt string         `json:"generated_at"`
	Courses     []CourseExport `json:"courses"`
}

// CourseExport holds one course's schedule and tasks for export.
type CourseExport struct {
	Course   Course         `json:"course"`
	Sessions []ClassSession `json:"sessions"`
	Tasks    []TaskExport   `json:"tasks"`
}

// TaskExport augments a task with its logged-work totals.
type TaskExport struct {
	Task           Task   `json:"task"`
	LoggedMinutes  int    `json:"logged_minutes"`
	RemainingPages string `json:"remaining_pages,omitempty"`
}
