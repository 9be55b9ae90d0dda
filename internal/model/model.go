// Package model holds the persisted planner domain and request-context
// helpers shared by the store and HTTP layers.
package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent is a regular planner user.
	UserRoleStudent UserRole = "student"
	// UserRoleAdmin is an admin user role.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// TaskStatus represents where a task sits in its lifecycle.
type TaskStatus string

const (
	StatusPlanned    TaskStatus = "planned"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Course is a persisted course. Meeting days are stored as weekday
// numbers (time.Weekday) so schedule math needs no re-parsing.
type Course struct {
	ID              int64          `json:"id"`
	Code            string         `json:"code"`
	Title           string         `json:"title"`
	Instructor      string         `json:"instructor,omitempty"`
	InstructorEmail string         `json:"instructor_email,omitempty"`
	Room            string         `json:"room,omitempty"`
	Semester        string         `json:"semester,omitempty"`
	Year            int            `json:"year,omitempty"`
	MeetingDays     []time.Weekday `json:"meeting_days,omitempty"`
	MeetingStart    string         `json:"meeting_start,omitempty"`
	MeetingEnd      string         `json:"meeting_end,omitempty"`
	StartDate       *time.Time     `json:"start_date,omitempty"`
	EndDate         *time.Time     `json:"end_date,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ClassSession is one scheduled class meeting of a course.
type ClassSession struct {
	ID             int64     `json:"id"`
	CourseID       int64     `json:"course_id"`
	Date           time.Time `json:"date"`
	SequenceNumber int       `json:"sequence_number"`
	Topic          string    `json:"topic,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Canceled       bool      `json:"canceled"`
}

// Task is a persisted deliverable: a reading, a brief, a memo, an exam
// or plain administrative work, scheduled against a due date-time.
type Task struct {
	ID               int64      `json:"id"`
	CourseID         int64      `json:"course_id"`
	SessionID        *int64     `json:"session_id,omitempty"`
	Type             string     `json:"type"`
	Title            string     `json:"title"`
	Details          string     `json:"details,omitempty"`
	DueAt            time.Time  `json:"due_at"`
	EstimatedMinutes *int       `json:"estimated_minutes,omitempty"`
	Pages            string     `json:"pages,omitempty"`
	Priority         string     `json:"priority,omitempty"`
	Blocking         bool       `json:"blocking"`
	Status           TaskStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TimeLog records work done against a task. Pages holds the page spec
// covered during the sitting ("21-30"), used to compute what remains.
type TimeLog struct {
	ID       int64     `json:"id"`
	TaskID   int64     `json:"task_id"`
	Minutes  int       `json:"minutes"`
	Pages    string    `json:"pages,omitempty"`
	Note     string    `json:"note,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	Addr          string // listen address for the HTTP server
	DBPath        string
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	Timezone      string // default IANA zone for wizard extraction
}
