// Package wizard extracts structured study-plan entities (course
// metadata, class sessions, readings, deliverable tasks) from messy
// syllabus text or pasted tables. It is a best-effort heuristic
// classifier: output always goes through human review before anything
// is persisted, so low confidence is data, never an error.
package wizard

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceType categorizes where a reading comes from.
type SourceType string

const (
	SourceCasebook SourceType = "casebook"
	SourceArticle  SourceType = "article"
	SourceCase     SourceType = "case"
	SourceStatute  SourceType = "statute"
)

// Priority is a reading's importance level.
type Priority string

const (
	PriorityRequired Priority = "required"
	PriorityOptional Priority = "optional"
	PrioritySkim     Priority = "skim"
)

// TaskType classifies a deliverable.
type TaskType string

const (
	TaskReading TaskType = "reading"
	TaskBrief   TaskType = "brief"
	TaskMemo    TaskType = "memo"
	TaskQuiz    TaskType = "quiz"
	TaskExam    TaskType = "exam"
	TaskAdmin   TaskType = "admin"
)

// Scoring constants. Bonuses are additive and the result is clamped to
// [0,1]; a score below reviewThreshold lands in the low-confidence
// report.
const (
	baseSessionConfidence = 0.9
	baseReadingConfidence = 0.8
	baseTaskConfidence    = 0.75
	pagesBonus            = 0.1
	bulletBonus           = 0.05
	dueTimeBonus          = 0.1
	reviewThreshold       = 0.8
)

const (
	defaultMinutesPerPage  = 3.0
	defaultHeadingFraction = 0.3
	defaultMeetingStart    = "09:00"
	minEstimateMinutes     = 10
	maxEstimateMinutes     = 480
	maxTopicLen            = 120
	maxTitleLen            = 160
	maxCellTitleLen        = 120
)

// MeetingBlock is one recurring meeting slot of a course.
type MeetingBlock struct {
	Days     []time.Weekday `json:"days"`
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Location string         `json:"location,omitempty"`
}

// CourseMeta holds best-effort course identity fields. Every field is
// optional; absence is a valid and common state.
type CourseMeta struct {
	Code            string         `json:"code,omitempty"`
	Title           string         `json:"title,omitempty"`
	Instructor      string         `json:"instructor,omitempty"`
	InstructorEmail string         `json:"instructor_email,omitempty"`
	Room            string         `json:"room,omitempty"`
	MeetingDays     []time.Weekday `json:"meeting_days,omitempty"`
	MeetingStart    string         `json:"meeting_start,omitempty"`
	MeetingEnd      string         `json:"meeting_end,omitempty"`
	Meetings        []MeetingBlock `json:"meetings,omitempty"`
	StartDate       *time.Time     `json:"start_date,omitempty"`
	EndDate         *time.Time     `json:"end_date,omitempty"`
	Semester        string         `json:"semester,omitempty"`
	Year            int            `json:"year,omitempty"`
}

// Session is one class meeting (or table row group) discovered in the
// document. A given date maps to at most one session.
type Session struct {
	Date           time.Time `json:"date"`
	SequenceNumber int       `json:"sequence_number"`
	Topic          string    `json:"topic,omitempty"`
	Readings       []Reading `json:"readings"`
	AssignmentsDue []Task    `json:"assignments_due"`
	Notes          string    `json:"notes,omitempty"`
	Canceled       bool      `json:"canceled"`
	SourceRef      string    `json:"source_ref"`
	Confidence     float64   `json:"confidence"`
}

// Reading is a single assigned reading item.
type Reading struct {
	SourceType SourceType `json:"source_type"`
	ShortTitle string     `json:"short_title"`
	Pages      string     `json:"pages,omitempty"`
	Priority   Priority   `json:"priority"`
	SourceRef  string     `json:"source_ref"`
	Confidence float64    `json:"confidence"`
}

// Task is a single deliverable extracted for scheduling. Status is
// always "planned" at extraction time; the review UI assigns
// confirmed/edited states later.
type Task struct {
	Type             TaskType  `json:"type"`
	Title            string    `json:"title"`
	DueAt            time.Time `json:"due_at"`
	EstimatedMinutes *int      `json:"estimated_minutes,omitempty"`
	Blocking         bool      `json:"blocking"`
	SourceRef        string    `json:"source_ref"`
	Status           string    `json:"status"`
	Confidence       float64   `json:"confidence"`
}

// LowConfidenceEntry flags an entity below the review threshold.
type LowConfidenceEntry struct {
	Kind       string  `json:"kind"`
	Ref        string  `json:"ref"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// Preview is the immutable output bundle handed to the review layer.
type Preview struct {
	ImportID      string               `json:"import_id"`
	Course        *CourseMeta          `json:"course"`
	Sessions      []Session            `json:"sessions"`
	Readings      []Reading            `json:"readings"`
	Tasks         []Task               `json:"tasks"`
	LowConfidence []LowConfidenceEntry `json:"low_confidence"`
}

// TablePreview is the table-mode output. The course is not re-derived
// in table mode; the caller supplies course context.
type TablePreview struct {
	ImportID      string               `json:"import_id"`
	Sessions      []Session            `json:"sessions"`
	Readings      []Reading            `json:"readings"`
	Tasks         []Task               `json:"tasks"`
	LowConfidence []LowConfidenceEntry `json:"low_confidence"`
}

// Options configures a single extraction call. Callers supply it per
// invocation; the engine keeps no process-global state.
type Options struct {
	// Timezone is an IANA zone name; empty means UTC.
	Timezone string
	// MinutesPerPage scales page counts into minute estimates (default 3).
	MinutesPerPage float64
	// ReferenceDate anchors relative and year-less date phrases.
	// Zero means the current time.
	ReferenceDate time.Time
	// HeadingFraction overrides the matched-date-fraction threshold
	// that separates pure date headings from dates embedded in content.
	// Zero means the default (0.3).
	HeadingFraction float64
}

func (o Options) withDefaults() Options {
	if o.MinutesPerPage <= 0 {
		o.MinutesPerPage = defaultMinutesPerPage
	}
	if o.HeadingFraction <= 0 {
		o.HeadingFraction = defaultHeadingFraction
	}
	if o.ReferenceDate.IsZero() {
		o.ReferenceDate = time.Now()
	}
	return o
}

func (o Options) location() *time.Location {
	if o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ExtractFromText runs the full pipeline over freeform syllabus text:
// an independent course-meta pass, then the session aligner, then
// entity extraction per session. Any string is processable; unusable
// input yields an empty preview, never an error.
func ExtractFromText(rawText string, courseHint string, opts Options) *Preview {
	opts = opts.withDefaults()
	loc := opts.location()

	res := newDateResolver(opts.ReferenceDate, loc)
	meta := extractCourseMeta(rawText, res)
	if meta != nil && meta.StartDate != nil {
		res = newDateResolver(*meta.StartDate, loc)
	}
	applyCourseHint(meta, courseHint)
	if meta == nil && courseHint != "" {
		meta = extractCourseMeta(courseHint, res)
	}

	a := newAligner(res, meta, opts, maxTitleLen)
	sessions := a.run(splitLines(rawText))

	p := assemble(meta, sessions)
	p.ImportID = uuid.NewString()
	return p
}

// applyCourseHint fills missing code/title from a caller-provided hint
// such as "CIV 101 Civil Procedure".
func applyCourseHint(meta *CourseMeta, hint string) {
	if meta == nil || hint == "" {
		return
	}
	if meta.Code == "" {
		meta.Code = courseCodeRe.FindString(hint)
	}
	if meta.Title == "" {
		title := courseCodeRe.ReplaceAllString(hint, "")
		meta.Title = truncate(trimSeparators(title), maxTitleLen)
	}
}

func assemble(meta *CourseMeta, sessions []Session) *Preview {
	p := &Preview{
		Course:   meta,
		Sessions: sessions,
	}
	for _, s := range sessions {
		p.Readings = append(p.Readings, s.Readings...)
		p.Tasks = append(p.Tasks, s.AssignmentsDue...)
		if s.Confidence < reviewThreshold {
			p.LowConfidence = append(p.LowConfidence, LowConfidenceEntry{
				Kind: "session", Ref: s.SourceRef, Confidence: s.Confidence,
			})
		}
		for _, r := range s.Readings {
			if r.Confidence < reviewThreshold {
				p.LowConfidence = append(p.LowConfidence, LowConfidenceEntry{
					Kind: "reading", Ref: r.SourceRef, Confidence: r.Confidence,
				})
			}
		}
		for _, t := range s.AssignmentsDue {
			if t.Confidence < reviewThreshold {
				p.LowConfidence = append(p.LowConfidence, LowConfidenceEntry{
					Kind: "task", Ref: t.SourceRef, Confidence: t.Confidence,
				})
			}
		}
	}
	if meta == nil || len(meta.MeetingDays) == 0 || meta.MeetingStart == "" {
		p.LowConfidence = append(p.LowConfidence, LowConfidenceEntry{
			Kind:   "course",
			Reason: "meeting days or start time not detected",
		})
	}
	return p
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
