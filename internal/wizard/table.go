package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mapping names the column indices of a pasted table.
type Mapping struct {
	DateCol        int `json:"date_col"`
	TopicCol       int `json:"topic_col"`
	ReadingsCol    int `json:"readings_col"`
	AssignmentsCol int `json:"assignments_col"`
}

// TableOptions configures a table-mode extraction. The course is never
// re-derived from the table; callers pass whatever context they have.
type TableOptions struct {
	Timezone       string
	MinutesPerPage float64
	CourseStart    *time.Time
	CourseEnd      *time.Time
	Course         *CourseMeta
}

// Syllabus front-matter that leaks into table extracts (instructor
// contact blocks and the like) is not a session.
var boilerplateRe = regexp.MustCompile(`(?i)\b(professor|instructor|suite|office|email|phone)\b`)

// ExtractFromTableRows maps pre-split tabular rows through the same
// classifier and extractor as the freeform flow. Rows without their own
// date inherit the most recently seen one (carry-forward), so a session
// may span several rows.
func ExtractFromTableRows(rows [][]string, mapping Mapping, opts TableOptions) *TablePreview {
	wopts := Options{
		Timezone:       opts.Timezone,
		MinutesPerPage: opts.MinutesPerPage,
	}
	if opts.CourseStart != nil {
		wopts.ReferenceDate = *opts.CourseStart
	}
	wopts = wopts.withDefaults()
	loc := wopts.location()

	res := newDateResolver(wopts.ReferenceDate, loc)
	a := newAligner(res, opts.Course, wopts, maxCellTitleLen)

	for i, row := range rows {
		ref := fmt.Sprintf("row:%d", i+1)
		dateCell := cell(row, mapping.DateCol)
		topicCell := cell(row, mapping.TopicCol)
		readingsCell := cell(row, mapping.ReadingsCol)
		assignCell := cell(row, mapping.AssignmentsCol)

		joined := joinCells(dateCell, topicCell, readingsCell, assignCell)
		if joined == "" {
			continue
		}
		if boilerplateRe.MatchString(joined) {
			continue
		}

		// Date column first, then a fallback scan across all mapped cells.
		dm, ok := res.resolve(dateCell)
		if !ok {
			dm, ok = res.resolve(joined)
		}
		// Dates outside the course window are noise (edition years,
		// stray citations); treat them as no date at all.
		if ok && !withinWindow(dm.date, opts.CourseStart, opts.CourseEnd) {
			ok = false
		}
		switch {
		case ok:
			a.current = dm.date
		case !a.current.IsZero():
			// carry-forward: attach to the prior row's session
		default:
			continue
		}

		s := a.ensure(a.current, ref)
		if adminRe.MatchString(joined) {
			s.Canceled = true
		}

		if tcls := classify(topicCell); topicCell != "" && s.Topic == "" &&
			!tcls.HasTaskKeyword && !tcls.IsAdmin {
			s.Topic = truncate(trimSeparators(topicCell), maxTopicLen)
		}
		if onlineRe.MatchString(joined) {
			appendNote(s, strings.TrimSpace(onlineRe.FindString(joined))+" class")
		}

		// Some layouts merge readings or assignments into one
		// descriptive column; fall back to the topic cell when the
		// dedicated column is empty but the topic looks like content.
		if readingsCell == "" && readingLike(topicCell, classify(topicCell)) {
			readingsCell = topicCell
		}
		if assignCell == "" && deliverableRe.MatchString(topicCell) {
			assignCell = topicCell
		}

		if readingsCell != "" && !adminRe.MatchString(readingsCell) {
			a.ext.extract(readingsCell, ref, s)
		}
		if assignCell != "" && assignCell != readingsCell && !adminRe.MatchString(assignCell) {
			a.ext.extract(assignCell, ref, s)
		}
	}

	sessions := make([]Session, 0, len(a.order))
	for _, s := range a.order {
		sessions = append(sessions, *s)
	}

	p := assemble(nil, sessions)
	return &TablePreview{
		ImportID:      uuid.NewString(),
		Sessions:      p.Sessions,
		Readings:      p.Readings,
		Tasks:         p.Tasks,
		LowConfidence: trimCourseEntry(p.LowConfidence),
	}
}

func withinWindow(d time.Time, start, end *time.Time) bool {
	if start != nil && d.Before(*start) {
		return false
	}
	if end != nil && d.After(*end) {
		return false
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func joinCells(cells ...string) string {
	var nonEmpty []string
	for _, c := range cells {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	return strings.Join(nonEmpty, " | ")
}

// trimCourseEntry drops the course-level low-confidence entry, which
// does not apply in table mode (no course is derived there).
func trimCourseEntry(entries []LowConfidenceEntry) []LowConfidenceEntry {
	var out []LowConfidenceEntry
	for _, e := range entries {
		if e.Kind != "course" {
			out = append(out, e)
		}
	}
	return out
}
