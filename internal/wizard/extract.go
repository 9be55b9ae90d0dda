package wizard

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lexplan/lexplan/internal/pagerange"
)

var (
	deliverableRe = regexp.MustCompile(`(?i)\b(due|submit|turn in|upload|briefs?|memos?|quiz(zes)?|exams?|finals?|midterms?|start of class|at class|by class time)\b|11\s*:\s*59`)
	readingLikeRe = regexp.MustCompile(`(?i)\b(read(ing)?s?|casebooks?|articles?|chapters?|ch\.|pp?\.)\b|§`)

	startClassRe = regexp.MustCompile(`(?i)\b(start of class|beginning of class|at class|by class(?: time)?|before class)\b`)
	endOfDayRe   = regexp.MustCompile(`(?i)\b(end of day|eod|midnight)\b|11\s*:\s*59`)
	blockingRe   = regexp.MustCompile(`(?i)\b(must|required|block(s|ing)?)\b`)

	caseNameRe = regexp.MustCompile(`\b[A-Z][A-Za-z.'-]*\s+v\.?\s+[A-Z]`)
	statuteRe  = regexp.MustCompile(`(?i)\bstatutes?\b|\bU\.?S\.?C\.?\b`)
	articleRe  = regexp.MustCompile(`(?i)\b(articles?|journal)\b`)

	prefixedPagesRe = regexp.MustCompile(`(?i)(?:\bpp?\.|\bpages?\s|§§?)\s*[\divxlcdm][\divxlcdm\s,;–—-]*`)
	bareRangeRe     = regexp.MustCompile(`\b\d+\s*[-–—]\s*\d+(?:\s*[,;]\s*\d+(?:\s*[-–—]\s*\d+)?)*`)
	letterRangeRe   = regexp.MustCompile(`\b([A-Za-z]{1,2})(\d+)\s*[-–—]\s*([A-Za-z]{1,2})(\d+)\b`)
	romanRangeRe    = regexp.MustCompile(`(?i)\b([ivxlcdm]{1,7})\s*[-–—]\s*([ivxlcdm]{1,7})\b`)
	pagesMentionRe  = regexp.MustCompile(`(?i)\b(\d+)\s+pages?\b`)

	readPrefixRe = regexp.MustCompile(`(?i)^read(ing)?s?:?\s+`)
	onlineRe     = regexp.MustCompile(`(?i)\b(online|zoom|remote|asynchronous)\b`)
)

// extractor turns content lines or cells into Reading and Task
// entities within a session's scope.
type extractor struct {
	meta           *CourseMeta
	minutesPerPage float64
	loc            *time.Location
	maxTitle       int
}

// extract splits a content line into parts and appends the resulting
// readings and tasks to the owning session.
func (e *extractor) extract(line, ref string, s *Session) {
	isBullet := bulletRe.MatchString(line)
	parts := splitParts(line)
	single := len(parts) == 1
	if !single {
		if kept := filterTaskLike(parts); len(kept) > 0 {
			parts = kept
		}
	}
	for _, part := range parts {
		pcls := classify(part)
		pcls.IsBullet = pcls.IsBullet || isBullet
		if deliverableRe.MatchString(part) {
			s.AssignmentsDue = append(s.AssignmentsDue, e.task(part, ref, s.Date, pcls))
			continue
		}
		if single || readingLike(part, pcls) {
			s.Readings = append(s.Readings, e.reading(part, ref, pcls))
			// Readings are also scheduled as planned work items so the
			// planner can estimate and track them.
			s.AssignmentsDue = append(s.AssignmentsDue, e.task(part, ref, s.Date, pcls))
		}
	}
	if onlineRe.MatchString(line) {
		appendNote(s, strings.TrimSpace(onlineRe.FindString(line))+" class")
	}
}

// splitParts breaks a multi-item line on semicolons and bullet glyphs.
// If that yields a single part, a conjunction split on " and "/" & " is
// attempted, but only when both halves independently look like tasks.
func splitParts(line string) []string {
	var parts []string
	for _, seg := range strings.FieldsFunc(line, func(r rune) bool { return r == ';' || r == '•' }) {
		seg = stripBullet(seg)
		if strings.TrimSpace(seg) != "" {
			parts = append(parts, strings.TrimSpace(seg))
		}
	}
	if len(parts) != 1 {
		return parts
	}
	for _, conj := range []string{" and ", " & "} {
		if i := strings.Index(strings.ToLower(parts[0]), conj); i > 0 {
			left := strings.TrimSpace(parts[0][:i])
			right := strings.TrimSpace(parts[0][i+len(conj):])
			if taskLike(left) && taskLike(right) {
				return []string{left, right}
			}
		}
	}
	return parts
}

func filterTaskLike(parts []string) []string {
	var kept []string
	for _, p := range parts {
		if taskLike(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// taskLike reports whether a fragment can stand alone as a task: it
// carries a task keyword, a page reference, or a numeric dash-range.
func taskLike(part string) bool {
	return taskKeywordRe.MatchString(part) || pageSpec(part) != "" || bareRangeRe.MatchString(part)
}

func readingLike(part string, cls lineClass) bool {
	return readingLikeRe.MatchString(part) || pageSpec(part) != "" || cls.IsBullet
}

func (e *extractor) reading(part, ref string, cls lineClass) Reading {
	pages := pageSpec(part)
	conf := baseReadingConfidence
	if pages != "" {
		conf += pagesBonus
	}
	if cls.IsBullet {
		conf += bulletBonus
	}
	return Reading{
		SourceType: sourceTypeOf(part),
		ShortTitle: cleanTitle(part, e.maxTitle),
		Pages:      pages,
		Priority:   cls.Priority,
		SourceRef:  ref,
		Confidence: clamp01(conf),
	}
}

func (e *extractor) task(part, ref string, date time.Time, cls lineClass) Task {
	due, explicit := e.dueTime(part, date)
	conf := baseTaskConfidence
	if explicit {
		conf += dueTimeBonus
	}
	return Task{
		Type:             cls.TaskType,
		Title:            cleanTitle(part, e.maxTitle),
		DueAt:            due,
		EstimatedMinutes: e.estimateMinutes(part),
		Blocking:         blockingRe.MatchString(part),
		SourceRef:        ref,
		Status:           "planned",
		Confidence:       clamp01(conf),
	}
}

// dueTime resolves the due time-of-day for a task phrase. "Start of
// class" phrases use the course meeting start time, end-of-day phrases
// use 23:59, anything else falls back to the meeting-start default.
// The boolean reports whether the phrase was explicitly recognized.
func (e *extractor) dueTime(part string, date time.Time) (time.Time, bool) {
	switch {
	case startClassRe.MatchString(part):
		return atTime(date, e.meetingStart(), e.loc), true
	case endOfDayRe.MatchString(part):
		return atTime(date, "23:59", e.loc), true
	default:
		return atTime(date, e.meetingStart(), e.loc), false
	}
}

func (e *extractor) meetingStart() string {
	if e.meta != nil && e.meta.MeetingStart != "" {
		return e.meta.MeetingStart
	}
	return defaultMeetingStart
}

func atTime(date time.Time, hhmm string, loc *time.Location) time.Time {
	h, m := 9, 0
	if parts := strings.SplitN(hhmm, ":", 2); len(parts) == 2 {
		if v, err := strconv.Atoi(parts[0]); err == nil {
			h = v
		}
		if v, err := strconv.Atoi(parts[1]); err == nil {
			m = v
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc)
}

// estimateMinutes derives a minute estimate from page signals when
// present, clamped to [10, 480]; otherwise falls back to fixed
// keyword-based estimates. Returns nil when nothing is derivable.
func (e *extractor) estimateMinutes(part string) *int {
	if pages := pageCount(part); pages > 0 {
		est := pagerange.EstimateMinutes(pages, e.minutesPerPage)
		if est < minEstimateMinutes {
			est = minEstimateMinutes
		}
		if est > maxEstimateMinutes {
			est = maxEstimateMinutes
		}
		return &est
	}
	if est, ok := keywordEstimate(part); ok {
		return &est
	}
	return nil
}

// pageCount totals pages across every page signal in the fragment:
// explicit and bare numeric ranges, letter-prefixed ranges, roman
// ranges, and "N pages" mentions.
func pageCount(part string) int {
	total := 0
	if spec := pageSpec(part); spec != "" {
		total += pagerange.Count(pagerange.ParseExtended(spec))
	}
	for _, m := range letterRangeRe.FindAllStringSubmatch(part, -1) {
		if !strings.EqualFold(m[1], m[3]) {
			continue
		}
		start, _ := strconv.Atoi(m[2])
		end, _ := strconv.Atoi(m[4])
		if end >= start {
			total += end - start + 1
		}
	}
	for _, m := range romanRangeRe.FindAllStringSubmatch(part, -1) {
		start, ok1 := pagerange.RomanToInt(m[1])
		end, ok2 := pagerange.RomanToInt(m[2])
		if ok1 && ok2 && start <= end && end <= 500 {
			total += end - start + 1
		}
	}
	for _, m := range pagesMentionRe.FindAllStringSubmatch(part, -1) {
		n, _ := strconv.Atoi(m[1])
		total += n
	}
	return total
}

// keywordEstimate is the fixed fallback table, checked in order.
func keywordEstimate(part string) (int, bool) {
	l := strings.ToLower(part)
	switch {
	case briefKeyRe.MatchString(l) && caseKeyRe.MatchString(l):
		return 60, true
	case briefKeyRe.MatchString(l):
		return 45, true
	case memoRe.MatchString(l):
		return 180, true
	case strings.Contains(l, "outline"):
		return 90, true
	case quizRe.MatchString(l):
		return 30, true
	case examRe.MatchString(l):
		return 180, true
	case strings.Contains(l, "paper"):
		return 180, true
	case strings.Contains(l, "discussion"):
		return 30, true
	case strings.Contains(l, "assignment"):
		return 90, true
	case strings.Contains(l, "chapter") || strings.Contains(l, "ch."):
		return 60, true
	}
	return 0, false
}

// pageSpec returns the raw matched page/section reference in the
// fragment, or "" when none is present.
func pageSpec(part string) string {
	m := prefixedPagesRe.FindString(part)
	if m == "" {
		m = bareRangeRe.FindString(part)
	}
	return strings.Trim(m, " \t,;–—-")
}

func sourceTypeOf(part string) SourceType {
	switch {
	case caseKeyRe.MatchString(part) || caseNameRe.MatchString(part):
		return SourceCase
	case statuteRe.MatchString(part):
		return SourceStatute
	case articleRe.MatchString(part):
		return SourceArticle
	default:
		return SourceCasebook
	}
}

func cleanTitle(part string, max int) string {
	t := stripBullet(part)
	t = readPrefixRe.ReplaceAllString(t, "")
	return truncate(trimSeparators(t), max)
}

func trimSeparators(s string) string {
	return strings.Trim(s, " \t-–—:;,.")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func appendNote(s *Session, note string) {
	if s.Notes == "" {
		s.Notes = note
		return
	}
	if !strings.Contains(s.Notes, note) {
		s.Notes += "; " + note
	}
}
