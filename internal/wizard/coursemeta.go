package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	courseCodeRe = regexp.MustCompile(`\b[A-Z]{2,5}\s?\d{3,4}[A-Z]?\b`)
	instructorRe = regexp.MustCompile(`(?i)\b(?:professor|prof\.?|instructor)\s*[:,]?\s+((?:[A-Z][A-Za-z.'-]+\s?){1,3})`)
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	roomRe       = regexp.MustCompile(`(?i)\b(?:room|rm\.?|suite|hall)\s*[:#]?\s*([A-Za-z]?\d+[A-Za-z]?)`)
	semesterRe   = regexp.MustCompile(`(?i)\b(fall|spring|summer|winter)\s+(\d{4})\b`)
	timeRangeRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:-|–|—|to)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	termStartRe  = regexp.MustCompile(`(?i)\b(?:classes?|term|semester|course)\s+(?:begins?|starts?)\b`)
	termEndRe    = regexp.MustCompile(`(?i)\b(?:classes?|term|semester|course)\s+(?:ends?|concludes?)\b|\blast (?:day of )?class\b`)

	dayTokens = []struct {
		re  *regexp.Regexp
		day time.Weekday
	}{
		{regexp.MustCompile(`(?i)\b(?:mondays?|mon\.?)\b`), time.Monday},
		{regexp.MustCompile(`(?i)\b(?:tuesdays?|tues?\.?)\b`), time.Tuesday},
		{regexp.MustCompile(`(?i)\b(?:wednesdays?|wed\.?)\b`), time.Wednesday},
		{regexp.MustCompile(`(?i)\b(?:thursdays?|thurs?\.?)\b`), time.Thursday},
		{regexp.MustCompile(`(?i)\b(?:fridays?|fri\.?)\b`), time.Friday},
		{regexp.MustCompile(`(?i)\b(?:saturdays?|sat\.?)\b`), time.Saturday},
		{regexp.MustCompile(`(?i)\b(?:sundays?|sun\.?)\b`), time.Sunday},
	}

	compactDays = map[string][]time.Weekday{
		"MWF":  {time.Monday, time.Wednesday, time.Friday},
		"MW":   {time.Monday, time.Wednesday},
		"TTH":  {time.Tuesday, time.Thursday},
		"TR":   {time.Tuesday, time.Thursday},
		"MTWF": {time.Monday, time.Tuesday, time.Wednesday, time.Friday},
	}
	// "TTh" is common registrar styling; plain day words stay
	// case-sensitive so prose like "with" never reads as W.
	compactDaysRe = regexp.MustCompile(`\b(MWF|MW|TTH|TTh|TR|MTWF)\b`)
)

// extractCourseMeta is a best-effort pass over the whole document for
// course-level fields, independent of session alignment. It never
// fails hard: any internal panic reports absence (nil) so callers can
// proceed with session extraction regardless.
func extractCourseMeta(text string, res *dateResolver) (meta *CourseMeta) {
	defer func() {
		if recover() != nil {
			meta = nil
		}
	}()

	m := &CourseMeta{}
	lines := splitLines(text)
	if len(lines) > 60 {
		lines = lines[:60]
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m.Code == "" {
			if code := courseCodeRe.FindString(line); code != "" {
				m.Code = code
				if m.Title == "" {
					rest := trimSeparators(strings.Replace(line, code, "", 1))
					if rest != "" && len(rest) < 80 {
						m.Title = rest
					}
				}
			}
		}
		if m.Instructor == "" {
			if im := instructorRe.FindStringSubmatch(line); im != nil {
				m.Instructor = strings.TrimSpace(im[1])
			}
		}
		if m.InstructorEmail == "" {
			m.InstructorEmail = emailRe.FindString(line)
		}
		if m.Room == "" {
			if rm := roomRe.FindStringSubmatch(line); rm != nil {
				m.Room = rm[1]
			}
		}
		if m.Semester == "" {
			if sm := semesterRe.FindStringSubmatch(line); sm != nil {
				term := strings.ToLower(sm[1])
				m.Semester = strings.ToUpper(term[:1]) + term[1:]
				m.Year, _ = strconv.Atoi(sm[2])
			}
		}
		if len(m.MeetingDays) == 0 {
			if days := meetingDays(line); len(days) > 0 {
				if start, end, ok := meetingTimes(line); ok {
					m.MeetingDays = days
					m.MeetingStart = start
					m.MeetingEnd = end
					m.Meetings = []MeetingBlock{{Days: days, Start: start, End: end, Location: m.Room}}
				}
			}
		}
		if m.StartDate == nil && termStartRe.MatchString(line) {
			if dm, ok := res.resolve(line); ok {
				d := dm.date
				m.StartDate = &d
			}
		}
		if m.EndDate == nil && termEndRe.MatchString(line) {
			if dm, ok := res.resolve(line); ok {
				d := dm.date
				m.EndDate = &d
			}
		}
	}

	if m.Title == "" {
		m.Title = firstTitleLine(lines)
	}

	if isEmpty(m) {
		return nil
	}
	return m
}

func isEmpty(m *CourseMeta) bool {
	return m.Code == "" && m.Title == "" && m.Instructor == "" &&
		m.InstructorEmail == "" && m.Room == "" && m.Semester == "" &&
		len(m.MeetingDays) == 0 && m.StartDate == nil && m.EndDate == nil
}

// firstTitleLine picks a plausible course title: the first short line
// that is neither a date nor front-matter boilerplate.
func firstTitleLine(lines []string) string {
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || len(line) > 80 {
			continue
		}
		if instructorRe.MatchString(line) || emailRe.MatchString(line) ||
			monthDayRe.MatchString(line) || semesterRe.MatchString(line) {
			continue
		}
		return trimSeparators(line)
	}
	return ""
}

func meetingDays(line string) []time.Weekday {
	if cm := compactDaysRe.FindString(line); cm != "" {
		return compactDays[strings.ToUpper(cm)]
	}
	var days []time.Weekday
	for _, tok := range dayTokens {
		if tok.re.MatchString(line) {
			days = append(days, tok.day)
		}
	}
	return days
}

// meetingTimes parses a "10:30-11:45am"-style range into 24h HH:MM
// strings. Bare 1-7 o'clock times are treated as afternoon classes.
func meetingTimes(line string) (string, string, bool) {
	m := timeRangeRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	startH, _ := strconv.Atoi(m[1])
	startM := 0
	if m[2] != "" {
		startM, _ = strconv.Atoi(m[2])
	}
	endH, _ := strconv.Atoi(m[4])
	endM := 0
	if m[5] != "" {
		endM, _ = strconv.Atoi(m[5])
	}
	if startH > 23 || endH > 23 || startM > 59 || endM > 59 {
		return "", "", false
	}

	startAP, endAP := strings.ToLower(m[3]), strings.ToLower(m[6])
	if startAP == "" {
		startAP = endAP
	}
	startH = to24h(startH, startAP)
	endH = to24h(endH, endAP)

	return hhmm(startH, startM), hhmm(endH, endM), true
}

func to24h(h int, ap string) int {
	switch ap {
	case "pm":
		if h < 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	default:
		if h >= 1 && h <= 7 {
			h += 12
		}
	}
	return h
}

func hhmm(h, m int) string {
	return fmt.Sprintf("%02d:%02d", h, m)
}
