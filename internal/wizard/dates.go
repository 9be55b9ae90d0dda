package wizard

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// dateMatch is a resolved date phrase together with the span of input
// text it matched, which callers use to decide whether a line is only
// a date heading or a date embedded in content.
type dateMatch struct {
	date  time.Time
	text  string
	index int
}

// fraction reports how much of the input the matched date text covers.
func (m dateMatch) fraction(line string) float64 {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0
	}
	return float64(len(m.text)) / float64(len(line))
}

type dateResolver struct {
	parser *when.Parser
	ref    time.Time
	loc    *time.Location
}

var (
	monthNames = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
	monthDayRe = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?\b`)
	dayMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?(?:,?\s*(\d{4}))?\b`)
	slashRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
)

func newDateResolver(ref time.Time, loc *time.Location) *dateResolver {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return &dateResolver{parser: p, ref: ref.In(loc), loc: loc}
}

// resolve finds the most likely calendar date in text, taking the
// earliest match. Year-less phrases resolve forward-looking: the
// nearest occurrence on or after the reference date.
func (d *dateResolver) resolve(text string) (dateMatch, bool) {
	best := dateMatch{index: -1}

	if m := monthDayRe.FindStringSubmatchIndex(text); m != nil {
		month := monthNames[strings.ToLower(text[m[2]:m[2]+3])]
		day, _ := strconv.Atoi(text[m[4]:m[5]])
		year, hasYear := submatchYear(text, m, 3)
		best = d.candidate(best, text, m[0], m[1], month, day, year, hasYear)
	}
	if m := dayMonthRe.FindStringSubmatchIndex(text); m != nil {
		day, _ := strconv.Atoi(text[m[2]:m[3]])
		month := monthNames[strings.ToLower(text[m[4]:m[4]+3])]
		year, hasYear := submatchYear(text, m, 3)
		best = d.candidate(best, text, m[0], m[1], month, day, year, hasYear)
	}
	if m := slashRe.FindStringSubmatchIndex(text); m != nil {
		month, _ := strconv.Atoi(text[m[2]:m[3]])
		day, _ := strconv.Atoi(text[m[4]:m[5]])
		year, hasYear := submatchYear(text, m, 3)
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			best = d.candidate(best, text, m[0], m[1], time.Month(month), day, year, hasYear)
		}
	}

	if best.index < 0 {
		// Fall back to natural-language phrases ("next Monday",
		// "tomorrow"). Time-of-day matches ("11:59", "at 5pm") are not
		// dates and must not shift the current-date context.
		r, err := d.parser.Parse(text, d.ref)
		if err == nil && r != nil && dayWordRe.MatchString(r.Text) {
			return dateMatch{
				date:  d.midnight(r.Time),
				text:  r.Text,
				index: r.Index,
			}, true
		}
		return dateMatch{}, false
	}
	return best, true
}

var dayWordRe = regexp.MustCompile(`(?i)\b(today|tomorrow|yesterday|next|last|week|mon(day)?|tue(s|sday)?|wed(nesday)?|thu(rs|rsday)?|fri(day)?|sat(urday)?|sun(day)?|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)

// candidate builds a match from regex submatch bounds, keeping
// whichever match appears earliest in the text.
func (d *dateResolver) candidate(best dateMatch, text string, start, end int, month time.Month, day, year int, hasYear bool) dateMatch {
	if day < 1 || day > 31 {
		return best
	}
	if !hasYear {
		year = d.ref.Year()
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, d.loc)
	if !hasYear && t.Before(d.midnight(d.ref)) {
		t = t.AddDate(1, 0, 0)
	}
	m := dateMatch{date: t, text: text[start:end], index: start}
	if best.index < 0 || m.index < best.index {
		return m
	}
	return best
}

func (d *dateResolver) midnight(t time.Time) time.Time {
	t = t.In(d.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, d.loc)
}

func submatchYear(text string, m []int, group int) (int, bool) {
	lo, hi := m[group*2], m[group*2+1]
	if lo < 0 {
		return 0, false
	}
	y, err := strconv.Atoi(text[lo:hi])
	if err != nil {
		return 0, false
	}
	if y < 100 {
		y += 2000
	}
	return y, true
}
