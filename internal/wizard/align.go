package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var weekHeadingRe = regexp.MustCompile(`(?i)^week\s+\d+\b`)

// aligner walks ordered lines, maintaining a current-date context and
// attaching content to the session for that date. Sessions are created
// lazily so repeated same-date lines merge instead of duplicating.
type aligner struct {
	res             *dateResolver
	ext             *extractor
	headingFraction float64

	current  time.Time
	sessions map[string]*Session
	order    []*Session
	seq      int
}

func newAligner(res *dateResolver, meta *CourseMeta, opts Options, maxTitle int) *aligner {
	return &aligner{
		res: res,
		ext: &extractor{
			meta:           meta,
			minutesPerPage: opts.MinutesPerPage,
			loc:            opts.location(),
			maxTitle:       maxTitle,
		},
		headingFraction: opts.HeadingFraction,
		sessions:        map[string]*Session{},
	}
}

func (a *aligner) run(lines []string) []Session {
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		ref := fmt.Sprintf("line:%d", i+1)
		cls := classify(line)

		dm, hasDate := a.res.resolve(line)

		// "Week N" headings carry no date themselves; look ahead a few
		// lines for one, stopping early at the next week heading.
		if weekHeadingRe.MatchString(line) && !hasDate {
			for j := i + 1; j <= i+3 && j < len(lines); j++ {
				if weekHeadingRe.MatchString(strings.TrimSpace(lines[j])) {
					break
				}
				if next, ok := a.res.resolve(lines[j]); ok {
					a.current = next.date
					break
				}
			}
			continue
		}

		content := line
		if hasDate {
			a.current = dm.date
			// A line that is mostly a date and carries no task keyword
			// is a pure heading: nothing to emit for it.
			if dm.fraction(line) > a.headingFraction && !cls.HasTaskKeyword {
				if cls.IsAdmin {
					a.ensure(dm.date, ref).Canceled = true
				}
				continue
			}
			// The same line can set the date and describe content due
			// that date; keep only the content for extraction.
			content = trimSeparators(strings.Replace(line, dm.text, "", 1))
		}

		if cls.IsAdmin {
			// Administrative lines ("no class", "holiday") are dropped,
			// but a cancellation on a dated line still marks the session.
			if hasDate {
				a.ensure(dm.date, ref).Canceled = true
			}
			continue
		}

		if a.current.IsZero() {
			continue
		}

		if cls.HasTaskKeyword {
			a.ext.extract(content, ref, a.ensure(a.current, ref))
			continue
		}

		// Plain prose under an active date becomes the session topic.
		if content == "" {
			continue
		}
		s := a.ensure(a.current, ref)
		if s.Topic == "" {
			s.Topic = truncate(trimSeparators(content), maxTopicLen)
		}
		if onlineRe.MatchString(line) {
			appendNote(s, strings.TrimSpace(onlineRe.FindString(line))+" class")
		}
	}

	out := make([]Session, 0, len(a.order))
	for _, s := range a.order {
		out = append(out, *s)
	}
	return out
}

// ensure returns the session for date, creating it on first reference
// with the next sequence number.
func (a *aligner) ensure(date time.Time, ref string) *Session {
	key := date.Format("2006-01-02")
	if s, ok := a.sessions[key]; ok {
		return s
	}
	a.seq++
	s := &Session{
		Date:           date,
		SequenceNumber: a.seq,
		SourceRef:      ref,
		Confidence:     clamp01(baseSessionConfidence),
	}
	a.sessions[key] = s
	a.order = append(a.order, s)
	return s
}
