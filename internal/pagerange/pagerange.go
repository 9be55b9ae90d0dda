// Package pagerange parses and manipulates textual page/section
// references such as "pp. 10-25", "241-250, 107-111" or "ix-xiv".
package pagerange

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Range is an inclusive span of page numbers.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var (
	prefixRe = regexp.MustCompile(`(?i)^\s*(?:pages?|pp?\.?)\s*`)
	spanRe   = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)
	singleRe = regexp.MustCompile(`^(\d+)$`)
	letterRe = regexp.MustCompile(`^([A-Za-z]{1,2})(\d+)\s*-\s*([A-Za-z]{1,2})(\d+)$`)
	romanRe  = regexp.MustCompile(`(?i)^([ivxlcdm]+)\s*-\s*([ivxlcdm]+)$`)
	dashRe   = strings.NewReplacer("–", "-", "—", "-", "−", "-")
)

// Parse converts a textual page spec into ranges. Leading "p."/"pp."/"pages"
// tokens are stripped, en/em dashes normalized, and segments split on
// comma or semicolon. Malformed segments are skipped, not rejected.
func Parse(input string) []Range {
	return parse(input, false)
}

// ParseExtended recognizes roman-numeral ranges ("ix-xiv") and
// letter-prefixed numeric ranges ("S10-S20") in addition to the core
// grammar, converting them to integers before applying the same logic.
func ParseExtended(input string) []Range {
	return parse(input, true)
}

func parse(input string, extended bool) []Range {
	input = dashRe.Replace(prefixRe.ReplaceAllString(input, ""))
	var out []Range
	for _, seg := range strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ';' }) {
		seg = strings.TrimSpace(prefixRe.ReplaceAllString(seg, ""))
		if seg == "" {
			continue
		}
		if r, ok := parseSegment(seg, extended); ok {
			out = append(out, r)
		}
	}
	return out
}

func parseSegment(seg string, extended bool) (Range, bool) {
	if m := spanRe.FindStringSubmatch(seg); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if start > end {
			return Range{}, false
		}
		return Range{Start: start, End: end}, true
	}
	if m := singleRe.FindStringSubmatch(seg); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Range{Start: n, End: n}, true
	}
	if !extended {
		return Range{}, false
	}
	if m := letterRe.FindStringSubmatch(seg); m != nil && strings.EqualFold(m[1], m[3]) {
		start, _ := strconv.Atoi(m[2])
		end, _ := strconv.Atoi(m[4])
		if start > end {
			return Range{}, false
		}
		return Range{Start: start, End: end}, true
	}
	if m := romanRe.FindStringSubmatch(seg); m != nil {
		start, ok1 := RomanToInt(m[1])
		end, ok2 := RomanToInt(m[2])
		if ok1 && ok2 && start <= end {
			return Range{Start: start, End: end}, true
		}
	}
	return Range{}, false
}

// Format renders ranges back to text. Single-page ranges render as the
// bare number, spans as "start–end", joined with ", ".
func Format(ranges []Range) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r.Start == r.End {
			parts = append(parts, strconv.Itoa(r.Start))
		} else {
			parts = append(parts, strconv.Itoa(r.Start)+"–"+strconv.Itoa(r.End))
		}
	}
	return strings.Join(parts, ", ")
}

// Count returns the total number of pages covered.
func Count(ranges []Range) int {
	total := 0
	for _, r := range ranges {
		total += r.End - r.Start + 1
	}
	return total
}

// Subtract removes the pages described by completedInput from ranges,
// re-merging the remainder into minimal contiguous ranges. Used to
// compute pages remaining after a partial-completion log.
func Subtract(ranges []Range, completedInput string) []Range {
	covered := map[int]bool{}
	for _, r := range ParseExtended(completedInput) {
		for p := r.Start; p <= r.End; p++ {
			covered[p] = true
		}
	}
	var out []Range
	for _, r := range ranges {
		runStart := -1
		for p := r.Start; p <= r.End+1; p++ {
			if p <= r.End && !covered[p] {
				if runStart < 0 {
					runStart = p
				}
				continue
			}
			if runStart >= 0 {
				out = append(out, Range{Start: runStart, End: p - 1})
				runStart = -1
			}
		}
	}
	return merge(out)
}

// merge sorts and coalesces overlapping or adjacent ranges.
func merge(ranges []Range) []Range {
	if len(ranges) < 2 {
		return ranges
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	out := []Range{ranges[0]}
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// EstimateMinutes converts a page count to a reading-time estimate.
func EstimateMinutes(pageCount int, minutesPerPage float64) int {
	return int(math.Round(float64(pageCount) * minutesPerPage))
}

var romanValues = map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}

// RomanToInt parses a roman numeral. The boolean is false for strings
// that are not well-formed numerals.
func RomanToInt(s string) (int, bool) {
	s = strings.ToLower(s)
	if s == "" {
		return 0, false
	}
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) && romanValues[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}
