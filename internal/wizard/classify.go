package wizard

import (
	"regexp"
	"strings"
)

// lineClass is the classifier verdict for one line or cell.
type lineClass struct {
	IsAdmin        bool
	HasTaskKeyword bool
	TaskType       TaskType
	Priority       Priority
	IsBullet       bool
}

var (
	adminRe = regexp.MustCompile(`(?i)\b(no class(es)?|holidays?|break|reading (day|period)|cancell?ed)\b`)

	taskKeywordRe = regexp.MustCompile(`(?i)\b(read(ing)?s?|pages?|pp?\.|chapters?|ch\.|sections?|assignments?|submit|due|turn in|upload|memos?|briefs?|quiz(zes)?|exams?|outlines?|problems?|practice|discussions?|papers?|cases?)\b|§`)

	briefKeyRe = regexp.MustCompile(`(?i)\bbriefs?\b`)
	caseKeyRe  = regexp.MustCompile(`(?i)\bcases?\b`)
	memoRe     = regexp.MustCompile(`(?i)\bmemos?\b`)
	quizRe     = regexp.MustCompile(`(?i)\bquiz(zes)?\b`)
	examRe     = regexp.MustCompile(`(?i)\b(exams?|midterms?|finals?)\b`)
	adminTypRe = regexp.MustCompile(`(?i)\b(submit|turn in|upload|drafting due|paper due|assignment due|due)\b`)

	skimRe     = regexp.MustCompile(`(?i)\bskim\b`)
	optionalRe = regexp.MustCompile(`(?i)\boptional\b`)

	bulletRe = regexp.MustCompile(`^\s*(?:[-–—•*]|\d+[.)])\s+`)
)

// classify decides what one line of syllabus text denotes. The
// task-type precedence (brief > memo > quiz > exam > admin > reading)
// is a deliberate tie-break policy for lines carrying several keywords.
func classify(line string) lineClass {
	return lineClass{
		IsAdmin:        adminRe.MatchString(line),
		HasTaskKeyword: taskKeywordRe.MatchString(line),
		TaskType:       taskTypeOf(line),
		Priority:       priorityOf(line),
		IsBullet:       bulletRe.MatchString(line),
	}
}

func taskTypeOf(line string) TaskType {
	switch {
	case briefKeyRe.MatchString(line) && caseKeyRe.MatchString(line):
		return TaskBrief
	case memoRe.MatchString(line):
		return TaskMemo
	case quizRe.MatchString(line):
		return TaskQuiz
	case examRe.MatchString(line):
		return TaskExam
	case adminTypRe.MatchString(line):
		return TaskAdmin
	default:
		return TaskReading
	}
}

func priorityOf(line string) Priority {
	switch {
	case skimRe.MatchString(line):
		return PrioritySkim
	case optionalRe.MatchString(line):
		return PriorityOptional
	default:
		return PriorityRequired
	}
}

// stripBullet removes a leading bullet glyph or list marker.
func stripBullet(line string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
}
