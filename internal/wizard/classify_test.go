package wizard

import "testing"

func TestClassifyAdmin(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"No class (holiday)", true},
		{"NO CLASSES this week", true},
		{"Spring break", true},
		{"Reading period", true},
		{"Reading day", true},
		{"Class cancelled", true},
		{"Class canceled", true},
		{"Read pp. 10-25", false},
		{"Discussion of holidays in employment law", true}, // stopword matches are blunt by design
	}
	for _, tt := range tests {
		if got := classify(tt.line).IsAdmin; got != tt.want {
			t.Errorf("classify(%q).IsAdmin = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestClassifyTaskKeyword(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Read pp. 10-25", true},
		{"Chapter 4", true},
		{"Submit memo by Friday", true},
		{"Quiz on negligence", true},
		{"§ 1983 actions", true},
		{"Turn in problem set", true},
		{"Welcome to the course", false},
		{"September 12, 2025", false},
	}
	for _, tt := range tests {
		if got := classify(tt.line).HasTaskKeyword; got != tt.want {
			t.Errorf("classify(%q).HasTaskKeyword = %v, want %v", tt.line, got, tt.want)
		}
	}
}

// Task-type precedence is a deliberate tie-break policy: reordering it
// changes behavior on lines carrying several keywords.
func TestTaskTypePrecedence(t *testing.T) {
	tests := []struct {
		line string
		want TaskType
	}{
		{"Brief the case of Smith v. Jones", TaskBrief},
		{"Brief due Friday", TaskAdmin}, // brief without "case" falls through
		{"Memo due at start of class", TaskMemo},
		{"Quiz 2, submit answers online", TaskQuiz},
		{"Final exam", TaskExam},
		{"Midterm review", TaskExam},
		{"Assignment due by 11:59", TaskAdmin},
		{"Upload your outline", TaskAdmin},
		{"Read chapter 3", TaskReading},
		{"Casebook 100-120", TaskReading},
	}
	for _, tt := range tests {
		if got := taskTypeOf(tt.line); got != tt.want {
			t.Errorf("taskTypeOf(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestReadingPriority(t *testing.T) {
	tests := []struct {
		line string
		want Priority
	}{
		{"Skim the introduction", PrioritySkim},
		{"Optional: article on standing", PriorityOptional},
		{"Read pp. 10-25", PriorityRequired},
		{"Skim optional appendix", PrioritySkim}, // skim wins over optional
	}
	for _, tt := range tests {
		if got := classify(tt.line).Priority; got != tt.want {
			t.Errorf("classify(%q).Priority = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestIsBullet(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"- Read pp. 10-25", true},
		{"• Casebook 5-10", true},
		{"* item", true},
		{"– dash bullet", true},
		{"1) first", true},
		{"2. second", true},
		{"Read pp. 10-25", false},
		{"-no space after glyph", false},
	}
	for _, tt := range tests {
		if got := classify(tt.line).IsBullet; got != tt.want {
			t.Errorf("classify(%q).IsBullet = %v, want %v", tt.line, got, tt.want)
		}
	}
}
