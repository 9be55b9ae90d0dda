package wizard

import (
	"reflect"
	"testing"
	"time"
)

func newTestExtractor(meta *CourseMeta) *extractor {
	return &extractor{
		meta:           meta,
		minutesPerPage: defaultMinutesPerPage,
		loc:            time.UTC,
		maxTitle:       maxTitleLen,
	}
}

func TestSplitParts(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"semicolons", "Read pp. 10-25; Brief the Smith case", []string{"Read pp. 10-25", "Brief the Smith case"}},
		{"single kept whole", "Read pp. 10-25, Smith v. Jones", []string{"Read pp. 10-25, Smith v. Jones"}},
		{"conjunction both task-like", "Read pp. 10-25 and submit the memo", []string{"Read pp. 10-25", "submit the memo"}},
		{"conjunction one half prose", "Read pp. 10-25 and come prepared", []string{"Read pp. 10-25 and come prepared"}},
		{"ampersand both task-like", "Casebook 10-20 & quiz 1", []string{"Casebook 10-20", "quiz 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitParts(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitParts(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestPageSpec(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Read pp. 10-25, Smith v. Jones", "pp. 10-25"},
		{"Read 111-123", "111-123"},
		{"Casebook 241-250, 107-111", "241-250, 107-111"},
		{"pages 5-9", "pages 5-9"},
		{"§ 1983", "§ 1983"},
		{"no pages here", ""},
	}
	for _, tt := range tests {
		if got := pageSpec(tt.line); got != tt.want {
			t.Errorf("pageSpec(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"Read 111-123", 13},
		{"Read pp. 10-25", 16},
		{"Casebook 241-250, 107-111", 15},
		{"Read 30 pages of the article", 30},
		{"Preface ix-xiv", 6},
		{"Supplement S10-S20", 11},
		{"no signal", 0},
	}
	for _, tt := range tests {
		if got := pageCount(tt.line); got != tt.want {
			t.Errorf("pageCount(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestEstimateMinutes(t *testing.T) {
	e := newTestExtractor(nil)

	tests := []struct {
		name string
		line string
		want int // -1 means nil
	}{
		{"page based", "Read 111-123", 39},
		{"clamped low", "Read p. 2", 10},
		{"case brief", "Brief the case of Smith v. Jones", 60},
		{"memo", "Draft memo on jurisdiction", 180},
		{"quiz", "Quiz on negligence", 30},
		{"exam", "Final exam", 180},
		{"outline", "Update your outline", 90},
		{"chapter", "Read chapter 4", 60},
		{"generic assignment", "Assignment on remedies", 90},
		{"discussion", "Discussion questions for Thursday", 30},
		{"nothing", "Be on time", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.estimateMinutes(tt.line)
			if tt.want < 0 {
				if got != nil {
					t.Errorf("estimateMinutes(%q) = %d, want nil", tt.line, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("estimateMinutes(%q) = %v, want %d", tt.line, got, tt.want)
			}
		})
	}
}

func TestSourceType(t *testing.T) {
	tests := []struct {
		line string
		want SourceType
	}{
		{"Smith v. Jones", SourceCase},
		{"Brief the case", SourceCase},
		{"Statute of frauds reading", SourceStatute},
		{"42 U.S.C. 1983", SourceStatute},
		{"Law review article on standing", SourceArticle},
		{"Casebook pp. 10-25", SourceCasebook},
		{"pp. 100-120", SourceCasebook},
	}
	for _, tt := range tests {
		if got := sourceTypeOf(tt.line); got != tt.want {
			t.Errorf("sourceTypeOf(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestDueTime(t *testing.T) {
	day := date(2025, 9, 15)
	withMeeting := newTestExtractor(&CourseMeta{MeetingStart: "10:30"})
	noMeta := newTestExtractor(nil)

	tests := []struct {
		name     string
		e        *extractor
		line     string
		wantHH   int
		wantMM   int
		explicit bool
	}{
		{"start of class with meeting time", withMeeting, "Memo due at start of class", 10, 30, true},
		{"start of class unknown meeting", noMeta, "Memo due at start of class", 9, 0, true},
		{"eleven fifty nine", withMeeting, "Upload brief by 11:59", 23, 59, true},
		{"end of day", withMeeting, "Submit by end of day", 23, 59, true},
		{"default falls back to meeting start", withMeeting, "Memo due Friday", 10, 30, false},
		{"default without meta", noMeta, "Memo due Friday", 9, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, explicit := tt.e.dueTime(tt.line, day)
			if got.Hour() != tt.wantHH || got.Minute() != tt.wantMM {
				t.Errorf("dueTime(%q) = %02d:%02d, want %02d:%02d", tt.line, got.Hour(), got.Minute(), tt.wantHH, tt.wantMM)
			}
			if explicit != tt.explicit {
				t.Errorf("dueTime(%q) explicit = %v, want %v", tt.line, explicit, tt.explicit)
			}
			if !got.Truncate(24 * time.Hour).Equal(day) {
				t.Errorf("dueTime(%q) date = %v, want %v", tt.line, got, day)
			}
		})
	}
}

func TestBlocking(t *testing.T) {
	e := newTestExtractor(nil)
	s := &Session{Date: date(2025, 9, 15)}
	e.extract("You must submit the memo before class", "line:1", s)
	if len(s.AssignmentsDue) != 1 {
		t.Fatalf("expected 1 task, got %d", len(s.AssignmentsDue))
	}
	if !s.AssignmentsDue[0].Blocking {
		t.Error("expected blocking task")
	}
}

func TestMultiItemDropsProse(t *testing.T) {
	e := newTestExtractor(nil)
	s := &Session{Date: date(2025, 9, 15)}
	e.extract("Read pp. 10-25; see you there", "line:1", s)
	if len(s.Readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(s.Readings))
	}
	if s.Readings[0].Pages != "pp. 10-25" {
		t.Errorf("pages = %q", s.Readings[0].Pages)
	}
}
