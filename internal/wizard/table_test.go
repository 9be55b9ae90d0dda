package wizard

import (
	"strings"
	"testing"
)

func testMapping() Mapping {
	return Mapping{DateCol: 0, TopicCol: 1, ReadingsCol: 2, AssignmentsCol: 3}
}

func testTableOptions() TableOptions {
	start := date(2025, 9, 1)
	return TableOptions{
		CourseStart: &start,
		Course:      &CourseMeta{MeetingStart: "10:30"},
	}
}

func TestTableCarryForward(t *testing.T) {
	rows := [][]string{
		{"Sep 12, 2025", "Intro", "", "Problem set 1 due"},
		{"", "", "Casebook pp. 1-20", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), testTableOptions())

	if len(p.Sessions) != 1 {
		t.Fatalf("expected 1 session (carry-forward), got %d", len(p.Sessions))
	}
	s := p.Sessions[0]
	if !s.Date.Equal(date(2025, 9, 12)) {
		t.Errorf("session date = %v, want 2025-09-12", s.Date)
	}
	if len(s.Readings) != 1 {
		t.Fatalf("expected row 2's reading on the carried-forward session, got %d", len(s.Readings))
	}
	if s.Readings[0].Pages != "pp. 1-20" {
		t.Errorf("reading pages = %q", s.Readings[0].Pages)
	}
	foundDue := false
	for _, task := range s.AssignmentsDue {
		if strings.Contains(strings.ToLower(task.Title), "problem set") {
			foundDue = true
		}
	}
	if !foundDue {
		t.Errorf("expected problem set task, got %+v", s.AssignmentsDue)
	}
}

func TestTableSkipsBoilerplateAndEmptyRows(t *testing.T) {
	rows := [][]string{
		{"", "", "", ""},
		{"Professor Alvarez", "Office: Suite 204", "", ""},
		{"Email: alvarez@law.edu", "", "", ""},
		{"Sep 12, 2025", "Jurisdiction", "pp. 10-25", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), testTableOptions())
	if len(p.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(p.Sessions))
	}
	if p.Sessions[0].Topic != "Jurisdiction" {
		t.Errorf("topic = %q, want Jurisdiction", p.Sessions[0].Topic)
	}
}

// Some table layouts merge everything into the topic column.
func TestTableTopicColumnFallback(t *testing.T) {
	rows := [][]string{
		{"Sep 12, 2025", "Read casebook pp. 10-25", "", ""},
		{"Sep 15, 2025", "Memo due at start of class", "", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), testTableOptions())

	if len(p.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(p.Sessions))
	}
	if len(p.Sessions[0].Readings) != 1 {
		t.Errorf("expected reading pulled from topic column, got %d", len(p.Sessions[0].Readings))
	}
	if len(p.Sessions[1].AssignmentsDue) != 1 {
		t.Fatalf("expected task pulled from topic column, got %d", len(p.Sessions[1].AssignmentsDue))
	}
	task := p.Sessions[1].AssignmentsDue[0]
	if task.DueAt.Hour() != 10 || task.DueAt.Minute() != 30 {
		t.Errorf("due at %02d:%02d, want caller-supplied meeting start 10:30", task.DueAt.Hour(), task.DueAt.Minute())
	}
}

func TestTableDateFallbackScan(t *testing.T) {
	// Date lives in the topic cell, not the date column.
	rows := [][]string{
		{"", "Class 1 - Sep 12, 2025", "pp. 1-10", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), testTableOptions())
	if len(p.Sessions) != 1 {
		t.Fatalf("expected 1 session via fallback scan, got %d", len(p.Sessions))
	}
	if !p.Sessions[0].Date.Equal(date(2025, 9, 12)) {
		t.Errorf("date = %v, want 2025-09-12", p.Sessions[0].Date)
	}
}

func TestTableCancellation(t *testing.T) {
	rows := [][]string{
		{"Sep 19, 2025", "No class (holiday)", "", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), testTableOptions())
	if len(p.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(p.Sessions))
	}
	if !p.Sessions[0].Canceled {
		t.Error("expected canceled session")
	}
	if p.Sessions[0].Topic != "" {
		t.Errorf("topic = %q, want empty: an administrative cell is not a topic", p.Sessions[0].Topic)
	}
	if len(p.Sessions[0].Readings) != 0 || len(p.Sessions[0].AssignmentsDue) != 0 {
		t.Error("canceled session should have no content")
	}
}

func TestTableRowWithoutAnyDateBeforeFirstSession(t *testing.T) {
	rows := [][]string{
		{"", "Orientation notes", "pp. 1-5", ""},
		{"Sep 12, 2025", "Jurisdiction", "pp. 10-25", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), testTableOptions())
	if len(p.Sessions) != 1 {
		t.Fatalf("expected the undated leading row to be skipped, got %d sessions", len(p.Sessions))
	}
}

func TestTableDateOutsideCourseWindow(t *testing.T) {
	opts := testTableOptions()
	end := date(2025, 12, 5)
	opts.CourseEnd = &end

	rows := [][]string{
		{"Jan 3, 2027", "Casebook (3rd ed.)", "pp. 1-10", ""},
		{"Sep 12, 2025", "Jurisdiction", "pp. 10-25", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), opts)
	if len(p.Sessions) != 1 {
		t.Fatalf("expected the out-of-window date to be ignored, got %d sessions", len(p.Sessions))
	}
	if !p.Sessions[0].Date.Equal(date(2025, 9, 12)) {
		t.Errorf("date = %v, want 2025-09-12", p.Sessions[0].Date)
	}
}

func TestTableSourceRefs(t *testing.T) {
	rows := [][]string{
		{"Sep 12, 2025", "Intro", "pp. 1-20", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), testTableOptions())
	if len(p.Readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(p.Readings))
	}
	if p.Readings[0].SourceRef != "row:1" {
		t.Errorf("source ref = %q, want row:1", p.Readings[0].SourceRef)
	}
}

func TestTableSessionSequenceAcrossRows(t *testing.T) {
	rows := [][]string{
		{"Sep 12, 2025", "A", "pp. 1-5", ""},
		{"Sep 15, 2025", "B", "pp. 6-9", ""},
		{"", "", "pp. 10-12", ""},
		{"Sep 17, 2025", "C", "pp. 13-20", ""},
	}
	p := ExtractFromTableRows(rows, testMapping(), testTableOptions())
	if len(p.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(p.Sessions))
	}
	for i, s := range p.Sessions {
		if s.SequenceNumber != i+1 {
			t.Errorf("session %d has sequence %d", i, s.SequenceNumber)
		}
	}
	if len(p.Sessions[1].Readings) != 2 {
		t.Errorf("expected multi-row session to hold 2 readings, got %d", len(p.Sessions[1].Readings))
	}
}
