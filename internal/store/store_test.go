package store

import (
	"testing"
	"time"

	"github.com/lexplan/lexplan/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestCourse(t *testing.T, s *Store, code, title string) int64 {
	t.Helper()
	id, err := s.CreateCourse(model.Course{
		Code:         code,
		Title:        title,
		MeetingDays:  []time.Weekday{time.Monday, time.Wednesday},
		MeetingStart: "10:30",
		MeetingEnd:   "11:45",
	})
	if err != nil {
		t.Fatalf("insertTestCourse: %v", err)
	}
	return id
}

func insertTestTask(t *testing.T, s *Store, courseID int64, title string, due time.Time) int64 {
	t.Helper()
	id, err := s.CreateTask(model.Task{
		CourseID: courseID,
		Type:     "reading",
		Title:    title,
		DueAt:    due,
		Pages:    "21-45",
	})
	if err != nil {
		t.Fatalf("insertTestTask: %v", err)
	}
	return id
}

func TestCourseCRUD(t *testing.T) {
	s := newTestStore(t)

	// Empty DB should return empty list and nil lookups.
	list, err := s.ListCourses()
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
	c, err := s.GetCourse(9999)
	if err != nil {
		t.Fatalf("GetCourse missing: %v", err)
	}
	if c != nil {
		t.Error("expected nil course for missing ID")
	}

	// Insert and retrieve.
	id := insertTestCourse(t, s, "LAW 201", "Civil Procedure")
	c, err = s.GetCourse(id)
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if c == nil {
		t.Fatal("expected course")
	}
	if c.Code != "LAW 201" || c.Title != "Civil Procedure" {
		t.Errorf("got %q / %q", c.Code, c.Title)
	}
	if len(c.MeetingDays) != 2 || c.MeetingDays[0] != time.Monday || c.MeetingDays[1] != time.Wednesday {
		t.Errorf("meeting days round-trip: %v", c.MeetingDays)
	}
	if c.MeetingStart != "10:30" {
		t.Errorf("meeting start = %q", c.MeetingStart)
	}
	if c.StartDate != nil {
		t.Error("expected nil start date")
	}

	// Update.
	c.Title = "Civ Pro"
	start := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	c.StartDate = &start
	if err := s.UpdateCourse(*c); err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	c, _ = s.GetCourse(id)
	if c.Title != "Civ Pro" {
		t.Errorf("title after update = %q", c.Title)
	}
	if c.StartDate == nil || !c.StartDate.Equal(start) {
		t.Errorf("start date after update = %v", c.StartDate)
	}

	// Delete cascades to sessions, tasks and logs.
	taskID := insertTestTask(t, s, id, "Read pp. 21-45", start)
	if _, err := s.AddTimeLog(model.TimeLog{TaskID: taskID, Minutes: 30}); err != nil {
		t.Fatalf("AddTimeLog: %v", err)
	}
	if err := s.DeleteCourse(id); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if c, _ := s.GetCourse(id); c != nil {
		t.Error("course survived delete")
	}
	if task, _ := s.GetTask(taskID); task != nil {
		t.Error("task survived course delete")
	}
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	courseID := insertTestCourse(t, s, "LAW 201", "Civil Procedure")
	due := time.Date(2025, 9, 10, 10, 30, 0, 0, time.UTC)

	id := insertTestTask(t, s, courseID, "Read pp. 21-45", due)

	task, err := s.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task == nil {
		t.Fatal("expected task")
	}
	if task.Title != "Read pp. 21-45" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Status != model.StatusPlanned {
		t.Errorf("status = %q, want planned default", task.Status)
	}
	if task.EstimatedMinutes != nil {
		t.Error("expected nil estimate")
	}
	if task.SessionID != nil {
		t.Error("expected nil session id")
	}

	// Not found maps to nil, nil.
	missing, err := s.GetTask(9999)
	if err != nil {
		t.Fatalf("GetTask missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing task")
	}

	// Update with an estimate and status change.
	est := 72
	task.EstimatedMinutes = &est
	task.Status = model.StatusInProgress
	if err := s.UpdateTask(*task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	task, _ = s.GetTask(id)
	if task.EstimatedMinutes == nil || *task.EstimatedMinutes != 72 {
		t.Errorf("estimate after update = %v", task.EstimatedMinutes)
	}
	if task.Status != model.StatusInProgress {
		t.Errorf("status after update = %q", task.Status)
	}

	// Delete.
	if err := s.DeleteTask(id); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if task, _ := s.GetTask(id); task != nil {
		t.Error("task survived delete")
	}
}

func TestListTasksOrderAndFilter(t *testing.T) {
	s := newTestStore(t)
	c1 := insertTestCourse(t, s, "LAW 201", "Civ Pro")
	c2 := insertTestCourse(t, s, "CRIM 320", "Crim Law")

	base := time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)
	insertTestTask(t, s, c1, "later", base.Add(48*time.Hour))
	insertTestTask(t, s, c1, "sooner", base)
	insertTestTask(t, s, c2, "other course", base.Add(24*time.Hour))

	all, err := s.ListTasks(0)
	if err != nil {
		t.Fatalf("ListTasks all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	if all[0].Title != "sooner" {
		t.Errorf("expected due-date order, first = %q", all[0].Title)
	}

	only, err := s.ListTasks(c1)
	if err != nil {
		t.Fatalf("ListTasks filtered: %v", err)
	}
	if len(only) != 2 {
		t.Fatalf("expected 2 tasks for course, got %d", len(only))
	}
}

func TestClassSessions(t *testing.T) {
	s := newTestStore(t)
	courseID := insertTestCourse(t, s, "LAW 201", "Civ Pro")

	d1 := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	if _, err := s.CreateClassSession(model.ClassSession{CourseID: courseID, Date: d1, SequenceNumber: 2, Topic: "Jurisdiction"}); err != nil {
		t.Fatalf("CreateClassSession: %v", err)
	}
	if _, err := s.CreateClassSession(model.ClassSession{CourseID: courseID, Date: d2, SequenceNumber: 1, Canceled: true}); err != nil {
		t.Fatalf("CreateClassSession: %v", err)
	}

	sessions, err := s.ListClassSessions(courseID)
	if err != nil {
		t.Fatalf("ListClassSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	// Ordered by date, not insertion.
	if !sessions[0].Date.Equal(d2) {
		t.Errorf("first session date = %v, want %v", sessions[0].Date, d2)
	}
	if !sessions[0].Canceled {
		t.Error("expected canceled flag to round-trip")
	}

	// One session per course per date.
	if _, err := s.CreateClassSession(model.ClassSession{CourseID: courseID, Date: d1}); err == nil {
		t.Error("expected unique constraint violation for duplicate date")
	}
}

func TestTimeLogs(t *testing.T) {
	s := newTestStore(t)
	courseID := insertTestCourse(t, s, "LAW 201", "Civ Pro")
	taskID := insertTestTask(t, s, courseID, "Read pp. 21-45", time.Now())

	total, err := s.TotalLoggedMinutes(taskID)
	if err != nil {
		t.Fatalf("TotalLoggedMinutes: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 minutes, got %d", total)
	}

	for _, l := range []model.TimeLog{
		{TaskID: taskID, Minutes: 30, Pages: "21-30"},
		{TaskID: taskID, Minutes: 25, Pages: "31-40", Note: "library"},
	} {
		if _, err := s.AddTimeLog(l); err != nil {
			t.Fatalf("AddTimeLog: %v", err)
		}
	}

	logs, err := s.ListTimeLogs(taskID)
	if err != nil {
		t.Fatalf("ListTimeLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Pages != "21-30" {
		t.Errorf("first log pages = %q", logs[0].Pages)
	}
	if logs[0].LoggedAt.IsZero() {
		t.Error("expected logged_at to be stamped")
	}

	total, err = s.TotalLoggedMinutes(taskID)
	if err != nil {
		t.Fatalf("TotalLoggedMinutes: %v", err)
	}
	if total != 55 {
		t.Errorf("expected 55 minutes, got %d", total)
	}
}

func TestCommitImport(t *testing.T) {
	s := newTestStore(t)

	course := model.Course{Code: "LAW 201", Title: "Civ Pro", MeetingStart: "10:30"}
	sessions := []model.ClassSession{
		{Date: time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC), SequenceNumber: 1, Topic: "Intro"},
		{Date: time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), SequenceNumber: 2},
	}
	idx := int64(1)
	est := 39
	tasks := []model.Task{
		{Type: "reading", Title: "Read pp. 21-45", DueAt: sessions[1].Date, SessionID: &idx, EstimatedMinutes: &est},
		{Type: "memo", Title: "Submit the memo", DueAt: sessions[1].Date},
	}

	courseID, sessionIDs, taskIDs, err := s.CommitImport(course, sessions, tasks)
	if err != nil {
		t.Fatalf("CommitImport: %v", err)
	}
	if len(sessionIDs) != 2 || len(taskIDs) != 2 {
		t.Fatalf("got %d sessions, %d tasks", len(sessionIDs), len(taskIDs))
	}

	got, err := s.GetTask(taskIDs[0])
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.CourseID != courseID {
		t.Errorf("task course = %d, want %d", got.CourseID, courseID)
	}
	// The session index was rewired to the real row ID.
	if got.SessionID == nil || *got.SessionID != sessionIDs[1] {
		t.Errorf("task session = %v, want %d", got.SessionID, sessionIDs[1])
	}
	if got.EstimatedMinutes == nil || *got.EstimatedMinutes != 39 {
		t.Errorf("estimate = %v", got.EstimatedMinutes)
	}

	stored, err := s.ListClassSessions(courseID)
	if err != nil {
		t.Fatalf("ListClassSessions: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored sessions, got %d", len(stored))
	}
}

func TestCommitImportBadSessionIndex(t *testing.T) {
	s := newTestStore(t)
	idx := int64(5)
	_, _, _, err := s.CommitImport(
		model.Course{Code: "LAW 201"},
		nil,
		[]model.Task{{Title: "orphan", DueAt: time.Now(), SessionID: &idx}},
	)
	if err == nil {
		t.Fatal("expected error for out-of-range session index")
	}
	// The whole transaction rolls back.
	courses, _ := s.ListCourses()
	if len(courses) != 0 {
		t.Errorf("expected rollback, found %d courses", len(courses))
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	// Missing key returns empty string without error.
	v, err := s.GetSetting("nope")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}

	// Defaults apply when unset.
	mpp, err := s.MinutesPerPage()
	if err != nil {
		t.Fatalf("MinutesPerPage: %v", err)
	}
	if mpp != 3.0 {
		t.Errorf("default minutes per page = %v, want 3", mpp)
	}

	if err := s.SetSetting(SettingMinutesPerPage, "4.5"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	mpp, _ = s.MinutesPerPage()
	if mpp != 4.5 {
		t.Errorf("minutes per page = %v, want 4.5", mpp)
	}

	// Upsert overwrites.
	if err := s.SetSetting(SettingTimezone, "America/New_York"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting(SettingTimezone, "America/Chicago"); err != nil {
		t.Fatalf("SetSetting update: %v", err)
	}
	tz, _ := s.Timezone()
	if tz != "America/Chicago" {
		t.Errorf("timezone = %q", tz)
	}

	// Garbage values fall back to the default.
	if err := s.SetSetting(SettingMinutesPerPage, "fast"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	mpp, _ = s.MinutesPerPage()
	if mpp != 3.0 {
		t.Errorf("unparseable pace = %v, want default 3", mpp)
	}
}

func TestUsersAndAuthSessions(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Admin",
		PasswordHash: "x",
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id || u.Role != model.UserRoleAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}

	missing, err := s.GetUserByUsername("ghost")
	if err != nil {
		t.Fatalf("GetUserByUsername missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil session after delete")
	}
}

func TestUserRoleDefaultAndListOrder(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"zoe", "amir"} {
		if _, err := s.CreateUser(model.User{Username: name, PasswordHash: "x", Active: true}); err != nil {
			t.Fatalf("CreateUser(%s): %v", name, err)
		}
	}

	u, err := s.GetUserByUsername("zoe")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u.Role != model.UserRoleStudent {
		t.Errorf("role = %q, want student default", u.Role)
	}

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "amir" || users[1].Username != "zoe" {
		t.Errorf("expected username order, got %+v", users)
	}
}

func TestDeactivationDropsSessions(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateUser(model.User{Username: "zoe", PasswordHash: "x", Active: true})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	if err := s.ToggleUserActive(id); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	u, _ := s.GetUserByID(id)
	if u.Active {
		t.Error("expected deactivated user")
	}
	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess != nil {
		t.Error("deactivation should drop the user's sessions")
	}

	// Reactivation does not resurrect them.
	if err := s.ToggleUserActive(id); err != nil {
		t.Fatalf("ToggleUserActive back: %v", err)
	}
	if sess, _ := s.GetAuthSession(token); sess != nil {
		t.Error("expected session to stay gone after reactivation")
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateUser(model.User{Username: "zoe", PasswordHash: "x", Active: true})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO auth_sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		"stale", id, time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour),
	); err != nil {
		t.Fatalf("insert stale session: %v", err)
	}

	n, err := s.CleanupExpiredSessions()
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d sessions, want 1", n)
	}
	if sess, _ := s.GetAuthSession(token); sess == nil {
		t.Error("live session should survive cleanup")
	}
}
