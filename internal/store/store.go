package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lexplan/lexplan/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		instructor TEXT NOT NULL DEFAULT '',
		instructor_email TEXT NOT NULL DEFAULT '',
		room TEXT NOT NULL DEFAULT '',
		semester TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		meeting_days TEXT NOT NULL DEFAULT '',
		meeting_start TEXT NOT NULL DEFAULT '',
		meeting_end TEXT NOT NULL DEFAULT '',
		start_date DATETIME,
		end_date DATETIME,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS class_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id INTEGER NOT NULL,
		date DATETIME NOT NULL,
		sequence_number INTEGER NOT NULL DEFAULT 0,
		topic TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		canceled BOOLEAN NOT NULL DEFAULT 0,
		FOREIGN KEY (course_id) REFERENCES courses(id),
		UNIQUE (course_id, date)
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id INTEGER NOT NULL,
		session_id INTEGER,
		type TEXT NOT NULL DEFAULT 'reading',
		title TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		due_at DATETIME NOT NULL,
		estimated_minutes INTEGER,
		pages TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'required',
		blocking BOOLEAN NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'planned',
		created_at DATETIME NOT NULL,
		FOREIGN KEY (course_id) REFERENCES courses(id),
		FOREIGN KEY (session_id) REFERENCES class_sessions(id)
	);

	CREATE TABLE IF NOT EXISTS time_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL,
		minutes INTEGER NOT NULL DEFAULT 0,
		pages TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		logged_at DATETIME NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id)
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const courseCols = `id, code, title, instructor, instructor_email, room, semester, year,
	meeting_days, meeting_start, meeting_end, start_date, end_date, created_at`

// CreateCourse stores a course.
func (s *Store) CreateCourse(c model.Course) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO courses (code, title, instructor, instructor_email, room, semester, year,
		 meeting_days, meeting_start, meeting_end, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Code, c.Title, c.Instructor, c.InstructorEmail, c.Room, c.Semester, c.Year,
		joinDays(c.MeetingDays), c.MeetingStart, c.MeetingEnd, c.StartDate, c.EndDate, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateCourse replaces all editable fields of a course.
func (s *Store) UpdateCourse(c model.Course) error {
	_, err := s.db.Exec(
		`UPDATE courses SET code = ?, title = ?, instructor = ?, instructor_email = ?, room = ?,
		 semester = ?, year = ?, meeting_days = ?, meeting_start = ?, meeting_end = ?,
		 start_date = ?, end_date = ? WHERE id = ?`,
		c.Code, c.Title, c.Instructor, c.InstructorEmail, c.Room,
		c.Semester, c.Year, joinDays(c.MeetingDays), c.MeetingStart, c.MeetingEnd,
		c.StartDate, c.EndDate, c.ID,
	)
	return err
}

// GetCourse returns a course by ID, or nil if not found.
func (s *Store) GetCourse(id int64) (*model.Course, error) {
	row := s.db.QueryRow(`SELECT `+courseCols+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCourses returns all courses.
func (s *Store) ListCourses() ([]model.Course, error) {
	rows, err := s.db.Query(`SELECT ` + courseCols + ` FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// DeleteCourse removes a course with its sessions, tasks and time logs.
func (s *Store) DeleteCourse(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM time_logs WHERE task_id IN (SELECT id FROM tasks WHERE course_id = ?)`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM tasks WHERE course_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM class_sessions WHERE course_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM courses WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*model.Course, error) {
	var c model.Course
	var days string
	var start, end sql.NullTime
	err := row.Scan(&c.ID, &c.Code, &c.Title, &c.Instructor, &c.InstructorEmail, &c.Room,
		&c.Semester, &c.Year, &days, &c.MeetingStart, &c.MeetingEnd, &start, &end, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.MeetingDays = parseDays(days)
	if start.Valid {
		c.StartDate = &start.Time
	}
	if end.Valid {
		c.EndDate = &end.Time
	}
	return &c, nil
}

// Meeting days persist as comma-joined weekday numbers ("1,3").
func joinDays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func parseDays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

// CreateClassSession stores one class meeting.
func (s *Store) CreateClassSession(cs model.ClassSession) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO class_sessions (course_id, date, sequence_number, topic, notes, canceled)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cs.CourseID, cs.Date, cs.SequenceNumber, cs.Topic, cs.Notes, cs.Canceled,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListClassSessions returns a course's sessions in schedule order.
func (s *Store) ListClassSessions(courseID int64) ([]model.ClassSession, error) {
	rows, err := s.db.Query(
		`SELECT id, course_id, date, sequence_number, topic, notes, canceled
		 FROM class_sessions WHERE course_id = ? ORDER BY date`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []model.ClassSession
	for rows.Next() {
		var cs model.ClassSession
		if err := rows.Scan(&cs.ID, &cs.CourseID, &cs.Date, &cs.SequenceNumber, &cs.Topic, &cs.Notes, &cs.Canceled); err != nil {
			return nil, err
		}
		sessions = append(sessions, cs)
	}
	return sessions, rows.Err()
}

const taskCols = `id, course_id, session_id, type, title, details, due_at,
	estimated_minutes, pages, priority, blocking, status, created_at`

// CreateTask stores a task.
func (s *Store) CreateTask(t model.Task) (int64, error) {
	if t.Status == "" {
		t.Status = model.StatusPlanned
	}
	res, err := s.db.Exec(
		`INSERT INTO tasks (course_id, session_id, type, title, details, due_at,
		 estimated_minutes, pages, priority, blocking, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.CourseID, t.SessionID, t.Type, t.Title, t.Details, t.DueAt,
		t.EstimatedMinutes, t.Pages, t.Priority, t.Blocking, t.Status, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateTask replaces all editable fields of a task.
func (s *Store) UpdateTask(t model.Task) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET type = ?, title = ?, details = ?, due_at = ?, estimated_minutes = ?,
		 pages = ?, priority = ?, blocking = ?, status = ? WHERE id = ?`,
		t.Type, t.Title, t.Details, t.DueAt, t.EstimatedMinutes,
		t.Pages, t.Priority, t.Blocking, t.Status, t.ID,
	)
	return err
}

// GetTask returns a task by ID, or nil if not found.
func (s *Store) GetTask(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns tasks ordered by due date. A zero courseID means
// all courses.
func (s *Store) ListTasks(courseID int64) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks`
	var args []any
	if courseID != 0 {
		query += ` WHERE course_id = ?`
		args = append(args, courseID)
	}
	query += ` ORDER BY due_at, id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// DeleteTask removes a task and its time logs.
func (s *Store) DeleteTask(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM time_logs WHERE task_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func scanTask(row rowScanner) (*model.Task, error) {
	var t model.Task
	var sessionID sql.NullInt64
	var estimate sql.NullInt64
	err := row.Scan(&t.ID, &t.CourseID, &sessionID, &t.Type, &t.Title, &t.Details, &t.DueAt,
		&estimate, &t.Pages, &t.Priority, &t.Blocking, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if sessionID.Valid {
		t.SessionID = &sessionID.Int64
	}
	if estimate.Valid {
		m := int(estimate.Int64)
		t.EstimatedMinutes = &m
	}
	return &t, nil
}

// AddTimeLog records work against a task.
func (s *Store) AddTimeLog(l model.TimeLog) (int64, error) {
	at := l.LoggedAt
	if at.IsZero() {
		at = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO time_logs (task_id, minutes, pages, note, logged_at) VALUES (?, ?, ?, ?, ?)`,
		l.TaskID, l.Minutes, l.Pages, l.Note, at,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListTimeLogs returns a task's time logs in entry order.
func (s *Store) ListTimeLogs(taskID int64) ([]model.TimeLog, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, minutes, pages, note, logged_at FROM time_logs WHERE task_id = ? ORDER BY id`, taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []model.TimeLog
	for rows.Next() {
		var l model.TimeLog
		if err := rows.Scan(&l.ID, &l.TaskID, &l.Minutes, &l.Pages, &l.Note, &l.LoggedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// TotalLoggedMinutes sums the minutes logged against a task.
func (s *Store) TotalLoggedMinutes(taskID int64) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(minutes), 0) FROM time_logs WHERE task_id = ?`, taskID,
	).Scan(&total)
	return total, err
}

// CommitImport persists a reviewed wizard import in one transaction:
// the course, its sessions, and its tasks. Each task's SessionID, when
// set, is an index into the sessions slice and is rewired to the real
// row ID here.
func (s *Store) CommitImport(course model.Course, sessions []model.ClassSession, tasks []model.Task) (int64, []int64, []int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, nil, nil, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO courses (code, title, instructor, instructor_email, room, semester, year,
		 meeting_days, meeting_start, meeting_end, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		course.Code, course.Title, course.Instructor, course.InstructorEmail, course.Room,
		course.Semester, course.Year, joinDays(course.MeetingDays), course.MeetingStart,
		course.MeetingEnd, course.StartDate, course.EndDate, time.Now(),
	)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("insert course: %w", err)
	}
	courseID, err := res.LastInsertId()
	if err != nil {
		return 0, nil, nil, err
	}

	sessionIDs := make([]int64, 0, len(sessions))
	for _, cs := range sessions {
		res, err := tx.Exec(
			`INSERT INTO class_sessions (course_id, date, sequence_number, topic, notes, canceled)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			courseID, cs.Date, cs.SequenceNumber, cs.Topic, cs.Notes, cs.Canceled,
		)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("insert session: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, nil, nil, err
		}
		sessionIDs = append(sessionIDs, id)
	}

	taskIDs := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		var sessionID *int64
		if t.SessionID != nil {
			idx := int(*t.SessionID)
			if idx < 0 || idx >= len(sessionIDs) {
				return 0, nil, nil, fmt.Errorf("task %q: session index %d out of range", t.Title, idx)
			}
			sessionID = &sessionIDs[idx]
		}
		if t.Status == "" {
			t.Status = model.StatusPlanned
		}
		res, err := tx.Exec(
			`INSERT INTO tasks (course_id, session_id, type, title, details, due_at,
			 estimated_minutes, pages, priority, blocking, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			courseID, sessionID, t.Type, t.Title, t.Details, t.DueAt,
			t.EstimatedMinutes, t.Pages, t.Priority, t.Blocking, t.Status, time.Now(),
		)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, nil, nil, err
		}
		taskIDs = append(taskIDs, id)
	}

	return courseID, sessionIDs, taskIDs, tx.Commit()
}
