package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/lexplan/lexplan/internal/handler"
	"github.com/lexplan/lexplan/internal/ics"
	"github.com/lexplan/lexplan/internal/model"
	"github.com/lexplan/lexplan/internal/pagerange"
	"github.com/lexplan/lexplan/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lexplan",
		Short: "Law school study planner with a syllabus import wizard",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `lexplan --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP planner server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "lexplan.db", "SQLite database path")
	f.String("timezone", "", "Default IANA timezone for syllabus imports (empty = UTC)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("admin-password", "", "Initial admin password (or set LEXPLAN_ADMIN_PASSWORD)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the plan as JSON or an iCalendar file",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "lexplan.db", "SQLite database path")
	f.Int64("course", 0, "Course ID to export (0 = all courses, JSON only)")
	f.StringP("format", "f", "json", "Output format (json, ics)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("LEXPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("lexplan")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/lexplan")
	v.AddConfigPath("/etc/lexplan")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Seed default admin user if no users exist.
	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if tz := v.GetString("timezone"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		if err := db.SetSetting(store.SettingTimezone, tz); err != nil {
			return fmt.Errorf("save timezone: %w", err)
		}
	}

	cfg := model.AppConfig{
		Addr:          v.GetString("addr"),
		DBPath:        v.GetString("db"),
		SecureCookies: v.GetBool("secure-cookies"),
		Timezone:      v.GetString("timezone"),
	}

	go pruneSessions(db)

	h := handler.New(db, cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	slog.Info("starting server",
		"addr", cfg.Addr,
		"db", cfg.DBPath,
		"timezone", cfg.Timezone,
		"secure_cookies", cfg.SecureCookies,
	)
	return http.ListenAndServe(cfg.Addr, r)
}

// pruneSessions drops expired auth sessions once an hour.
func pruneSessions(db *store.Store) {
	for range time.Tick(time.Hour) {
		n, err := db.CleanupExpiredSessions()
		if err != nil {
			slog.Warn("session cleanup failed", "error", err)
			continue
		}
		if n > 0 {
			slog.Debug("pruned expired sessions", "count", n)
		}
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	courseID := v.GetInt64("course")
	format := strings.ToLower(v.GetString("format"))

	var out string
	switch format {
	case "ics":
		if courseID == 0 {
			return fmt.Errorf("ics export needs --course")
		}
		out, err = exportICS(db, courseID)
	case "json":
		out, err = exportJSON(db, courseID)
	default:
		return fmt.Errorf("unknown format %q (json, ics)", format)
	}
	if err != nil {
		return err
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !strings.HasSuffix(out, "\n") {
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

func exportICS(db *store.Store, courseID int64) (string, error) {
	course, err := db.GetCourse(courseID)
	if err != nil {
		return "", fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return "", fmt.Errorf("course %d not found", courseID)
	}
	sessions, err := db.ListClassSessions(courseID)
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}
	tasks, err := db.ListTasks(courseID)
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	return ics.Calendar(*course, sessions, tasks), nil
}

func exportJSON(db *store.Store, courseID int64) (string, error) {
	courses, err := db.ListCourses()
	if err != nil {
		return "", fmt.Errorf("list courses: %w", err)
	}

	export := model.PlanExport{GeneratedAt: time.Now().Format(time.RFC3339)}
	for _, c := range courses {
		if courseID != 0 && c.ID != courseID {
			continue
		}
		sessions, err := db.ListClassSessions(c.ID)
		if err != nil {
			return "", fmt.Errorf("list sessions for course %d: %w", c.ID, err)
		}
		tasks, err := db.ListTasks(c.ID)
		if err != nil {
			return "", fmt.Errorf("list tasks for course %d: %w", c.ID, err)
		}
		ce := model.CourseExport{Course: c, Sessions: sessions}
		for _, t := range tasks {
			logged, err := db.TotalLoggedMinutes(t.ID)
			if err != nil {
				return "", fmt.Errorf("sum logs for task %d: %w", t.ID, err)
			}
			te := model.TaskExport{Task: t, LoggedMinutes: logged}
			if t.Pages != "" {
				te.RemainingPages = remainingPages(db, t)
			}
			ce.Tasks = append(ce.Tasks, te)
		}
		export.Courses = append(export.Courses, ce)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}
	return string(data), nil
}

func remainingPages(db *store.Store, t model.Task) string {
	logs, err := db.ListTimeLogs(t.ID)
	if err != nil {
		slog.Warn("list time logs", "task_id", t.ID, "error", err)
		return ""
	}
	ranges := pagerange.ParseExtended(t.Pages)
	for _, l := range logs {
		if l.Pages == "" {
			continue
		}
		ranges = pagerange.Subtract(ranges, l.Pages)
	}
	return pagerange.Format(ranges)
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or LEXPLAN_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
