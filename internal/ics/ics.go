// Package ics renders committed plan data as an iCalendar document for
// subscription in external calendar apps.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/lexplan/lexplan/internal/model"
)

const defaultEventMinutes = 30

// Calendar serializes a course's class sessions and tasks as VEVENTs.
// UIDs are deterministic per row so re-exports update in place instead
// of duplicating events.
func Calendar(course model.Course, sessions []model.ClassSession, tasks []model.Task) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//lexplan//EN")
	cal.SetName(courseLabel(course))

	for _, cs := range sessions {
		ev := cal.AddEvent(fmt.Sprintf("session-%d@lexplan", cs.ID))
		ev.SetAllDayStartAt(cs.Date)
		ev.SetAllDayEndAt(cs.Date.AddDate(0, 0, 1))
		summary := courseLabel(course)
		if cs.Topic != "" {
			summary += ": " + cs.Topic
		}
		ev.SetSummary(summary)
		if cs.Notes != "" {
			ev.SetDescription(cs.Notes)
		}
		if course.Room != "" {
			ev.SetLocation(course.Room)
		}
		if cs.Canceled {
			ev.SetStatus(ical.ObjectStatusCancelled)
		}
	}

	for _, t := range tasks {
		ev := cal.AddEvent(fmt.Sprintf("task-%d@lexplan", t.ID))
		ev.SetStartAt(t.DueAt)
		dur := defaultEventMinutes
		if t.EstimatedMinutes != nil && *t.EstimatedMinutes > 0 {
			dur = *t.EstimatedMinutes
		}
		ev.SetEndAt(t.DueAt.Add(time.Duration(dur) * time.Minute))
		ev.SetSummary(taskSummary(course, t))
		if desc := taskDescription(t); desc != "" {
			ev.SetDescription(desc)
		}
	}

	return cal.Serialize()
}

func courseLabel(c model.Course) string {
	switch {
	case c.Code != "" && c.Title != "":
		return c.Code + " " + c.Title
	case c.Code != "":
		return c.Code
	default:
		return c.Title
	}
}

func taskSummary(c model.Course, t model.Task) string {
	if c.Code != "" {
		return c.Code + ": " + t.Title
	}
	return t.Title
}

func taskDescription(t model.Task) string {
	var parts []string
	if t.Details != "" {
		parts = append(parts, t.Details)
	}
	if t.Pages != "" {
		parts = append(parts, "Pages: "+t.Pages)
	}
	if t.EstimatedMinutes != nil {
		parts = append(parts, fmt.Sprintf("Estimated: %d min", *t.EstimatedMinutes))
	}
	return strings.Join(parts, "\n")
}
