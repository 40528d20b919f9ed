package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pfrederiksen/activity-intake/internal/activity"
)

// ErrNoTimeline is returned when a record has no usable deadlines
var ErrNoTimeline = errors.New("record has no timeline entries with valid deadlines")

var zoneSuffix = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)

// GenerateICS renders every timeline entry of every event in rec as a VEVENT
func GenerateICS(rec *activity.Record) (string, error) {
	return generateICS(rec, time.Now())
}

func generateICS(rec *activity.Record, now time.Time) (string, error) {
	var ics strings.Builder
	line := func(format string, args ...interface{}) {
		ics.WriteString(fold(fmt.Sprintf(format, args...)))
		ics.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//activity-intake//activity-intake//ZH")
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("X-WR-CALNAME:%s", escapeICS(rec.Title))

	written := 0
	for _, ev := range rec.Events {
		loc := location(ev.Timezone)
		for i, entry := range ev.Timeline {
			start, allDay, err := deadlineIn(entry.Deadline, loc)
			if err != nil {
				continue
			}

			line("BEGIN:VEVENT")
			line("UID:%s-%d@activity-intake", ev.ID, i+1)
			line("DTSTAMP:%s", formatICSTime(now))
			if allDay {
				line("DTSTART;VALUE=DATE:%s", start.Format("20060102"))
			} else {
				line("DTSTART:%s", formatICSTime(start))
			}

			summary := rec.Title
			if c := strings.TrimSpace(entry.Comment); c != "" {
				summary = fmt.Sprintf("%s - %s", rec.Title, c)
			}
			line("SUMMARY:%s", escapeICS(summary))

			if desc := description(rec, ev); desc != "" {
				line("DESCRIPTION:%s", escapeICS(desc))
			}
			if ev.Place != "" {
				line("LOCATION:%s", escapeICS(ev.Place))
			}
			if ev.Link != "" {
				line("URL:%s", ev.Link)
			}
			if len(rec.Tags) > 0 {
				tags := make([]string, len(rec.Tags))
				for j, t := range rec.Tags {
					tags[j] = escapeICS(t)
				}
				line("CATEGORIES:%s", strings.Join(tags, ","))
			}
			line("STATUS:CONFIRMED")
			line("TRANSP:TRANSPARENT")
			line("END:VEVENT")
			written++
		}
	}

	if written == 0 {
		return "", ErrNoTimeline
	}
	line("END:VCALENDAR")
	return ics.String(), nil
}

func description(rec *activity.Record, ev activity.Event) string {
	var parts []string
	if rec.Description != "" {
		parts = append(parts, rec.Description)
	}
	if ev.Date != "" {
		parts = append(parts, "日期: "+ev.Date)
	}
	return strings.Join(parts, "\n")
}

// location loads tz, falling back to UTC for empty or unknown zones
func location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// deadlineIn parses a deadline. Naive timestamps are wall-clock times in
// loc; date-only deadlines are reported as all-day.
func deadlineIn(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	t, err := activity.ParseDeadline(s)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(s) == len("2006-01-02") {
		return t, true, nil
	}
	if zoneSuffix.MatchString(s) {
		return t, false, nil
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), false, nil
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar text values
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// fold splits a content line into chunks of at most 75 octets without
// breaking UTF-8 sequences. Continuation lines start with a space.
func fold(s string) string {
	const limit = 75
	if len(s) <= limit {
		return s
	}

	var b strings.Builder
	width := 0
	for _, r := range s {
		n := len(string(r))
		if width+n > limit {
			b.WriteString("\r\n ")
			width = 1
		}
		b.WriteRune(r)
		width += n
	}
	return b.String()
}
