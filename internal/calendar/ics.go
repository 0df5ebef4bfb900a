// Package calendar renders classified events as iCalendar documents
// for the export command.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/norwichevents/eventpipe/internal/event"
)

const defaultDurationHours = 2

// GenerateICS renders one VCALENDAR document containing all the given
// events. Events whose date cannot be parsed are skipped.
func GenerateICS(events []*event.Event) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Norwich Events//eventpipe//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	now := time.Now().UTC()
	for _, e := range events {
		writeVEvent(&ics, e, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeVEvent(ics *strings.Builder, e *event.Event, now time.Time) {
	date := e.ParsedDate()
	if date.IsZero() {
		return
	}

	start, allDay := startTime(date, e.Time)

	ics.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(ics, "UID:%s@norwichevents\r\n", e.ID)
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", formatICSTime(now))

	if allDay {
		fmt.Fprintf(ics, "DTSTART;VALUE=DATE:%s\r\n", start.Format("20060102"))
		fmt.Fprintf(ics, "DTEND;VALUE=DATE:%s\r\n", start.AddDate(0, 0, 1).Format("20060102"))
	} else {
		fmt.Fprintf(ics, "DTSTART:%s\r\n", formatICSTime(start))
		fmt.Fprintf(ics, "DTEND:%s\r\n", formatICSTime(start.Add(defaultDurationHours*time.Hour)))
	}

	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(e.Name))

	desc := e.Description
	if e.TicketLink != "" {
		if desc != "" {
			desc += "\n"
		}
		desc += "Tickets: " + e.TicketLink
	}
	if desc != "" {
		fmt.Fprintf(ics, "DESCRIPTION:%s\r\n", escapeICS(desc))
	}

	location := e.Location
	if e.Address != "" {
		location = fmt.Sprintf("%s, %s", e.Location, e.Address)
	}
	fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(location))

	if e.TicketLink != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", e.TicketLink)
	}
	if e.Category != "" {
		fmt.Fprintf(ics, "CATEGORIES:%s\r\n", strings.ToUpper(e.Category))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// startTime combines the event date with its optional HH:MM start.
// Events without a time become all-day entries.
func startTime(date time.Time, hhmm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return date, true
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), false
}

// formatICSTime formats a time as an iCalendar UTC datetime.
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes text content per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
