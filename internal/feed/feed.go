// Package feed narrows a classified event set for export. Filters
// combine with AND semantics; an empty filter passes everything
// through.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/norwichevents/eventpipe/internal/event"
)

// Filter holds the export filtering criteria.
type Filter struct {
	// Date range, inclusive on both ends. Events whose date cannot be
	// parsed fail date-based criteria.
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Categories is an allow-list of category slugs.
	Categories []string `json:"categories,omitempty"`

	// Venues matches on location substring, case-insensitive.
	Venues []string `json:"venues,omitempty"`

	// FreeOnly keeps events with no price or a price containing
	// "free".
	FreeOnly bool `json:"free_only,omitempty"`

	// WeekendsOnly keeps Saturday and Sunday events.
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// MinScore drops events scoring below the threshold.
	MinScore int `json:"min_score,omitempty"`

	// Statuses is an allow-list of classification statuses.
	Statuses []event.Status `json:"statuses,omitempty"`
}

// IsEmpty reports whether the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Categories) == 0 &&
		len(f.Venues) == 0 &&
		!f.FreeOnly &&
		!f.WeekendsOnly &&
		f.MinScore == 0 &&
		len(f.Statuses) == 0
}

// Matches checks one event against all active criteria.
func (f *Filter) Matches(e *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if f.DateFrom != nil || f.DateTo != nil || f.WeekendsOnly {
		d := e.ParsedDate()
		if d.IsZero() {
			return false
		}
		if f.DateFrom != nil && d.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && d.After(*f.DateTo) {
			return false
		}
		if f.WeekendsOnly {
			wd := d.Weekday()
			if wd != time.Saturday && wd != time.Sunday {
				return false
			}
		}
	}

	if len(f.Categories) > 0 {
		matched := false
		for _, c := range f.Categories {
			if strings.EqualFold(e.Category, c) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Venues) > 0 {
		matched := false
		loc := strings.ToLower(e.Location)
		for _, v := range f.Venues {
			if strings.Contains(loc, strings.ToLower(v)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.FreeOnly && !isFree(e) {
		return false
	}

	if f.MinScore > 0 && e.QualityScore < f.MinScore {
		return false
	}

	if len(f.Statuses) > 0 {
		matched := false
		for _, s := range f.Statuses {
			if e.Status == s {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply filters a list of events, preserving order. An empty filter
// returns the input unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	var filtered []*event.Event
	for _, e := range events {
		if f.Matches(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// String returns a human-readable description of the active criteria.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "no active filters"
	}

	var parts []string
	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("from %s", f.DateFrom.Format(event.DateLayout)))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("to %s", f.DateTo.Format(event.DateLayout)))
	}
	if len(f.Categories) > 0 {
		parts = append(parts, fmt.Sprintf("categories %s", strings.Join(f.Categories, ",")))
	}
	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("venues %s", strings.Join(f.Venues, ",")))
	}
	if f.FreeOnly {
		parts = append(parts, "free only")
	}
	if f.WeekendsOnly {
		parts = append(parts, "weekends only")
	}
	if f.MinScore > 0 {
		parts = append(parts, fmt.Sprintf("min score %d", f.MinScore))
	}
	if len(f.Statuses) > 0 {
		ss := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			ss[i] = string(s)
		}
		parts = append(parts, fmt.Sprintf("statuses %s", strings.Join(ss, ",")))
	}
	return strings.Join(parts, " | ")
}

func isFree(e *event.Event) bool {
	if e.Category == "free" {
		return true
	}
	p := strings.ToLower(strings.TrimSpace(e.Price))
	return p == "" || p == "0" || p == "£0" || strings.Contains(p, "free")
}
