package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/norwichevents/eventpipe/internal/event"
)

// SortOrder represents the available export sort orders.
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByName  SortOrder = "name"
	SortByScore SortOrder = "score"
)

// sortEvents sorts events in place according to the given order.
func sortEvents(events []*event.Event, order SortOrder) error {
	switch order {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByName:
		sort.SliceStable(events, func(i, j int) bool {
			a, b := strings.ToLower(events[i].Name), strings.ToLower(events[j].Name)
			if a != b {
				return a < b
			}
			return compareByDate(events[i], events[j])
		})
	case SortByScore:
		// Highest score first.
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].QualityScore != events[j].QualityScore {
				return events[i].QualityScore > events[j].QualityScore
			}
			return compareByDate(events[i], events[j])
		})
	default:
		return fmt.Errorf("unknown sort order: %s (must be date, name or score)", order)
	}
	return nil
}

// compareByDate orders by parsed date, valid dates before invalid ones.
func compareByDate(a, b *event.Event) bool {
	da, db := a.ParsedDate(), b.ParsedDate()

	if !da.IsZero() && !db.IsZero() {
		if !da.Equal(db) {
			return da.Before(db)
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}
	if !da.IsZero() {
		return true
	}
	if !db.IsZero() {
		return false
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}
