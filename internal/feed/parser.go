package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/norwichevents/eventpipe/internal/event"
)

// ParseDateRange parses a date range expression for export filtering.
//
// Supported forms:
//   - "2026-09-01..2026-09-15" - explicit range, inclusive
//   - "2026-09-01"             - a single day
//   - "september" or "sep"     - the whole month, current or next year
//
// Start is at 00:00:00 and end at 23:59:59 UTC.
func ParseDateRange(input string) (*time.Time, *time.Time, error) {
	return parseDateRange(input, time.Now().UTC())
}

func parseDateRange(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if a, b, ok := strings.Cut(input, ".."); ok {
		from, err := time.Parse(event.DateLayout, strings.TrimSpace(a))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date %q", a)
		}
		to, err := time.Parse(event.DateLayout, strings.TrimSpace(b))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date %q", b)
		}
		if from.After(to) {
			return nil, nil, fmt.Errorf("start date must not be after end date")
		}
		end := endOfDay(to)
		return &from, &end, nil
	}

	if d, err := time.Parse(event.DateLayout, input); err == nil {
		end := endOfDay(d)
		return &d, &end, nil
	}

	if month, ok := parseMonth(input); ok {
		year := now.Year()
		// A month already behind us means next year.
		if month < now.Month() {
			year++
		}
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		end := endOfDay(from.AddDate(0, 1, -1))
		return &from, &end, nil
	}

	return nil, nil, fmt.Errorf("unrecognized date range: %q", input)
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.UTC)
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

func parseMonth(s string) (time.Month, bool) {
	m, ok := months[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}
