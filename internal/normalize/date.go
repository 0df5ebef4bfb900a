package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// absoluteLayouts are tried in priority order against the raw date text.
// UK day-first forms come before US forms because every configured
// source is a UK listing site.
var absoluteLayouts = []string{
	"2006-01-02",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"02 January 2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2.1.2006",
	"Jan 2 2006",
	"Jan 02 2006",
}

// yearlessLayouts are resolved to the next occurrence of that calendar
// day: this year if still ahead of the reference date, otherwise next
// year.
var yearlessLayouts = []string{
	"2 Jan",
	"02 Jan",
	"2 January",
	"02 January",
	"Jan 2",
	"Jan 02",
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
}

// ordinalSuffix strips "st", "nd", "rd", "th" from day numbers so
// "Saturday 14th March 2026" parses like "14 March 2026".
var ordinalSuffix = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)\b`)

// ParseDate resolves raw date text against ref using a fixed heuristic
// chain: absolute formats first, then relative terms (today, tomorrow,
// weekday names resolved to the next occurrence), then yearless
// calendar days. Returns false when nothing in the chain matches; it
// never manufactures a date itself - the explicit +7 day fallback is
// the normalizer's decision, not the parser's.
func ParseDate(raw string, ref time.Time) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}
	text = ordinalSuffix.ReplaceAllString(text, "$1")

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}

	lower := strings.ToLower(text)

	switch lower {
	case "today", "tonight":
		return dayOf(ref), true
	case "tomorrow":
		return dayOf(ref).AddDate(0, 0, 1), true
	}

	if wd, ok := weekdays[lower]; ok {
		return nextWeekday(ref, wd), true
	}

	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			resolved := time.Date(ref.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if !resolved.After(dayOf(ref)) {
				resolved = resolved.AddDate(1, 0, 0)
			}
			return resolved, true
		}
	}

	// Date may be embedded in longer text ("Fri 12 Sep 2026, doors 7pm").
	if t, ok := extractDate(text, ref); ok {
		return t, true
	}

	return time.Time{}, false
}

var (
	isoPattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	dayMonthYear   = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{4})\b`)
	dayMonthOnly   = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\b`)
	slashPattern   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	weekdayPattern = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// extractDate scans free text for a recognizable date fragment.
func extractDate(text string, ref time.Time) (time.Time, bool) {
	if m := isoPattern.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t, true
		}
	}

	if m := dayMonthYear.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthsByPrefix[strings.ToLower(m[2][:3])]
		year, _ := strconv.Atoi(m[3])
		if valid := validDay(year, month, day); valid {
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
		}
	}

	if m := slashPattern.FindString(text); m != "" {
		for _, layout := range []string{"02/01/2006", "2/1/2006", "02/01/06", "2/1/06"} {
			if t, err := time.Parse(layout, m); err == nil {
				return t, true
			}
		}
	}

	if m := dayMonthOnly.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthsByPrefix[strings.ToLower(m[2][:3])]
		resolved := time.Date(ref.Year(), month, day, 0, 0, 0, 0, time.UTC)
		if validDay(ref.Year(), month, day) {
			if !resolved.After(dayOf(ref)) {
				resolved = resolved.AddDate(1, 0, 0)
			}
			return resolved, true
		}
	}

	if m := weekdayPattern.FindString(text); m != "" {
		return nextWeekday(ref, weekdays[strings.ToLower(m)]), true
	}

	return time.Time{}, false
}

func validDay(year int, month time.Month, day int) bool {
	if day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && t.Month() == month
}

// nextWeekday returns the next occurrence of wd strictly after ref's
// day. A weekday name never resolves to the reference day itself.
func nextWeekday(ref time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return dayOf(ref).AddDate(0, 0, days)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var (
	// Dot-separated times are only accepted as the whole field, never
	// extracted from longer text: "19.30" is a time, but the "12.09"
	// inside "12.09.2026" is a date fragment.
	clockExact = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)
	clock24    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	clock12    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)\b`)
)

// ParseTime extracts a 24-hour HH:MM from raw time text. It handles
// "19:30", "19.30", "7pm", "7.30pm" and "7:30 PM" forms. Returns false
// when no time is recognizable; the normalizer leaves the field unset
// rather than inventing one.
func ParseTime(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}

	if m := clockExact.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}
		return "", false
	}

	if m := clock12.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute < 60 {
			if strings.EqualFold(m[3], "pm") && hour != 12 {
				hour += 12
			}
			if strings.EqualFold(m[3], "am") && hour == 12 {
				hour = 0
			}
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}
	}

	if m := clock24.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}
	}

	return "", false
}
