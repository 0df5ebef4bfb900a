package event

import (
	"crypto/sha1"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date format used throughout the
// pipeline and the gateway contract.
const DateLayout = "2006-01-02"

// Event represents a normalized public event derived from one RawCandidate.
// JSON tags follow the gateway column names.
type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,min=3,max=200"`
	Date        string `json:"date" validate:"required"`           // YYYY-MM-DD
	Time        string `json:"time,omitempty"`                     // 24-hour HH:MM, empty if unknown
	Location    string `json:"location" validate:"required"`
	Address     string `json:"address,omitempty"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description,omitempty"`
	TicketLink  string `json:"ticketLink,omitempty"`
	Price       string `json:"price,omitempty"`
	ImageURL    string `json:"image,omitempty"`

	// Provenance, carried from the RawCandidate.
	Source    string    `json:"source"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	ScrapedAt time.Time `json:"scrapedAt"`

	QualityScore int    `json:"qualityScore"`
	Status       Status `json:"status"`

	// DateDefaulted marks events whose date was manufactured by the
	// normalizer's documented fallback rather than parsed from the source.
	DateDefaulted bool `json:"dateDefaulted,omitempty"`
}

// GenerateID creates a deterministic ID for an event based on its
// provenance and raw content.
func GenerateID(source, raw string) string {
	h := sha1.New()
	h.Write([]byte(source + "|" + raw))
	return fmt.Sprintf("%x", h.Sum(nil))
}

var nonWord = regexp.MustCompile(`[^\w]+`)

// canonical lowercases s and strips every non-word character.
func canonical(s string) string {
	return nonWord.ReplaceAllString(strings.ToLower(s), "")
}

// DedupKey returns the canonical identity of the real-world event:
// name, date and location with case and punctuation folded away. Two
// events with equal keys are considered the same event.
func (e *Event) DedupKey() string {
	return canonical(e.Name) + "_" + e.Date + "_" + canonical(e.Location)
}

// ParsedDate returns the event date as a time.Time, or the zero value if
// the date string is malformed.
func (e *Event) ParsedDate() time.Time {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsFuture reports whether the event date is strictly after the given
// reference date. Same-day events are not future by this policy.
func (e *Event) IsFuture(ref time.Time) bool {
	d := e.ParsedDate()
	if d.IsZero() {
		return false
	}
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return d.After(refDay)
}
