package normalize

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

// DefaultDateOffset is the documented last-resort date default: when no
// date can be parsed and the fallback is enabled in config, the event
// is placed this many days after the reference time and flagged as
// defaulted. This manufactures data and is surfaced on the event so
// reviewers can see it.
const DefaultDateOffset = 7

// nameFields are tried in order when extracting a name from a
// structured payload.
var nameFields = []string{"name", "title", "heading", "event"}

var (
	dateFields     = []string{"date", "start_date", "when", "datetime"}
	timeFields     = []string{"time", "start_time", "doors"}
	locationFields = []string{"location", "venue", "place"}
	linkFields     = []string{"ticketLink", "ticket_link", "link", "url", "tickets"}
	imageFields    = []string{"image", "image_url", "flyer", "thumbnail"}
)

// Normalizer maps one RawCandidate to zero or one Event.
type Normalizer struct {
	cfg config.Config
	now func() time.Time
	log zerolog.Logger
}

// New creates a Normalizer. The reference time is captured once so an
// entire run shares one processing instant.
func New(cfg config.Config, log zerolog.Logger) *Normalizer {
	ref := time.Now().UTC()
	return &Normalizer{cfg: cfg, now: func() time.Time { return ref }, log: log}
}

// NewAt creates a Normalizer with a fixed reference time.
func NewAt(cfg config.Config, log zerolog.Logger, ref time.Time) *Normalizer {
	return &Normalizer{cfg: cfg, now: func() time.Time { return ref }, log: log}
}

// Normalize converts a raw candidate into a normalized event. The
// second return is false when the candidate is dropped: unusable name,
// unmapped category, unparseable date with the fallback disabled, or a
// malformed payload. A drop is a filtered-out item, not an error, and
// nothing here aborts the pipeline.
func (n *Normalizer) Normalize(rc event.RawCandidate) (*event.Event, bool) {
	if rc.Payload.IsZero() {
		n.log.Debug().Str("source", rc.Source).Msg("dropping candidate with empty payload")
		return nil, false
	}

	var e *event.Event
	var ok bool
	switch rc.Payload.Kind {
	case event.PayloadStructured:
		e, ok = n.fromStructured(rc)
	case event.PayloadText:
		e, ok = n.fromText(rc)
	default:
		n.log.Warn().Str("source", rc.Source).Msg("dropping candidate with malformed payload")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	e.Source = rc.Source
	e.SourceURL = rc.SourceURL
	e.ScrapedAt = rc.FetchedAt
	e.ID = event.GenerateID(rc.Source, e.Name+"|"+e.Date+"|"+e.Location)
	return e, true
}

func (n *Normalizer) fromStructured(rc event.RawCandidate) (*event.Event, bool) {
	p := rc.Payload

	name := firstField(p, nameFields)
	if name == "" {
		n.log.Debug().Str("source", rc.Source).Msg("dropping candidate without a usable name")
		return nil, false
	}

	date, defaulted, ok := n.resolveDate(firstField(p, dateFields), rc.Source)
	if !ok {
		return nil, false
	}

	category, ok := n.mapCategory(p.Field("category"), name, p.Field("description"))
	if !ok {
		n.log.Debug().Str("source", rc.Source).Str("name", name).
			Str("category", p.Field("category")).Msg("dropping candidate with unmapped category")
		return nil, false
	}

	e := &event.Event{
		Name:          name,
		Date:          date,
		Location:      strings.TrimSpace(firstField(p, locationFields)),
		Address:       strings.TrimSpace(p.Field("address")),
		Category:      category,
		Description:   strings.TrimSpace(p.Field("description")),
		TicketLink:    strings.TrimSpace(firstField(p, linkFields)),
		Price:         strings.TrimSpace(p.Field("price")),
		ImageURL:      strings.TrimSpace(firstField(p, imageFields)),
		DateDefaulted: defaulted,
	}

	if t, ok := ParseTime(firstField(p, timeFields)); ok {
		e.Time = t
	}

	return e, true
}

func (n *Normalizer) fromText(rc event.RawCandidate) (*event.Event, bool) {
	text := strings.TrimSpace(rc.Payload.Text)

	name := firstLine(text)
	if name == "" {
		n.log.Debug().Str("source", rc.Source).Msg("dropping text candidate without a usable name")
		return nil, false
	}

	date, defaulted, ok := n.resolveDate(text, rc.Source)
	if !ok {
		return nil, false
	}

	category, ok := n.mapCategory("", name, text)
	if !ok {
		n.log.Debug().Str("source", rc.Source).Str("name", name).
			Msg("dropping text candidate with unmapped category")
		return nil, false
	}

	e := &event.Event{
		Name:          name,
		Date:          date,
		Category:      category,
		DateDefaulted: defaulted,
	}

	if t, ok := ParseTime(text); ok {
		e.Time = t
	}

	// A venue line is the best location guess free text offers: the
	// second non-empty line, when present.
	if loc := secondLine(text); loc != "" {
		e.Location = loc
	}

	return e, true
}

// resolveDate runs the date heuristic chain and, when it comes up
// empty, applies the configured fallback. Returns the canonical date
// string, whether it was defaulted, and whether the candidate survives.
func (n *Normalizer) resolveDate(raw, source string) (string, bool, bool) {
	if t, ok := ParseDate(raw, n.now()); ok {
		return t.Format(event.DateLayout), false, true
	}

	if !n.cfg.DefaultDateFallback {
		n.log.Debug().Str("source", source).Str("raw", truncate(raw, 60)).
			Msg("dropping candidate with unparseable date")
		return "", false, false
	}

	fallback := n.now().AddDate(0, 0, DefaultDateOffset).Format(event.DateLayout)
	n.log.Warn().Str("source", source).Str("date", fallback).
		Msg("no parseable date, applying +7 day default")
	return fallback, true, true
}

// mapCategory resolves free-text category hints to the fixed category
// set. Exact members pass through; otherwise the hint table is scanned
// against the category text first, then the name and description.
// Unmapped candidates are dropped.
func (n *Normalizer) mapCategory(raw, name, description string) (string, bool) {
	cat := strings.ToLower(strings.TrimSpace(raw))
	if n.cfg.IsCategory(cat) {
		return cat, true
	}

	// Hint keys are scanned in sorted order so two hints matching the
	// same text always resolve the same way.
	hints := make([]string, 0, len(n.cfg.CategoryHints))
	for h := range n.cfg.CategoryHints {
		hints = append(hints, h)
	}
	sort.Strings(hints)

	for _, text := range []string{cat, strings.ToLower(name), strings.ToLower(description)} {
		if text == "" {
			continue
		}
		for _, hint := range hints {
			if strings.Contains(text, hint) {
				return n.cfg.CategoryHints[hint], true
			}
		}
	}

	return "", false
}

func firstField(p event.Payload, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(p.Field(k)); v != "" {
			return v
		}
	}
	return ""
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func secondLine(text string) string {
	seen := false
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			if seen {
				return line
			}
			seen = true
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
