package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/norwichevents/eventpipe/internal/event"
	"github.com/norwichevents/eventpipe/internal/feed"
	"github.com/norwichevents/eventpipe/internal/pipeline"
)

// OutputFormat specifies the output format.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteSummary writes a run summary in the given format.
func WriteSummary(w io.Writer, s *pipeline.Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatText:
		return writeSummaryText(w, s)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeSummaryText(w io.Writer, s *pipeline.Summary) error {
	fmt.Fprintf(w, "Run %s finished in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Fetched:    %d", s.Fetched)
	if len(s.SourceErrors) > 0 {
		fmt.Fprintf(w, " (%d sources failed)", len(s.SourceErrors))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Dropped:    %d at normalization\n", s.NormalizeDropped)

	rejects := 0
	for _, n := range s.ValidationRejects {
		rejects += n
	}
	fmt.Fprintf(w, "  Rejected:   %d at validation\n", rejects)
	fmt.Fprintf(w, "  Duplicates: %d removed\n", s.DuplicatesRemoved)
	fmt.Fprintf(w, "  Classified: %d approved, %d pending, %d rejected\n", s.Approved, s.Pending, s.Rejected)
	fmt.Fprintf(w, "  Submitted:  %d", s.Submitted)
	if s.SubmitFailed > 0 {
		fmt.Fprintf(w, " (%d failed)", s.SubmitFailed)
	}
	fmt.Fprintln(w)
	if s.BackupPath != "" {
		fmt.Fprintf(w, "  Backup:     %s\n", s.BackupPath)
	}
	return nil
}

// WriteEvents writes an exported event list in the given format.
func WriteEvents(w io.Writer, events []*event.Event, source string, filter *feed.Filter, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, struct {
			Source string         `json:"source"`
			Filter string         `json:"filter"`
			Count  int            `json:"count"`
			Events []*event.Event `json:"events"`
		}{source, filter.String(), len(events), events})
	case FormatText:
		return writeEventsText(w, events, source, filter)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeEventsText(w io.Writer, events []*event.Event, source string, filter *feed.Filter) error {
	fmt.Fprintf(w, "From %s (%s):\n", source, filter)

	if len(events) == 0 {
		fmt.Fprintln(w, "No matching events.")
		return nil
	}

	for _, e := range events {
		fmt.Fprintf(w, "  %s | %s", e.Date, e.Name)
		if e.Time != "" {
			fmt.Fprintf(w, " at %s", e.Time)
		}
		fmt.Fprintf(w, " | %s | %s | score=%d | %s\n", e.Location, e.Category, e.QualityScore, e.Status)
	}
	fmt.Fprintf(w, "\nTotal: %d events\n", len(events))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
