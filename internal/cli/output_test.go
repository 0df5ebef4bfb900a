package cli

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/norwichevents/eventpipe/internal/event"
	"github.com/norwichevents/eventpipe/internal/feed"
	"github.com/norwichevents/eventpipe/internal/pipeline"
)

func sampleSummary() *pipeline.Summary {
	return &pipeline.Summary{
		RunID:             "run-1",
		Duration:          1530 * time.Millisecond,
		Fetched:           12,
		NormalizeDropped:  2,
		ValidationRejects: map[string]int{"non-future-date": 1, "invalid-category": 1},
		DuplicatesRemoved: 1,
		Approved:          4,
		Pending:           2,
		Rejected:          1,
		Total:             7,
		Submitted:         6,
		SubmitFailed:      0,
	}
}

func TestWriteSummaryText(t *testing.T) {
	var buf strings.Builder
	if err := WriteSummary(&buf, sampleSummary(), FormatText); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Run run-1",
		"Fetched:    12",
		"Rejected:   2 at validation",
		"Duplicates: 1 removed",
		"4 approved, 2 pending, 1 rejected",
		"Submitted:  6",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryJSON(t *testing.T) {
	var buf strings.Builder
	if err := WriteSummary(&buf, sampleSummary(), FormatJSON); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["fetched"] != float64(12) {
		t.Errorf("fetched = %v", decoded["fetched"])
	}
}

func TestWriteEventsText(t *testing.T) {
	events := []*event.Event{
		{Name: "Jazz Night", Date: "2026-09-12", Time: "20:00", Location: "Arts Centre", Category: "gigs", QualityScore: 85, Status: event.StatusApproved},
	}

	var buf strings.Builder
	if err := WriteEvents(&buf, events, "events_x.json", &feed.Filter{}, FormatText); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Jazz Night", "at 20:00", "score=85", "Total: 1 events"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteEvents(&buf, nil, "events_x.json", &feed.Filter{}, FormatText); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if !strings.Contains(buf.String(), "No matching events.") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"yaml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := parseFormat(tt.in)
		if tt.wantErr != (err != nil) {
			t.Errorf("parseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
