package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
	"github.com/norwichevents/eventpipe/internal/gateway"
	"github.com/norwichevents/eventpipe/internal/metrics"
	"github.com/norwichevents/eventpipe/internal/source"
	"github.com/norwichevents/eventpipe/internal/storage"
)

type fakeSource struct {
	name       string
	candidates []event.RawCandidate
	err        error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context) ([]event.RawCandidate, error) {
	return f.candidates, f.err
}

type fakeGateway struct {
	submitted []*event.Event
	fail      bool
	refuse    bool
}

func (f *fakeGateway) Submit(_ context.Context, e *event.Event) (*gateway.Result, error) {
	if f.fail {
		return nil, errors.New("gateway unreachable")
	}
	if f.refuse {
		return &gateway.Result{Success: false, Error: "sheet full"}, nil
	}
	f.submitted = append(f.submitted, e)
	return &gateway.Result{Success: true, ID: fmt.Sprintf("row-%d", len(f.submitted))}, nil
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(event.DateLayout)
}

func candidate(source string, fields map[string]string) event.RawCandidate {
	return event.RawCandidate{
		Source:    source,
		Payload:   event.StructuredPayload(fields),
		FetchedAt: time.Now().UTC(),
	}
}

func goodCandidate(source, name string) event.RawCandidate {
	return candidate(source, map[string]string{
		"name":        name,
		"date":        futureDate(10),
		"time":        "20:00",
		"location":    "Norwich Arts Centre",
		"category":    "gigs",
		"description": "An evening of live music with support from local acts on both stages.",
		"ticketLink":  "https://tickets.example.com/" + name,
	})
}

func newTestPipeline(t *testing.T, sources []*fakeSource, gw gateway.Gateway) *Pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.TrustedSources = []string{"trusted"}
	cfg.RequestDelay = time.Millisecond

	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	srcs := make([]source.Source, len(sources))
	for i, s := range sources {
		srcs[i] = s
	}

	p, err := New(cfg, srcs, gw, store, zerolog.Nop(), metrics.New())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.sleep = func(time.Duration) {}
	return p
}

func TestRunHappyPath(t *testing.T) {
	gw := &fakeGateway{}
	p := newTestPipeline(t, []*fakeSource{
		{name: "skiddle", candidates: []event.RawCandidate{
			goodCandidate("skiddle", "Live Jazz Night"),
			goodCandidate("skiddle", "Indie Showcase"),
		}},
	}, gw)

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Fetched != 2 || sum.Total != 2 {
		t.Errorf("fetched=%d total=%d, want 2/2", sum.Fetched, sum.Total)
	}
	if sum.Approved != 2 {
		t.Errorf("approved = %d, want 2 (complete events with ticket links)", sum.Approved)
	}
	if sum.Submitted != 2 || len(gw.submitted) != 2 {
		t.Errorf("submitted = %d (gateway saw %d), want 2", sum.Submitted, len(gw.submitted))
	}
	if sum.SourceYield["skiddle"] != 2 {
		t.Errorf("source yield = %v", sum.SourceYield)
	}
	for _, e := range gw.submitted {
		if e.QualityScore < 0 || e.QualityScore > 100 {
			t.Errorf("quality score %d outside [0,100]", e.QualityScore)
		}
	}
}

func TestRunSourceFailureIsolation(t *testing.T) {
	gw := &fakeGateway{}
	p := newTestPipeline(t, []*fakeSource{
		{name: "broken", err: errors.New("connection refused")},
		{name: "working", candidates: []event.RawCandidate{goodCandidate("working", "Comedy Gala")}},
	}, gw)

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("one failing source must not abort the run: %v", err)
	}

	if sum.SourceErrors["broken"] != 1 {
		t.Errorf("source errors = %v, want broken:1", sum.SourceErrors)
	}
	if sum.Total != 1 || sum.Submitted != 1 {
		t.Errorf("total=%d submitted=%d, want 1/1 from the working source", sum.Total, sum.Submitted)
	}
}

func TestRunCrossSourceDedup(t *testing.T) {
	// The same event from two sources, one with a ticket link and one
	// with a description: one survivor carrying both.
	date := futureDate(14)
	gw := &fakeGateway{}
	p := newTestPipeline(t, []*fakeSource{
		{name: "skiddle", candidates: []event.RawCandidate{
			candidate("skiddle", map[string]string{
				"name": "Comedy Show", "date": date, "location": "Playhouse",
				"category": "theatre", "ticketLink": "https://tickets.example.com/comedy",
			}),
		}},
		{name: "playhouse", candidates: []event.RawCandidate{
			candidate("playhouse", map[string]string{
				"name": "Comedy Show", "date": date, "location": "Playhouse",
				"category":    "theatre",
				"description": "A stand-up night featuring four circuit regulars and a headline act.",
			}),
		}},
	}, gw)

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Total != 1 || sum.DuplicatesRemoved != 1 {
		t.Fatalf("total=%d duplicates=%d, want 1/1", sum.Total, sum.DuplicatesRemoved)
	}
	survivor := sum.Events[0]
	if survivor.TicketLink == "" || survivor.Description == "" {
		t.Errorf("survivor should carry donated fields: link=%q desc=%q",
			survivor.TicketLink, survivor.Description)
	}
	if survivor.Source != "skiddle" {
		t.Errorf("first-seen source must win, got %q", survivor.Source)
	}
}

func TestRunValidationRejectCounts(t *testing.T) {
	gw := &fakeGateway{}
	p := newTestPipeline(t, []*fakeSource{
		{name: "mixed", candidates: []event.RawCandidate{
			goodCandidate("mixed", "Valid Event"),
			// Past date: survives normalization, rejected by the validator.
			candidate("mixed", map[string]string{
				"name": "Yesterday Gig", "date": time.Now().UTC().AddDate(0, 0, -1).Format(event.DateLayout),
				"location": "The Halls", "category": "gigs",
			}),
			// Missing date and no fallback: dropped at normalization.
			candidate("mixed", map[string]string{
				"name": "Dateless Party", "category": "nightlife",
			}),
		}},
	}, gw)

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.ValidationRejects["non-future-date"] != 1 {
		t.Errorf("validation rejects = %v, want non-future-date:1", sum.ValidationRejects)
	}
	if sum.NormalizeDropped != 1 {
		t.Errorf("normalize dropped = %d, want 1", sum.NormalizeDropped)
	}
	if sum.Total != 1 {
		t.Errorf("total = %d, want 1", sum.Total)
	}
}

func TestRunRejectedOmittedFromSubmission(t *testing.T) {
	gw := &fakeGateway{}
	// Bare-minimum event: core fields only, scores below the minimum
	// threshold, classified Rejected and never submitted.
	p := newTestPipeline(t, []*fakeSource{
		{name: "thin", candidates: []event.RawCandidate{
			candidate("thin", map[string]string{
				"name": "Bare Listing", "date": futureDate(5),
				"location": "Somewhere", "category": "community",
			}),
		}},
	}, gw)

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", sum.Rejected)
	}
	if len(gw.submitted) != 0 {
		t.Errorf("rejected events must not reach the gateway, got %d", len(gw.submitted))
	}
}

func TestRunBackupWhenGatewayUnconfigured(t *testing.T) {
	p := newTestPipeline(t, []*fakeSource{
		{name: "skiddle", candidates: []event.RawCandidate{goodCandidate("skiddle", "Jazz Night")}},
	}, nil)

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.BackupPath == "" {
		t.Fatal("expected backup document with no gateway configured")
	}
}

func TestRunBackupWhenAllSubmissionsFail(t *testing.T) {
	p := newTestPipeline(t, []*fakeSource{
		{name: "skiddle", candidates: []event.RawCandidate{goodCandidate("skiddle", "Jazz Night")}},
	}, &fakeGateway{fail: true})

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("submission failures must not abort the run: %v", err)
	}

	if sum.SubmitFailed != 1 || sum.Submitted != 0 {
		t.Errorf("submitted=%d failed=%d, want 0/1", sum.Submitted, sum.SubmitFailed)
	}
	if sum.BackupPath == "" {
		t.Error("expected backup document when the gateway is unreachable")
	}
}

func TestRunGatewayRefusalCounted(t *testing.T) {
	p := newTestPipeline(t, []*fakeSource{
		{name: "skiddle", candidates: []event.RawCandidate{goodCandidate("skiddle", "Jazz Night")}},
	}, &fakeGateway{refuse: true})

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.SubmitFailed != 1 {
		t.Errorf("success=false from the gateway must count as failed, got %d", sum.SubmitFailed)
	}
}

func TestRunDeterminism(t *testing.T) {
	build := func() *Pipeline {
		return newTestPipeline(t, []*fakeSource{
			{name: "a", candidates: []event.RawCandidate{
				goodCandidate("a", "Jazz Night"),
				goodCandidate("a", "Quiz Night"),
			}},
			{name: "b", candidates: []event.RawCandidate{goodCandidate("b", "Jazz Night")}},
		}, &fakeGateway{})
	}

	sum1, err := build().Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sum2, err := build().Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	extract := func(s *Summary) []string {
		out := make([]string, len(s.Events))
		for i, e := range s.Events {
			out[i] = fmt.Sprintf("%s|%s|%d|%s", e.Name, e.Date, e.QualityScore, e.Status)
		}
		return out
	}

	if !reflect.DeepEqual(extract(sum1), extract(sum2)) {
		t.Errorf("identical input must produce identical output:\n%v\n%v", extract(sum1), extract(sum2))
	}
}

func TestNewRequiresSources(t *testing.T) {
	store, _ := storage.New(t.TempDir())
	if _, err := New(config.Default(), nil, nil, store, zerolog.Nop(), metrics.New()); err == nil {
		t.Error("a pipeline with no sources must be a fatal construction error")
	}
}
