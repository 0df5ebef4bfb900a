package quality

import (
	"strings"
	"testing"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.TrustedSources = []string{"Eventbrite", "Theatre Royal Norwich", "Norwich Arts Centre"}
	return cfg
}

func TestScoreTrustedCompleteEvent(t *testing.T) {
	// A complete event with a ticket link from a trusted source and a
	// description inside the band scores at least
	// 40 (core) + 20 (ticket) + 15 (trusted) + 15 (description) = 90
	// and classifies as Approved.
	cfg := testConfig()
	s := NewScorer(cfg)

	e := &event.Event{
		Name:        "Live Jazz Night",
		Date:        "2026-09-12",
		Time:        "20:00",
		Location:    "Norwich Arts Centre",
		Category:    "gigs",
		Description: strings.Repeat("Jazz from the city's finest, ", 3), // ~87 chars
		TicketLink:  "https://tickets.example.com/jazz",
		Source:      "Norwich Arts Centre",
	}

	score := s.Score(e)
	if score < 85 {
		t.Errorf("score = %d, want >= 85", score)
	}
	if got := NewClassifier(cfg).Classify(score); got != event.StatusApproved {
		t.Errorf("status = %s, want Approved", got)
	}
}

func TestScoreSignals(t *testing.T) {
	cfg := testConfig()
	s := NewScorer(cfg)

	base := event.Event{
		Name: "Quiz Night", Date: "2026-09-12", Location: "The Murderers", Category: "community",
	}

	tests := []struct {
		name   string
		mutate func(*event.Event)
		want   int
	}{
		{
			name:   "required fields only gets partial core",
			mutate: func(e *event.Event) {},
			want:   15,
		},
		{
			name:   "ticket link bonus",
			mutate: func(e *event.Event) { e.TicketLink = "https://example.com/t" },
			want:   15 + 20,
		},
		{
			name:   "trusted source bonus",
			mutate: func(e *event.Event) { e.Source = "Eventbrite" },
			want:   15 + 15,
		},
		{
			name:   "untrusted source no bonus",
			mutate: func(e *event.Event) { e.Source = "random-blog" },
			want:   15,
		},
		{
			name:   "short description gets lesser bonus",
			mutate: func(e *event.Event) { e.Description = "Weekly quiz." },
			want:   15 + 5,
		},
		{
			name:   "description in band",
			mutate: func(e *event.Event) { e.Description = strings.Repeat("q", 120) },
			want:   15 + 15,
		},
		{
			name:   "overlong description gets lesser bonus",
			mutate: func(e *event.Event) { e.Description = strings.Repeat("q", 600) },
			want:   15 + 5,
		},
		{
			name:   "price bonus",
			mutate: func(e *event.Event) { e.Price = "Free" },
			want:   15 + 10,
		},
		{
			name:   "image bonus",
			mutate: func(e *event.Event) { e.ImageURL = "https://example.com/p.jpg" },
			want:   15 + 5,
		},
		{
			name: "core completeness needs time and description",
			mutate: func(e *event.Event) {
				e.Time = "20:00"
				e.Description = strings.Repeat("q", 120)
			},
			want: 40 + 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			if got := s.Score(&e); got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreClamped(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.CoreComplete = 90
	cfg.Scoring.TicketLink = 90
	s := NewScorer(cfg)

	e := &event.Event{
		Name: "Big Night", Date: "2026-09-12", Time: "20:00",
		Location: "The Halls", Description: strings.Repeat("x", 100),
		TicketLink: "https://example.com/t",
	}

	if got := s.Score(e); got != 100 {
		t.Errorf("score = %d, want clamp at 100", got)
	}
}

func TestClassifyThresholds(t *testing.T) {
	c := NewClassifier(testConfig()) // min 50, auto-approve 70

	tests := []struct {
		score int
		want  event.Status
	}{
		{0, event.StatusRejected},
		{49, event.StatusRejected},
		{50, event.StatusPending},
		{69, event.StatusPending},
		{70, event.StatusApproved},
		{100, event.StatusApproved},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestClassifyMonotone(t *testing.T) {
	c := NewClassifier(testConfig())

	rank := map[event.Status]int{
		event.StatusRejected: 0,
		event.StatusPending:  1,
		event.StatusApproved: 2,
	}

	prev := c.Classify(0)
	for score := 1; score <= 100; score++ {
		cur := c.Classify(score)
		if rank[cur] < rank[prev] {
			t.Fatalf("status degraded from %s to %s between %d and %d", prev, cur, score-1, score)
		}
		prev = cur
	}
}
