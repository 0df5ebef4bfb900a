package dedupe

import (
	"testing"

	"github.com/norwichevents/eventpipe/internal/event"
)

func TestDeduplicateIdempotence(t *testing.T) {
	a := &event.Event{Name: "Comedy Show", Date: "2026-03-01", Location: "Playhouse"}
	b := &event.Event{Name: "Comedy Show", Date: "2026-03-01", Location: "Playhouse"}

	unique, removed := Deduplicate([]*event.Event{a, b})

	if len(unique) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(unique))
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if unique[0] != a {
		t.Error("first-seen instance must win")
	}
}

func TestDeduplicateDonation(t *testing.T) {
	// Two candidates for the same event from different sources: one
	// carries a ticket link, the other a description. The survivor ends
	// up with both.
	a := &event.Event{
		Name: "Comedy Show", Date: "2026-03-01", Location: "Playhouse",
		Source: "skiddle", TicketLink: "https://tickets.example.com/comedy",
	}
	b := &event.Event{
		Name: "Comedy Show", Date: "2026-03-01", Location: "Playhouse",
		Source: "playhouse", Description: "Stand-up night with four acts.",
	}

	unique, removed := Deduplicate([]*event.Event{a, b})

	if len(unique) != 1 || removed != 1 {
		t.Fatalf("expected 1 survivor and 1 removed, got %d and %d", len(unique), removed)
	}
	s := unique[0]
	if s.TicketLink != "https://tickets.example.com/comedy" {
		t.Errorf("survivor lost its ticket link: %q", s.TicketLink)
	}
	if s.Description != "Stand-up night with four acts." {
		t.Errorf("duplicate description not donated: %q", s.Description)
	}
	if s.Source != "skiddle" {
		t.Errorf("survivor provenance must be first-seen: %q", s.Source)
	}
}

func TestDeduplicateNeverOverwrites(t *testing.T) {
	a := &event.Event{
		Name: "Comedy Show", Date: "2026-03-01", Location: "Playhouse",
		Description: "Original description.", Price: "£12",
	}
	b := &event.Event{
		Name: "Comedy Show", Date: "2026-03-01", Location: "Playhouse",
		Description: "Competing description.", Price: "£15", ImageURL: "https://example.com/poster.jpg",
	}

	unique, _ := Deduplicate([]*event.Event{a, b})

	s := unique[0]
	if s.Description != "Original description." {
		t.Errorf("populated description was overwritten: %q", s.Description)
	}
	if s.Price != "£12" {
		t.Errorf("populated price was overwritten: %q", s.Price)
	}
	if s.ImageURL != "https://example.com/poster.jpg" {
		t.Errorf("empty image should have been donated: %q", s.ImageURL)
	}
}

func TestDeduplicateKeyCanonicalization(t *testing.T) {
	a := &event.Event{Name: "Comedy Show!", Date: "2026-03-01", Location: "The Playhouse"}
	b := &event.Event{Name: "comedy show", Date: "2026-03-01", Location: "the playhouse"}

	unique, _ := Deduplicate([]*event.Event{a, b})
	if len(unique) != 1 {
		t.Errorf("punctuation and case variants should collapse, got %d survivors", len(unique))
	}
}

func TestDeduplicateDistinctEventsSurvive(t *testing.T) {
	events := []*event.Event{
		{Name: "Comedy Show", Date: "2026-03-01", Location: "Playhouse"},
		{Name: "Comedy Show", Date: "2026-03-02", Location: "Playhouse"},
		{Name: "Comedy Show", Date: "2026-03-01", Location: "The Halls"},
	}

	unique, removed := Deduplicate(events)
	if len(unique) != 3 || removed != 0 {
		t.Errorf("distinct events must all survive, got %d survivors %d removed", len(unique), removed)
	}
}

func TestDeduplicateStableOrder(t *testing.T) {
	events := []*event.Event{
		{Name: "Alpha", Date: "2026-03-01", Location: "Venue"},
		{Name: "Beta", Date: "2026-03-01", Location: "Venue"},
		{Name: "Alpha", Date: "2026-03-01", Location: "Venue"},
		{Name: "Gamma", Date: "2026-03-01", Location: "Venue"},
	}

	unique, _ := Deduplicate(events)

	want := []string{"Alpha", "Beta", "Gamma"}
	if len(unique) != len(want) {
		t.Fatalf("expected %d survivors, got %d", len(want), len(unique))
	}
	for i, name := range want {
		if unique[i].Name != name {
			t.Errorf("survivor %d = %q, want %q (arrival order must be stable)", i, unique[i].Name, name)
		}
	}
}
