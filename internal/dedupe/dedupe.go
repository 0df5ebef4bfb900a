// Package dedupe collapses a batch to one event per dedup key.
//
// Candidates are walked in stable arrival order: the first instance of
// a key becomes canonical and later duplicates donate any optional
// fields the survivor is missing before being discarded. Canonicalizing
// the key (case folding, punctuation stripping) can collapse two
// genuinely distinct events; that false-positive rate is accepted.
package dedupe

import "github.com/norwichevents/eventpipe/internal/event"

// Deduplicate returns the unique events in arrival order and the number
// of duplicates removed.
func Deduplicate(events []*event.Event) ([]*event.Event, int) {
	seen := make(map[string]*event.Event, len(events))
	unique := make([]*event.Event, 0, len(events))
	removed := 0

	for _, e := range events {
		key := e.DedupKey()
		if survivor, ok := seen[key]; ok {
			donate(survivor, e)
			removed++
			continue
		}
		seen[key] = e
		unique = append(unique, e)
	}

	return unique, removed
}

// donate copies optional fields from a discarded duplicate into the
// survivor. Already-populated fields are never overwritten.
func donate(survivor, dup *event.Event) {
	if survivor.Description == "" {
		survivor.Description = dup.Description
	}
	if survivor.TicketLink == "" {
		survivor.TicketLink = dup.TicketLink
	}
	if survivor.Price == "" {
		survivor.Price = dup.Price
	}
	if survivor.ImageURL == "" {
		survivor.ImageURL = dup.ImageURL
	}
	if survivor.Time == "" {
		survivor.Time = dup.Time
	}
	if survivor.Address == "" {
		survivor.Address = dup.Address
	}
}
