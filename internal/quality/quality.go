// Package quality assigns each surviving event a 0-100 score from
// additive weighted signals and maps that score to a publication
// status. Both the weight table and the thresholds come from
// configuration; the algorithm itself has no magic numbers.
package quality

import (
	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

// Scorer computes completeness/trust scores.
type Scorer struct {
	cfg config.Config
}

// NewScorer creates a Scorer using the config's weight table and
// trusted-source list.
func NewScorer(cfg config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the deterministic quality score for e, clamped to
// [0,100]. The signals, in table order: core-field completeness (with a
// lesser tier when only required fields are present), ticket link,
// trusted source, description length band, price and image presence.
func (s *Scorer) Score(e *event.Event) int {
	w := s.cfg.Scoring
	score := 0

	if e.Name != "" && e.Date != "" && e.Time != "" && e.Location != "" && e.Description != "" {
		score += w.CoreComplete
	} else {
		score += w.PartialCore
	}

	if e.TicketLink != "" {
		score += w.TicketLink
	}

	if s.cfg.IsTrustedSource(e.Source) {
		score += w.TrustedSource
	}

	if n := len(e.Description); n > w.DescriptionMin && n < w.DescriptionMax {
		score += w.DescriptionBand
	} else if n > 0 {
		score += w.ShortDescription
	}

	if e.Price != "" {
		score += w.Price
	}

	if e.ImageURL != "" {
		score += w.Image
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Classifier maps scores to statuses against the two configured
// thresholds. It is a stateless total function: every score gets a
// status, and a higher score never yields a worse one.
type Classifier struct {
	cfg config.Config
}

// NewClassifier creates a Classifier from the config's thresholds.
func NewClassifier(cfg config.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify returns the publication status for score.
func (c *Classifier) Classify(score int) event.Status {
	switch {
	case score >= c.cfg.Thresholds.AutoApprove:
		return event.StatusApproved
	case score >= c.cfg.Thresholds.MinQualityScore:
		return event.StatusPending
	default:
		return event.StatusRejected
	}
}
