package source

import (
	"context"
	"fmt"

	"github.com/norwichevents/eventpipe/internal/ai"
	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

// Source is one adapter fetching raw candidates from a single listing.
// A source is the unit of failure isolation: errors stay inside Fetch's
// return value and the orchestrator treats a failed source as zero
// candidates.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]event.RawCandidate, error)
}

// NewFromConfig builds a source adapter from its configuration entry.
func NewFromConfig(sc config.SourceConfig, cfg config.Config) (Source, error) {
	switch sc.Type {
	case "html":
		return NewHTMLSource(sc, cfg.FetchTimeout), nil
	case "ai":
		return NewAISource(sc, cfg.FetchTimeout, ai.New(cfg.AI)), nil
	case "file":
		return NewFileSource(sc), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", sc.Type)
	}
}
