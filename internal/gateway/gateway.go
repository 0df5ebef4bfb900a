package gateway

import (
	"context"

	"github.com/norwichevents/eventpipe/internal/event"
)

// Result is the gateway's answer for one submission.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Gateway persists curated events for publication. A submission failure
// affects only that event; the orchestrator continues with the rest of
// the batch.
type Gateway interface {
	Submit(ctx context.Context, e *event.Event) (*Result, error)
}
