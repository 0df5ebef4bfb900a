package gateway

import (
	"context"
	"fmt"
	"io"

	"github.com/norwichevents/eventpipe/internal/event"
)

// DryRun prints what would be submitted without calling the real
// gateway. Every submission reports success.
type DryRun struct {
	w     io.Writer
	count int
}

// NewDryRun creates a dry-run gateway writing to w.
func NewDryRun(w io.Writer) *DryRun {
	return &DryRun{w: w}
}

// Submit prints the event instead of posting it.
func (d *DryRun) Submit(_ context.Context, e *event.Event) (*Result, error) {
	d.count++
	fmt.Fprintf(d.w, "[DRY RUN] Would submit: %s | %s | %s | %s | score=%d | %s\n",
		e.Name, e.Date, e.Time, e.Location, e.QualityScore, e.Status)
	return &Result{Success: true, ID: fmt.Sprintf("dry-run-%d", d.count)}, nil
}
