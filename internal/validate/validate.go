// Package validate gate-keeps event invariants before the pipeline
// spends dedup and scoring work on a candidate. Rejects carry one of
// four reasons and are counted, never retried.
package validate

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

// Reason classifies why an event was rejected.
type Reason string

const (
	ReasonMissingField    Reason = "missing-required-field"
	ReasonInvalidCategory Reason = "invalid-category"
	ReasonNonFutureDate   Reason = "non-future-date"
	ReasonNameLength      Reason = "name-length-violation"
)

// Reject is the outcome for an event that fails validation.
type Reject struct {
	Reason Reason
	Field  string
}

func (r *Reject) Error() string {
	if r.Field != "" {
		return fmt.Sprintf("validation failed: %s (%s)", r.Reason, r.Field)
	}
	return fmt.Sprintf("validation failed: %s", r.Reason)
}

// Validator checks the structural and policy invariants every surviving
// event must satisfy.
type Validator struct {
	cfg      config.Config
	ref      time.Time
	validate *validator.Validate
}

// New creates a Validator with ref as the run's reference time. Date
// validity is relative to this single instant for the whole batch.
func New(cfg config.Config, ref time.Time) *Validator {
	return &Validator{
		cfg:      cfg,
		ref:      ref,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Check returns nil when e satisfies every invariant, or a *Reject
// describing the first violation: required fields present, name length
// within [3,200], category in the configured set, date parseable and
// strictly in the future.
func (v *Validator) Check(e *event.Event) error {
	if err := v.validate.Struct(e); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok || len(verrs) == 0 {
			return &Reject{Reason: ReasonMissingField}
		}
		fe := verrs[0]
		switch fe.Tag() {
		case "min", "max":
			return &Reject{Reason: ReasonNameLength, Field: fe.Field()}
		default:
			return &Reject{Reason: ReasonMissingField, Field: fe.Field()}
		}
	}

	if !v.cfg.IsCategory(e.Category) {
		return &Reject{Reason: ReasonInvalidCategory, Field: "Category"}
	}

	if e.ParsedDate().IsZero() || !e.IsFuture(v.ref) {
		return &Reject{Reason: ReasonNonFutureDate, Field: "Date"}
	}

	return nil
}
