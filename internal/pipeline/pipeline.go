package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/dedupe"
	"github.com/norwichevents/eventpipe/internal/event"
	"github.com/norwichevents/eventpipe/internal/gateway"
	"github.com/norwichevents/eventpipe/internal/metrics"
	"github.com/norwichevents/eventpipe/internal/normalize"
	"github.com/norwichevents/eventpipe/internal/quality"
	"github.com/norwichevents/eventpipe/internal/source"
	"github.com/norwichevents/eventpipe/internal/storage"
	"github.com/norwichevents/eventpipe/internal/validate"
)

// Summary is the run's observable output besides the submitted events.
type Summary struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	SourceYield  map[string]int `json:"source_yield"`
	SourceErrors map[string]int `json:"source_errors,omitempty"`

	Fetched           int            `json:"fetched"`
	NormalizeDropped  int            `json:"normalize_dropped"`
	ValidationRejects map[string]int `json:"validation_rejects,omitempty"`
	DuplicatesRemoved int            `json:"duplicates_removed"`

	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`

	Submitted    int    `json:"submitted"`
	SubmitFailed int    `json:"submit_failed"`
	BackupPath   string `json:"backup_path,omitempty"`

	// Events is the final classified set in processing order, all
	// statuses included. Callers partition by Status.
	Events []*event.Event `json:"events,omitempty"`
}

// Pipeline drives one batch through every stage: fetch, normalize,
// validate, dedupe, score, classify, submit. Items flow strictly
// forward and are never mutated after handoff to the next stage.
type Pipeline struct {
	cfg     config.Config
	sources []source.Source
	gw      gateway.Gateway // nil means unconfigured: export to backup
	store   *storage.Storage
	log     zerolog.Logger
	met     *metrics.Metrics

	// sleep is replaceable in tests so the inter-request delay does not
	// slow them down.
	sleep func(time.Duration)
}

// New creates a Pipeline. gw may be nil, in which case the final set is
// written to the backup document instead of submitted.
func New(cfg config.Config, sources []source.Source, gw gateway.Gateway, store *storage.Storage, log zerolog.Logger, met *metrics.Metrics) (*Pipeline, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	return &Pipeline{
		cfg:     cfg,
		sources: sources,
		gw:      gw,
		store:   store,
		log:     log,
		met:     met,
		sleep:   time.Sleep,
	}, nil
}

// Run executes one batch. Only a total inability to run is an error;
// individual source failures, dropped candidates, validation rejects
// and submission failures degrade the output set and are reported in
// the summary.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now().UTC()
	sum := &Summary{
		RunID:             uuid.NewString(),
		StartedAt:         start,
		SourceYield:       make(map[string]int),
		SourceErrors:      make(map[string]int),
		ValidationRejects: make(map[string]int),
	}

	log := p.log.With().Str("run_id", sum.RunID).Logger()
	log.Info().Int("sources", len(p.sources)).Msg("starting pipeline run")

	normalizer := normalize.NewAt(p.cfg, log, start)
	validator := validate.New(p.cfg, start)

	// Fetch and accumulate. One failing source must not abort the run.
	var accumulated []*event.Event
	for i, src := range p.sources {
		if i > 0 {
			p.sleep(p.cfg.RequestDelay)
		}

		candidates, err := src.Fetch(ctx)
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name()).Msg("source fetch failed, continuing with zero candidates")
			sum.SourceErrors[src.Name()]++
			p.met.FetchErrors.WithLabelValues(src.Name()).Inc()
			continue
		}

		sum.Fetched += len(candidates)
		sum.SourceYield[src.Name()] += len(candidates)
		p.met.Fetched.WithLabelValues(src.Name()).Add(float64(len(candidates)))
		log.Info().Str("source", src.Name()).Int("candidates", len(candidates)).Msg("source fetched")

		for _, rc := range candidates {
			e, ok := normalizer.Normalize(rc)
			if !ok {
				sum.NormalizeDropped++
				p.met.Dropped.Inc()
				continue
			}
			if err := validator.Check(e); err != nil {
				reason := reasonOf(err)
				sum.ValidationRejects[reason]++
				p.met.Rejected.WithLabelValues(reason).Inc()
				continue
			}
			accumulated = append(accumulated, e)
		}
	}

	// Collapse duplicates across sources, then score and classify the
	// survivors.
	unique, removed := dedupe.Deduplicate(accumulated)
	sum.DuplicatesRemoved = removed
	p.met.Duplicates.Add(float64(removed))

	scorer := quality.NewScorer(p.cfg)
	classifier := quality.NewClassifier(p.cfg)
	for _, e := range unique {
		e.QualityScore = scorer.Score(e)
		e.Status = classifier.Classify(e.QualityScore)
		p.met.Classified.WithLabelValues(string(e.Status)).Inc()
		switch e.Status {
		case event.StatusApproved:
			sum.Approved++
		case event.StatusPending:
			sum.Pending++
		default:
			sum.Rejected++
		}
	}
	sum.Total = len(unique)
	sum.Events = unique

	p.deliver(ctx, log, sum)

	sum.Duration = time.Since(start)
	p.met.LastRunTime.SetToCurrentTime()
	p.met.RunSeconds.Observe(sum.Duration.Seconds())

	log.Info().
		Int("total", sum.Total).
		Int("approved", sum.Approved).
		Int("pending", sum.Pending).
		Int("rejected", sum.Rejected).
		Int("duplicates_removed", sum.DuplicatesRemoved).
		Int("submitted", sum.Submitted).
		Dur("duration", sum.Duration).
		Msg("pipeline run complete")

	return sum, nil
}

// deliver hands the curated set to the gateway, omitting Rejected
// events. With no gateway configured, or when every submission fails,
// the set is written to the backup document instead.
func (p *Pipeline) deliver(ctx context.Context, log zerolog.Logger, sum *Summary) {
	submittable := make([]*event.Event, 0, sum.Total)
	for _, e := range sum.Events {
		if e.Status != event.StatusRejected {
			submittable = append(submittable, e)
		}
	}
	if len(submittable) == 0 {
		return
	}

	if p.gw == nil {
		p.writeBackup(log, sum, submittable)
		return
	}

	for i, e := range submittable {
		if i > 0 {
			p.sleep(p.cfg.RequestDelay)
		}

		result, err := p.gw.Submit(ctx, e)
		if err != nil {
			log.Warn().Err(err).Str("event", e.Name).Msg("submission failed")
			sum.SubmitFailed++
			p.met.SubmitFails.Inc()
			continue
		}
		if !result.Success {
			log.Warn().Str("event", e.Name).Str("error", result.Error).Msg("gateway refused submission")
			sum.SubmitFailed++
			p.met.SubmitFails.Inc()
			continue
		}

		sum.Submitted++
		p.met.Submitted.Inc()
		log.Debug().Str("event", e.Name).Str("id", result.ID).Msg("event submitted")
	}

	if sum.Submitted == 0 && sum.SubmitFailed > 0 {
		p.writeBackup(log, sum, submittable)
	}
}

func (p *Pipeline) writeBackup(log zerolog.Logger, sum *Summary, events []*event.Event) {
	if p.store == nil {
		return
	}
	path, err := p.store.WriteBackup(sum.RunID, events)
	if err != nil {
		log.Error().Err(err).Msg("writing backup failed")
		return
	}
	sum.BackupPath = path
	log.Info().Str("path", path).Int("events", len(events)).Msg("backup written")
}

func reasonOf(err error) string {
	if rej, ok := err.(*validate.Reject); ok {
		return string(rej.Reason)
	}
	return "unknown"
}
