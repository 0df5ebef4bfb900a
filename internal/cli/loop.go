package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/norwichevents/eventpipe/internal/logger"
	"github.com/norwichevents/eventpipe/internal/metrics"
)

var (
	flagInterval    time.Duration
	flagMetricsAddr string
)

func newLoopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Run the pipeline on an interval until interrupted",
		RunE:  runLoop,
	}
	cmd.Flags().DurationVar(&flagInterval, "interval", 6*time.Hour, "Delay between runs")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9180)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print submissions instead of posting them")
	return cmd
}

func runLoop(cmd *cobra.Command, _ []string) error {
	if flagInterval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	met := metrics.New()
	p, cfg, err := buildPipeline(met)
	if err != nil {
		return err
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flagMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", met.Handler())
		srv := &http.Server{Addr: flagMetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer srv.Close()
		log.Info().Str("addr", flagMetricsAddr).Msg("serving metrics")
	}

	log.Info().Dur("interval", flagInterval).Msg("starting run loop")

	ticker := time.NewTicker(flagInterval)
	defer ticker.Stop()

	for {
		summary, err := p.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("run failed")
		} else if err := WriteSummary(os.Stdout, summary, format); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}
