package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/gateway"
	"github.com/norwichevents/eventpipe/internal/logger"
	"github.com/norwichevents/eventpipe/internal/metrics"
	"github.com/norwichevents/eventpipe/internal/pipeline"
	"github.com/norwichevents/eventpipe/internal/source"
	"github.com/norwichevents/eventpipe/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagFormat  string
	flagDryRun  bool
	flagVerbose bool
)

// NewRootCmd creates the root command with its subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventpipe",
		Short: "Collect, score and publish local event listings",
		Long: `eventpipe pulls event listings from configured sources, normalizes
and validates them, removes duplicates, scores listing quality and
submits the survivors to the listings API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newRunCmd(), newLoopCmd(), newExportCmd())
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		RunE:  runOnce,
	}
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print submissions instead of posting them")
	return cmd
}

func runOnce(cmd *cobra.Command, _ []string) error {
	p, _, err := buildPipeline(metrics.New())
	if err != nil {
		return err
	}

	summary, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	return WriteSummary(os.Stdout, summary, format)
}

// buildPipeline assembles a pipeline from config and flags. The
// returned config is the loaded one, for callers needing more than the
// pipeline itself.
func buildPipeline(met *metrics.Metrics) (*pipeline.Pipeline, config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}

	log := logger.New(cfg.Logging, os.Stderr)

	sources := make([]source.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		s, err := source.NewFromConfig(sc, cfg)
		if err != nil {
			return nil, cfg, fmt.Errorf("building source %s: %w", sc.Name, err)
		}
		sources = append(sources, s)
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, cfg, fmt.Errorf("initializing storage: %w", err)
	}

	var gw gateway.Gateway
	switch {
	case flagDryRun:
		gw = gateway.NewDryRun(os.Stdout)
	case cfg.Gateway.URL != "":
		gw, err = gateway.NewHTTP(cfg.Gateway)
		if err != nil {
			return nil, cfg, fmt.Errorf("building gateway: %w", err)
		}
	default:
		log.Warn().Msg("no gateway configured, runs will write backup documents only")
	}

	p, err := pipeline.New(cfg, sources, gw, store, log, met)
	if err != nil {
		return nil, cfg, err
	}
	return p, cfg, nil
}

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatText, FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
