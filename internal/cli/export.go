package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/norwichevents/eventpipe/internal/calendar"
	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
	"github.com/norwichevents/eventpipe/internal/feed"
	"github.com/norwichevents/eventpipe/internal/storage"
)

var (
	flagInput      string
	flagCategories []string
	flagVenues     []string
	flagStatuses   []string
	flagDates      string
	flagFreeOnly   bool
	flagWeekends   bool
	flagMinScore   int
	flagSort       string
	flagICS        bool
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export events from a saved run, filtered and sorted",
		Long: `Reads a backup document from a previous run (the most recent one by
default) and writes the events it contains, optionally filtered by
category, venue, date range, price, score or status.`,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&flagInput, "input", "", "Backup document to read (default: most recent)")
	cmd.Flags().StringSliceVar(&flagCategories, "category", nil, "Only these categories")
	cmd.Flags().StringSliceVar(&flagVenues, "venue", nil, "Only venues matching these substrings")
	cmd.Flags().StringSliceVar(&flagStatuses, "status", nil, "Only these statuses (Approved, Pending, Rejected)")
	cmd.Flags().StringVar(&flagDates, "dates", "", "Date range, e.g. 2026-09-01..2026-09-15 or a month name")
	cmd.Flags().BoolVar(&flagFreeOnly, "free", false, "Only free events")
	cmd.Flags().BoolVar(&flagWeekends, "weekends", false, "Only Saturday and Sunday events")
	cmd.Flags().IntVar(&flagMinScore, "min-score", 0, "Minimum quality score")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort order: date, name or score")
	cmd.Flags().BoolVar(&flagICS, "ics", false, "Write iCalendar output instead of text or JSON")

	return cmd
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	path := flagInput
	if path == "" {
		path, err = store.LatestBackup()
		if err != nil {
			return err
		}
	}

	backup, err := store.LoadBackup(path)
	if err != nil {
		return err
	}

	filter, err := buildFilter()
	if err != nil {
		return err
	}
	events := filter.Apply(backup.Events)

	order := SortOrder(flagSort)
	if err := sortEvents(events, order); err != nil {
		return err
	}

	if flagICS {
		fmt.Fprint(os.Stdout, calendar.GenerateICS(events))
		return nil
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	return WriteEvents(os.Stdout, events, path, filter, format)
}

func buildFilter() (*feed.Filter, error) {
	f := &feed.Filter{
		Categories:   flagCategories,
		Venues:       flagVenues,
		FreeOnly:     flagFreeOnly,
		WeekendsOnly: flagWeekends,
		MinScore:     flagMinScore,
	}

	for _, s := range flagStatuses {
		st := event.Status(s)
		if !st.Valid() {
			return nil, fmt.Errorf("invalid status: %s", s)
		}
		f.Statuses = append(f.Statuses, st)
	}

	if flagDates != "" {
		from, to, err := feed.ParseDateRange(flagDates)
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}

	return f, nil
}
