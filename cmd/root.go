package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagWorkbook string
	flagYear     int
	flagNoCache  bool
	flagQuiet    bool
)

// appCfg is the loaded configuration with flag overrides applied.
var appCfg config.Config

var rootCmd = &cobra.Command{
	Use:           "gbdash",
	Short:         "Game Bus business dashboard",
	Long:          "Track events, costs and marketing of the Game Bus workbook: monthly and annual KPIs, agenda and calendar exports.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		setupLogging()
		if err := config.LoadDotenv(".env"); err != nil {
			slog.Warn("dotenv not loaded", slog.Any("err", err))
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workbook") {
			cfg.General.Workbook = flagWorkbook
		}
		if flagYear != 0 {
			if flagYear < 2000 || flagYear > 2100 {
				return fmt.Errorf("--year %d out of range", flagYear)
			}
			cfg.General.Year = flagYear
		}
		appCfg = cfg
		return nil
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "  error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagWorkbook, "workbook", "w", "", "Workbook path (overrides config and "+config.EnvWorkbook+")")
	rootCmd.PersistentFlags().IntVarP(&flagYear, "year", "y", 0, "Reporting year (default: config year or current year)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite summary cache, recompute everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print errors to stderr")
}

// setupLogging installs the CLI's stderr logger.
func setupLogging() {
	level := slog.LevelWarn
	if flagQuiet {
		level = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func reportYear() int {
	return appCfg.YearOr(time.Now())
}

func metricOptions() (pipeline.Options, error) {
	return appCfg.Options()
}

// loadData reads the workbook and logs its load warnings.
func loadData() (*pipeline.LoadResult, error) {
	lr, err := pipeline.Load(appCfg.WorkbookPath(), appCfg.Locale(), reportYear())
	if err != nil {
		return nil, err
	}
	if lr.Created {
		slog.Warn("workbook not found, starting empty", slog.String("path", lr.Path))
	}
	for _, w := range lr.Warnings {
		slog.Warn("workbook cell ignored",
			slog.String("sheet", w.Sheet), slog.Int("row", w.Row),
			slog.String("column", w.Column), slog.String("value", w.Value),
			slog.String("reason", w.Reason))
	}
	return lr, nil
}

// modify loads the workbook, applies fn and saves it when fn succeeds.
func modify(fn func(*pipeline.LoadResult) error) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	if err := fn(lr); err != nil {
		return err
	}
	if err := lr.Save(); err != nil {
		return err
	}
	dropCachedSummaries(lr.Path)
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Saved %s\n", lr.Path)
	}
	return nil
}

// dropCachedSummaries clears the cache rows of a saved workbook. Failures
// are logged; the mtime check catches them on the next read.
func dropCachedSummaries(path string) {
	if _, err := os.Stat(pipeline.CachePath()); err != nil {
		return
	}
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		slog.Warn("cache unavailable", slog.Any("err", err))
		return
	}
	defer func() { _ = cache.Close() }()
	if err := pipeline.InvalidateCache(path, cache); err != nil {
		slog.Warn("cache not cleared", slog.Any("err", err))
	}
}

// loadSummaries computes a year of monthly summaries, through the SQLite
// cache unless --no-cache is set.
func loadSummaries(year int) (*pipeline.CachedSummaries, error) {
	opts, err := metricOptions()
	if err != nil {
		return nil, err
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			slog.Warn("cache unavailable, computing from workbook", slog.Any("err", err))
		} else {
			defer func() { _ = cache.Close() }()

			cs, err := pipeline.SummariesWithCache(appCfg.WorkbookPath(), appCfg.Locale(), year, opts, cache)
			if err == nil {
				return cs, nil
			}
			slog.Warn("cache error, computing from workbook", slog.Any("err", err))
		}
	}

	lr, err := loadData()
	if err != nil {
		return nil, err
	}
	return &pipeline.CachedSummaries{Monthly: lr.Summaries(year, opts), Load: lr}, nil
}
