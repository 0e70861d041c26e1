// Package cmd implements the gbdash CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file, run gbdash setup)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Workbook:      %s\n", cfg.WorkbookPath())
	if cfg.General.Year > 0 {
		fmt.Printf("    Year:          %d\n", cfg.General.Year)
	} else {
		fmt.Println("    Year:          current")
	}
	fmt.Printf("    Header locale: %s\n", cfg.Locale())
	fmt.Println()

	fmt.Println("  [Metrics]")
	fmt.Printf("    Fixed costs from month: %d\n", cfg.Metrics.FixedCostsFromMonth)
	fmt.Printf("    Only confirmed events:  %v\n", cfg.Metrics.OnlyConfirmed)
	fmt.Printf("    Booking ratio:          %s\n", cfg.Metrics.BookingRatio)
	fmt.Println()

	fmt.Println("  [Agenda]")
	fmt.Printf("    Default start:    %s\n", cfg.Agenda.DefaultStart)
	fmt.Printf("    Default duration: %d min\n", cfg.Agenda.DefaultDurationMinutes)
	tz := cfg.Agenda.Timezone
	if tz == "" {
		tz = "UTC"
	}
	fmt.Printf("    Timezone:         %s\n", tz)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Geocode]")
	fmt.Printf("    Enabled: %v\n", cfg.Geocode.Enabled)
	if cfg.Geocode.BaseURL != "" {
		fmt.Printf("    Base URL: %s\n", cfg.Geocode.BaseURL)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Path:        %s\n", pipeline.CachePath())
	fmt.Printf("    Cached rows: %s\n", cachedRows())
	return nil
}

// cachedRows describes how many monthly rows the summary cache holds.
func cachedRows() string {
	if _, err := os.Stat(pipeline.CachePath()); err != nil {
		return "none (no cache yet)"
	}
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return "unavailable: " + err.Error()
	}
	defer func() { _ = cache.Close() }()
	n, err := cache.SummaryCount()
	if err != nil {
		return "unavailable: " + err.Error()
	}
	return fmt.Sprintf("%d", n)
}
