package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-time setup",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := tui.RunSetup(appCfg)
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println("  Setup cancelled, nothing saved.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Printf("  Workbook: %s\n", cfg.WorkbookPath())
	fmt.Println("  Run `gbdash` for a summary or `gbdash tui` for the dashboard.")
	return nil
}
