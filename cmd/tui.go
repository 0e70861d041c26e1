package cmd

import (
	"fmt"

	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	app := tui.NewApp(tui.Options{
		Config:    appCfg,
		Year:      flagYear,
		NeedSetup: !config.Exists() && flagWorkbook == "",
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
