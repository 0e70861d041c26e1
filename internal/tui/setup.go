package tui

import (
	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// setupValues holds the first-run answers.
type setupValues struct {
	Workbook string
	Locale   string
	Theme    string
}

func themeOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		opts[i] = huh.NewOption(t.Name, t.Name)
	}
	return opts
}

func localeOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Español (Fecha, Precio, Costo variable…)", "es"),
		huh.NewOption("English (Date, Price, Variable cost…)", "en"),
	}
}

// newSetupForm builds the first-run form. Fields write straight into vals.
func newSetupForm(vals *setupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to gbdash").
				Description("Point gbdash at the business workbook.\n"+
					"A missing file is created on the first save.\n\n"+
					"Settings are written to "+config.Path()+"."),
			huh.NewInput().
				Title("Workbook").
				Description("An .xlsx file; .xls files can be read but not saved").
				Value(&vals.Workbook).
				Validate(validRequired),
			huh.NewSelect[string]().
				Title("Headers for new sheets").
				Options(localeOptions()...).
				Value(&vals.Locale),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themeOptions()...).
				Value(&vals.Theme),
		),
	)
}

func newSetupValues(cfg config.Config) *setupValues {
	return &setupValues{
		Workbook: cfg.General.Workbook,
		Locale:   cfg.General.Locale,
		Theme:    cfg.Appearance.Theme,
	}
}

func (v *setupValues) applyTo(cfg config.Config) config.Config {
	cfg.General.Workbook = v.Workbook
	cfg.General.Locale = v.Locale
	cfg.Appearance.Theme = v.Theme
	return cfg
}

// RunSetup asks the first-run questions in the terminal, outside the
// dashboard, and saves the answers to the config file.
func RunSetup(cfg config.Config) (config.Config, error) {
	theme.SetActive(cfg.Appearance.Theme)
	vals := newSetupValues(cfg)
	if err := newSetupForm(vals).WithTheme(theme.Active.Huh()).Run(); err != nil {
		return cfg, err
	}
	cfg = vals.applyTo(cfg)
	if err := config.Save(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (a *App) openSetupForm() tea.Cmd {
	vals := newSetupValues(a.cfg)
	a.setupV = vals
	return a.startForm(formSetup, newSetupForm(vals))
}

// finishSetup saves the answers and starts loading the workbook. A config
// that cannot be saved still applies to this session.
func (a *App) finishSetup() tea.Cmd {
	cfg := a.setupV.applyTo(a.cfg)
	if err := config.Save(cfg); err != nil {
		a.setError("config not saved: " + err.Error())
	} else {
		a.setStatus("saved " + config.Path())
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.loading = true
	return tea.Batch(a.spinner.Tick, loadCmd(cfg.WorkbookPath(), cfg.Locale(), a.year))
}
