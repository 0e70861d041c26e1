package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/tui/components"
	"github.com/theirongolddev/gbdash/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// settingsValues mirrors the editable part of config.Config.
type settingsValues struct {
	Workbook      string
	Locale        string
	Year          string
	FixedFrom     int
	OnlyConfirmed bool
	BookingRatio  string
	DefaultStart  string
	Duration      string
	Timezone      string
	Theme         string
}

func newSettingsValues(c config.Config) *settingsValues {
	year := ""
	if c.General.Year > 0 {
		year = strconv.Itoa(c.General.Year)
	}
	return &settingsValues{
		Workbook:      c.General.Workbook,
		Locale:        c.General.Locale,
		Year:          year,
		FixedFrom:     c.Metrics.FixedCostsFromMonth,
		OnlyConfirmed: c.Metrics.OnlyConfirmed,
		BookingRatio:  c.Metrics.BookingRatio,
		DefaultStart:  c.Agenda.DefaultStart,
		Duration:      strconv.Itoa(c.Agenda.DefaultDurationMinutes),
		Timezone:      c.Agenda.Timezone,
		Theme:         c.Appearance.Theme,
	}
}

// apply copies the form onto c and validates the result.
func (v *settingsValues) apply(c config.Config) (config.Config, error) {
	c.General.Workbook = strings.TrimSpace(v.Workbook)
	c.General.Locale = v.Locale
	c.General.Year = 0
	if y := strings.TrimSpace(v.Year); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil {
			return c, fmt.Errorf("year %q is not a number", y)
		}
		c.General.Year = n
	}
	c.Metrics.FixedCostsFromMonth = v.FixedFrom
	c.Metrics.OnlyConfirmed = v.OnlyConfirmed
	c.Metrics.BookingRatio = v.BookingRatio
	c.Agenda.DefaultStart = strings.TrimSpace(v.DefaultStart)
	n, err := strconv.Atoi(strings.TrimSpace(v.Duration))
	if err != nil {
		return c, fmt.Errorf("duration %q is not a number", v.Duration)
	}
	c.Agenda.DefaultDurationMinutes = n
	c.Agenda.Timezone = strings.TrimSpace(v.Timezone)
	c.Appearance.Theme = v.Theme
	return c, c.Validate()
}

func validInt(s string) error {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("not a whole number")
	}
	return nil
}

func monthOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 12)
	for i := range opts {
		m := time.Month(i + 1)
		opts[i] = huh.NewOption(fmt.Sprintf("%s (%s)", model.SpanishMonths[i], m), int(m))
	}
	return opts
}

func bookingRatioOptions() []huh.Option[string] {
	labels := map[pipeline.BookingRatioFormula]string{
		pipeline.BookingRatioConfirmed: "confirmed events / events",
		pipeline.BookingRatioFunnel:    "funnel bookings / events",
		pipeline.BookingRatioTarget:    "events / target bookings",
	}
	opts := make([]huh.Option[string], 0, len(pipeline.BookingRatioFormulas))
	for _, f := range pipeline.BookingRatioFormulas {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s: %s", f, labels[f]), string(f)))
	}
	return opts
}

func (a App) updateSettingsKey(key string) (App, tea.Cmd, bool) {
	if key != "enter" {
		return a, nil, false
	}
	cmd := a.openSettingsForm()
	return a, cmd, true
}

func (a *App) openSettingsForm() tea.Cmd {
	v := newSettingsValues(a.cfg)
	a.setV = v
	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Workbook").Value(&v.Workbook).Validate(validRequired),
			huh.NewSelect[string]().Title("Headers for new sheets").Options(localeOptions()...).Value(&v.Locale),
			huh.NewInput().Title("Default year").Description("Blank follows the calendar").
				Value(&v.Year).Validate(validInt),
		),
		huh.NewGroup(
			huh.NewSelect[int]().Title("Fixed costs from").
				Description("First month charged with the monthly fixed costs").
				Options(monthOptions()...).Value(&v.FixedFrom),
			huh.NewConfirm().Title("Count only confirmed events").Value(&v.OnlyConfirmed),
			huh.NewSelect[string]().Title("Booking ratio").Options(bookingRatioOptions()...).Value(&v.BookingRatio),
		),
		huh.NewGroup(
			huh.NewInput().Title("Calendar default start").Value(&v.DefaultStart).Validate(validClock),
			huh.NewInput().Title("Calendar duration (minutes)").Value(&v.Duration).Validate(validInt),
			huh.NewInput().Title("Time zone").Placeholder("America/Monterrey").Value(&v.Timezone),
			huh.NewSelect[string]().Title("Theme").Options(themeOptions()...).Value(&v.Theme),
		),
	)
	return a.startForm(formSettings, f)
}

// submitSettings saves the config and applies it. A changed workbook or
// locale reloads; anything else only recomputes.
func (a *App) submitSettings() tea.Cmd {
	prev := a.cfg
	cfg, err := a.setV.apply(prev)
	if err != nil {
		a.setError(err.Error())
		return nil
	}
	if err := config.Save(cfg); err != nil {
		a.setError("config not saved: " + err.Error())
		return nil
	}
	a.cfg = cfg
	a.applyConfig()
	theme.SetActive(cfg.Appearance.Theme)
	prevYear := a.year
	if cfg.General.Year != prev.General.Year {
		a.year = cfg.YearOr(a.now())
	}
	a.setStatus("settings saved")

	if cfg.WorkbookPath() != prev.WorkbookPath() || cfg.General.Locale != prev.General.Locale || a.year != prevYear {
		if a.saving {
			a.setError("settings saved; reload with r once the save finishes")
			return nil
		}
		a.loading = true
		return tea.Batch(a.spinner.Tick, loadCmd(cfg.WorkbookPath(), cfg.Locale(), a.year))
	}
	a.recompute()
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	c := a.cfg
	w := components.CardInnerWidth(cw)
	year := "calendar year"
	if c.General.Year > 0 {
		year = strconv.Itoa(c.General.Year)
	}
	tz := c.Agenda.Timezone
	if tz == "" {
		tz = "UTC"
	}

	general := kvLines([]struct{ k, v string }{
		{"Workbook", c.WorkbookPath()},
		{"Headers", c.General.Locale},
		{"Default year", year},
		{"Config file", config.Path()},
	}, w)
	metrics := kvLines([]struct{ k, v string }{
		{"Fixed costs from", time.Month(c.Metrics.FixedCostsFromMonth).String()},
		{"Counting", countingWord(c.Metrics.OnlyConfirmed)},
		{"Booking ratio", c.Metrics.BookingRatio},
	}, w)
	calendar := kvLines([]struct{ k, v string }{
		{"Default start", c.Agenda.DefaultStart},
		{"Duration", fmt.Sprintf("%d min", c.Agenda.DefaultDurationMinutes)},
		{"Time zone", tz},
		{"Theme", theme.Active.Name},
	}, w)

	sheets := "-"
	if a.res != nil {
		if extra := a.res.Book.ExtraSheets(); len(extra) > 0 {
			sheets = strings.Join(extra, ", ")
		}
	}
	return strings.Join([]string{
		components.ContentCard("General", general, cw),
		components.ContentCard("Metrics", metrics, cw),
		components.ContentCard("Calendar & appearance", calendar, cw),
		components.ContentCard("Other sheets kept on save", dimText(sheets), cw),
		dimText(" Press enter to edit. Environment variables " + config.EnvWorkbook + ", " +
			config.EnvAddr + " and " + config.EnvTheme + " override the file."),
	}, "\n")
}
