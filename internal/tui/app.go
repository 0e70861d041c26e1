// Package tui provides the interactive Bubble Tea dashboard for gbdash.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/tui/components"
	"github.com/theirongolddev/gbdash/internal/tui/theme"
	"github.com/theirongolddev/gbdash/internal/workbook"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type dataLoadedMsg struct {
	year int
	res  *pipeline.LoadResult
	err  error
}

type savedMsg struct {
	what string
	err  error
}

type exportedMsg struct {
	path string
	err  error
}

const (
	tabDashboard = iota
	tabEvents
	tabAgenda
	tabMarketing
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// Options configures a new App.
type Options struct {
	Config config.Config
	// Year overrides the configured reporting year when non-zero.
	Year int
	// NeedSetup shows the first-run form before loading.
	NeedSetup bool
	Now       func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	cfg     config.Config
	opts    pipeline.Options
	icsOpts agenda.ICSOptions
	now     func() time.Time

	// Data
	res     *pipeline.LoadResult
	loaded  bool
	loading bool
	loadErr error

	// Derived for the selected year
	year    int
	monthly []model.MonthlySummary
	annual  model.AnnualSummary
	ytd     model.KPIs
	ads     []pipeline.AdsRow
	funnel  []pipeline.FunnelRow

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model
	saving    bool
	status    string
	statusErr bool
	confirm   *pendingDelete

	// Per-tab state
	events    eventsState
	agendaTab agendaState
	marketing marketingState

	// Active huh form, if any
	form     *huh.Form
	formKind formKind
	eventVal *eventValues
	agendaV  *agendaValues
	assumpV  *assumptionValues
	adsV     *adsValues
	funnelV  *funnelValues
	setV     *settingsValues
	setupV   *setupValues
}

// pendingDelete is a destructive action waiting for "y".
type pendingDelete struct {
	label string
	run   func(b *workbook.Book) error
}

// NewApp creates the TUI model. Invalid metric or calendar settings fall
// back to defaults and are reported in the status bar.
func NewApp(o Options) App {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	theme.SetActive(o.Config.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		cfg:     o.Config,
		now:     now,
		year:    o.Year,
		spinner: sp,
		events:  newEventsState(),
	}
	if a.year == 0 {
		a.year = o.Config.YearOr(now())
	}
	a.applyConfig()

	if o.NeedSetup {
		a.openSetupForm()
	} else {
		a.loading = true
	}
	return a
}

// applyConfig derives the metric and calendar options from cfg.
func (a *App) applyConfig() {
	var errs []string
	opts, err := a.cfg.Options()
	if err != nil {
		opts = pipeline.DefaultOptions()
		errs = append(errs, err.Error())
	}
	icsOpts, err := a.cfg.ICSOptions()
	if err != nil {
		icsOpts = agenda.DefaultICSOptions()
		errs = append(errs, err.Error())
	}
	a.opts, a.icsOpts = opts, icsOpts
	if len(errs) > 0 {
		a.setError(strings.Join(errs, "; "))
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion, a.spinner.Tick}
	if a.form != nil {
		cmds = append(cmds, a.form.Init())
	} else {
		cmds = append(cmds, loadCmd(a.cfg.WorkbookPath(), a.cfg.Locale(), a.year))
	}
	return tea.Batch(cmds...)
}

// recompute refreshes everything derived from the book for the selected year.
func (a *App) recompute() {
	if a.res == nil {
		return
	}
	b := a.res.Book
	a.monthly = pipeline.ComputeYear(b, a.year, a.opts)
	a.annual = pipeline.ComputeAnnual(a.monthly)

	through := model.MonthOf(a.now())
	if through.Year != a.year {
		through = model.Month{Year: a.year, Month: time.December}
	}
	a.ytd = pipeline.YearToDate(a.monthly, through)
	a.ads = pipeline.AdsRows(b.Ads, a.year)
	a.funnel = pipeline.FunnelRows(b.Funnel, a.year)

	a.events.refresh(b, a.year)
	a.agendaTab.refresh(b)
	a.marketing.clamp(len(a.ads), len(a.funnel))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth()).WithHeight(msg.Height - 2)
		}
		return a, nil

	case tea.MouseMsg:
		if a.form != nil || !a.loaded || a.showHelp {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKey(msg)

	case dataLoadedMsg:
		if msg.year != a.year {
			// Superseded by a load for another year.
			return a, nil
		}
		a.loading = false
		if msg.err != nil {
			a.loadErr = msg.err
			a.setError("load failed: " + msg.err.Error())
			return a, nil
		}
		a.res = msg.res
		a.loaded = true
		a.loadErr = nil
		a.recompute()
		switch {
		case msg.res.Created:
			a.setStatus("new workbook, saved on first change")
		case len(msg.res.Warnings) > 0:
			a.setStatus(fmt.Sprintf("loaded with %d warnings", len(msg.res.Warnings)))
		default:
			a.setStatus(fmt.Sprintf("loaded in %s", msg.res.LoadTime.Round(time.Millisecond)))
		}
		return a, nil

	case savedMsg:
		a.saving = false
		if msg.err != nil {
			a.setError("save failed: " + msg.err.Error())
		} else {
			a.setStatus(msg.what)
		}
		return a, nil

	case exportedMsg:
		if msg.err != nil {
			a.setError("export failed: " + msg.err.Error())
		} else {
			a.setStatus("wrote " + msg.path)
		}
		return a, nil

	case spinner.TickMsg:
		if a.loading || a.saving {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward cursor blinks and the like to the active form.
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.events.searching {
		var cmd tea.Cmd
		a.events.search, cmd = a.events.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if !a.loaded {
		switch key {
		case "q", "esc":
			return a, tea.Quit
		case "r":
			return a.reload()
		}
		return a, nil
	}

	if a.confirm != nil {
		p := a.confirm
		a.confirm = nil
		if key == "y" || key == "Y" {
			cmd := a.mutate(p.label+" deleted", p.run)
			return a, cmd
		}
		a.setStatus("delete cancelled")
		return a, nil
	}

	if a.events.searching {
		return a.updateEventsSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	var (
		handled bool
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case tabDashboard:
		a, cmd, handled = a.updateDashboardKey(key)
	case tabEvents:
		a, cmd, handled = a.updateEventsKey(key)
	case tabAgenda:
		a, cmd, handled = a.updateAgendaKey(key)
	case tabMarketing:
		a, cmd, handled = a.updateMarketingKey(key)
	case tabSettings:
		a, cmd, handled = a.updateSettingsKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.saving {
			a.setError("wait for the save to finish")
			return a, nil
		}
		return a.reload()
	case "[":
		return a.changeYear(-1)
	case "]":
		return a.changeYear(1)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// moveCursor moves the selection of the active list tab by delta.
func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabEvents:
		a.events.move(delta)
	case tabAgenda:
		a.agendaTab.move(delta)
	case tabMarketing:
		a.marketing.move(delta, len(a.ads), len(a.funnel))
	}
}

// tabAtX returns the tab index at column x of the tab bar, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}

// changeYear moves the selected year and reloads the workbook so month
// labels without a year are read in the new year.
func (a App) changeYear(delta int) (tea.Model, tea.Cmd) {
	a.year += delta
	a.recompute()
	if a.saving {
		return a, nil
	}
	a.loading = true
	return a, tea.Batch(a.spinner.Tick, loadCmd(a.cfg.WorkbookPath(), a.cfg.Locale(), a.year))
}

func (a App) reload() (tea.Model, tea.Cmd) {
	a.loading = true
	a.confirm = nil
	return a, tea.Batch(a.spinner.Tick, loadCmd(a.cfg.WorkbookPath(), a.cfg.Locale(), a.year))
}

// mutate applies fn to the book, recomputes and saves in the background.
// Edits are refused while a save or a reload is in flight.
func (a *App) mutate(what string, fn func(b *workbook.Book) error) tea.Cmd {
	if a.saving {
		a.setError("wait for the save to finish")
		return nil
	}
	if a.loading {
		a.setError("wait for the workbook to load")
		return nil
	}
	if err := fn(a.res.Book); err != nil {
		a.setError(err.Error())
		return nil
	}
	a.recompute()
	a.saving = true
	return tea.Batch(a.spinner.Tick, saveCmd(a.res, what))
}

// export writes data next to the workbook.
func (a App) export(name string, data []byte, err error) tea.Cmd {
	dir := filepath.Dir(a.cfg.WorkbookPath())
	return func() tea.Msg {
		if err != nil {
			return exportedMsg{err: err}
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

func (a *App) setStatus(s string) { a.status, a.statusErr = s, false }
func (a *App) setError(s string)  { a.status, a.statusErr = s, true }

func loadCmd(path string, locale workbook.Locale, year int) tea.Cmd {
	return func() tea.Msg {
		res, err := pipeline.Load(path, locale, year)
		return dataLoadedMsg{year: year, res: res, err: err}
	}
}

func saveCmd(res *pipeline.LoadResult, what string) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{what: what, err: res.Save()}
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  gbdash needs at least %d columns.\n",
		a.width, minTerminalWidth)
	h := max(a.height, 5)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logo.Render("◈ gbdash"))
	b.WriteString(sub.Render(" · event dashboard"))
	b.WriteString("\n\n")
	switch {
	case a.loading:
		b.WriteString(a.spinner.View())
		b.WriteString(sub.Render(" Reading " + filepath.Base(a.cfg.WorkbookPath())))
	case a.loadErr != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.loadErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(sub.Render("[r] retry  [q] quit"))
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ " + a.formKind.title())
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Render("esc to cancel")
	body := title + "  " + hint + "\n\n" + a.form.View()
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Top, body,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) formWidth() int {
	return min(max(a.width-4, 40), 90)
}

type binding struct{ key, desc string }

var helpSections = []struct {
	title    string
	bindings []binding
}{
	{"Navigation", []binding{
		{"d e a m x", "Jump to tab"},
		{"← → tab", "Previous / next tab"},
		{"[ ]", "Previous / next year"},
		{"j k", "Move selection"},
	}},
	{"Dashboard", []binding{
		{"A", "Edit assumptions"},
		{"C", "Consolidate year into the workbook"},
	}},
	{"Events & Agenda", []binding{
		{"n / enter", "New / edit"},
		{"c", "Toggle confirmed"},
		{"D", "Delete"},
		{"/ f", "Search / cycle status filter"},
		{"i v", "Export .ics / .csv"},
	}},
	{"Marketing", []binding{
		{"s", "Switch ads / funnel"},
		{"n / enter", "New / edit month"},
	}},
	{"General", []binding{
		{"r", "Reload workbook"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

func (a App) viewHelp() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range helpSections {
		b.WriteString("\n")
		b.WriteString(section.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-10s", bind.key)), desc.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, h := a.width, a.height
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w, fmt.Sprintf("%d", a.year))
	statusBar := components.RenderStatusBar(w, a.statusLine())

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabEvents:
		content = a.renderEventsTab(cw, contentH)
	case tabAgenda:
		content = a.renderAgendaTab(cw, contentH)
	case tabMarketing:
		content = a.renderMarketingTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	out := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, out,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusLine() components.Status {
	s := components.Status{
		Hints:   a.tabHints(),
		Message: a.status,
		IsError: a.statusErr,
		Saving:  a.saving,
		Source:  filepath.Base(a.cfg.WorkbookPath()),
	}
	if a.confirm != nil {
		s.Message, s.IsError = "delete "+a.confirm.label+"? [y/N]", true
	}
	return s
}

func (a App) tabHints() string {
	switch a.activeTab {
	case tabDashboard:
		return "[A]ssumptions [C]onsolidate [ ] year [?]help [q]uit"
	case tabEvents:
		if a.events.searching {
			return "enter apply · esc cancel"
		}
		return "[n]ew [enter]edit [c]onfirm [D]elete [/]search [f]ilter [i]cs [v]csv"
	case tabAgenda:
		return "[n]ew [enter]edit [D]elete [i]cs [v]csv"
	case tabMarketing:
		return "[s]witch ads/funnel [n]ew [enter]edit"
	default:
		return "[enter]edit settings [?]help [q]uit"
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	n := strings.Count(s, "\n") + 1
	if n >= h {
		return s
	}
	return s + strings.Repeat("\n", h-n)
}

// fillLinesWithBackground pads each line to w columns with bg.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// row styles a table line, highlighting the selected one.
func row(text string, selected bool) string {
	t := theme.Active
	if selected {
		return lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Highlight).Bold(true).Render(text)
	}
	return lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(text)
}

func headerRow(text string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Render(text)
}

func dimText(text string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(text)
}

// visibleWindow returns the [start, end) range of n rows shown in a window
// of size rows so that cursor stays visible.
func visibleWindow(cursor, size, n int) (int, int) {
	size = max(size, 1)
	start := 0
	if cursor >= size {
		start = cursor - size + 1
	}
	return start, min(n, start+size)
}
