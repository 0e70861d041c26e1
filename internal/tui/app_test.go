package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/tui/components"
	"github.com/theirongolddev/gbdash/internal/workbook"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xuri/excelize/v2"
)

var march = model.Month{Year: 2025, Month: time.March}

func scenarioBook() *workbook.Book {
	b := workbook.New(workbook.LocaleES)
	b.Assumptions = model.RawAssumptions{
		DefaultVariableCost: model.Float(50),
		MonthlyFixedCosts:   model.Float(1000),
	}
	b.Events = []model.Event{
		{ID: 1, Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), ClientName: "Ana", Price: 200},
		{ID: 2, Date: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), ClientName: "Luis", Price: 300,
			VariableCost: model.Float(80), Confirmed: true},
	}
	return b
}

func newTestApp(t *testing.T) App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.General.Workbook = filepath.Join(t.TempDir(), "gamebus.xlsx")
	a := NewApp(Options{
		Config: cfg,
		Now:    func() time.Time { return time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC) },
	})
	a = send(t, a, tea.WindowSizeMsg{Width: 140, Height: 50})
	return send(t, a, dataLoadedMsg{year: a.year, res: &pipeline.LoadResult{Path: cfg.General.Workbook, Book: scenarioBook()}})
}

func send(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next
}

func keys(t *testing.T, a App, ks ...string) App {
	t.Helper()
	for _, k := range ks {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		a = send(t, a, msg)
	}
	return a
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Errorf("x past the last tab = %d, want -1", got)
		}
	}
}

func TestDashboardScenario(t *testing.T) {
	a := newTestApp(t)

	m, ok := a.monthSummary(march)
	if !ok {
		t.Fatal("March summary missing")
	}
	if m.Revenue != 500 || m.VariableCostTotal != 130 || m.NetProfit != -630 {
		t.Errorf("March = revenue %v, var %v, net %v; want 500, 130, -630",
			m.Revenue, m.VariableCostTotal, m.NetProfit)
	}
	if a.ytd.Through != march || a.ytd.Revenue != 500 || a.ytd.EventCount != 2 {
		t.Errorf("ytd = %+v", a.ytd)
	}

	view := a.View()
	for _, want := range []string{"Dashboard", "$500.00", "-$630.00", "2025"} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard view missing %q", want)
		}
	}
}

func TestYearKeys(t *testing.T) {
	a := keys(t, newTestApp(t), "[")
	if a.year != 2024 {
		t.Fatalf("year = %d, want 2024", a.year)
	}
	if a.annual.EventCount != 0 {
		t.Errorf("2024 events = %d, want 0", a.annual.EventCount)
	}
	a = keys(t, a, "]")
	if a.year != 2025 || a.annual.EventCount != 2 {
		t.Errorf("back to 2025: year %d, events %d", a.year, a.annual.EventCount)
	}
}

// writeYearlessFunnel saves a workbook whose Funnel sheet has a "Mar" row.
func writeYearlessFunnel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.xlsx")
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", workbook.SheetFunnel); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{"Mes", "Mensajes", "Citas ofrecidas", "Reservas confirmadas"},
		{"Mar", 40, 4, 2},
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := f.SetSheetRow(workbook.SheetFunnel, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYearKeysReloadYearlessLabels(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.Workbook = writeYearlessFunnel(t)
	a := NewApp(Options{
		Config: cfg,
		Now:    func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) },
	})
	a = send(t, a, tea.WindowSizeMsg{Width: 140, Height: 50})
	a = send(t, a, loadCmd(cfg.WorkbookPath(), cfg.Locale(), a.year)())
	if len(a.funnel) != 1 || a.funnel[0].Month.Year != 2026 {
		t.Fatalf("2026 funnel = %+v", a.funnel)
	}

	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	a = m.(App)
	if cmd == nil || !a.loading {
		t.Fatal("changing the year should reload the workbook")
	}
	if a.year != 2025 {
		t.Fatalf("year = %d, want 2025", a.year)
	}

	// A load for the previous year arriving late is dropped.
	stale := a.res
	a = send(t, a, loadCmd(cfg.WorkbookPath(), cfg.Locale(), 2026)())
	if a.res != stale || !a.loading {
		t.Error("a load for another year should be ignored")
	}

	a = send(t, a, loadCmd(cfg.WorkbookPath(), cfg.Locale(), a.year)())
	want := model.Month{Year: 2025, Month: time.March}
	if len(a.funnel) != 1 || a.funnel[0].Month != want {
		t.Errorf("2025 funnel = %+v, want the label read as %v", a.funnel, want)
	}
	if a.loading {
		t.Error("loading should end once the current year arrives")
	}
}

func TestYearKeyWhileSavingSkipsReload(t *testing.T) {
	a := keys(t, newTestApp(t), "e", "c")
	if !a.saving {
		t.Fatal("toggling should start a save")
	}
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	a = m.(App)
	if cmd != nil || a.loading {
		t.Error("no reload while a save is in flight")
	}
	if a.year != 2026 {
		t.Errorf("year = %d, want 2026", a.year)
	}
}

func TestMutateWaitsForReload(t *testing.T) {
	a := keys(t, newTestApp(t), "e", "[", "]")
	if !a.loading {
		t.Fatal("year keys should start a reload")
	}
	a = keys(t, a, "c")
	if a.saving || a.res.Book.Events[0].Confirmed {
		t.Error("edits should wait for the reload")
	}
	if !a.statusErr {
		t.Error("expected a status error while loading")
	}
}

func TestTabNavigation(t *testing.T) {
	a := keys(t, newTestApp(t), "e")
	if a.activeTab != tabEvents {
		t.Fatalf("activeTab = %d, want events", a.activeTab)
	}
	a = keys(t, a, "x")
	if a.activeTab != tabSettings {
		t.Fatalf("activeTab = %d, want settings", a.activeTab)
	}
	a = send(t, a, tea.KeyMsg{Type: tea.KeyRight})
	if a.activeTab != tabDashboard {
		t.Errorf("right from settings = %d, want dashboard", a.activeTab)
	}
	for _, k := range []string{"d", "e", "a", "m", "x"} {
		a = keys(t, a, k)
		if out := a.View(); !strings.Contains(out, "gamebus.xlsx") {
			t.Errorf("tab %s: status bar missing the workbook name", k)
		}
	}
}

func TestEventsToggleConfirmAndSave(t *testing.T) {
	a := keys(t, newTestApp(t), "e")
	if len(a.events.list) != 2 {
		t.Fatalf("events = %d, want 2", len(a.events.list))
	}

	a = keys(t, a, "c")
	if !a.saving {
		t.Fatal("toggling should start a save")
	}
	if !a.res.Book.Events[0].Confirmed {
		t.Error("event 1 should be confirmed")
	}

	// edits wait for the save
	a = keys(t, a, "j", "c")
	if a.res.Book.Events[1].Confirmed != true {
		t.Error("event 2 should be unchanged while saving")
	}
	if !a.statusErr {
		t.Error("expected a status error while saving")
	}

	a = send(t, a, savedMsg{what: "done"})
	if a.saving || a.status != "done" {
		t.Errorf("after save: saving=%v status=%q", a.saving, a.status)
	}
}

func TestEventsFilterAndSearch(t *testing.T) {
	a := keys(t, newTestApp(t), "e", "f")
	if len(a.events.list) != 1 || a.events.list[0].ID != 1 {
		t.Fatalf("pending filter = %v", a.events.list)
	}
	a = keys(t, a, "f")
	if len(a.events.list) != 1 || a.events.list[0].ID != 2 {
		t.Fatalf("confirmed filter = %v", a.events.list)
	}
	a = keys(t, a, "f", "/", "l", "u", "i", "s", "enter")
	if a.events.query != "luis" || len(a.events.list) != 1 || a.events.list[0].ClientName != "Luis" {
		t.Errorf("search luis: query %q, list %v", a.events.query, a.events.list)
	}
	a = keys(t, a, "esc")
	if a.events.query != "" || len(a.events.list) != 2 {
		t.Errorf("esc should clear the search, got %q and %d events", a.events.query, len(a.events.list))
	}
}

func TestEventsCSVExportFollowsFilter(t *testing.T) {
	a := keys(t, newTestApp(t), "e", "f", "f")
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})
	a = m.(App)
	if cmd == nil {
		t.Fatal("v should start an export")
	}
	msg, ok := cmd().(exportedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("export = %+v", msg)
	}
	if filepath.Base(msg.path) != "gbdash-events-2025.csv" {
		t.Errorf("path = %s", msg.path)
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "2,2025-03-15") {
		t.Errorf("csv = %q, want only the confirmed event", data)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	a := keys(t, newTestApp(t), "e", "D")
	if a.confirm == nil {
		t.Fatal("D should ask for confirmation")
	}
	a = keys(t, a, "n")
	if len(a.res.Book.Events) != 2 {
		t.Fatal("anything but y should cancel")
	}

	a = keys(t, a, "D", "y")
	if len(a.res.Book.Events) != 1 || a.res.Book.Events[0].ID != 2 {
		t.Errorf("events after delete = %v", a.res.Book.Events)
	}
}

func TestEventFormOpensAndCancels(t *testing.T) {
	a := keys(t, newTestApp(t), "e", "n")
	if a.form == nil || a.formKind != formEvent {
		t.Fatal("n should open the event form")
	}
	if a.eventVal.Date != "2025-03-20" {
		t.Errorf("default date = %q", a.eventVal.Date)
	}
	a = keys(t, a, "esc")
	if a.form != nil {
		t.Error("esc should close the form")
	}
	if len(a.res.Book.Events) != 2 {
		t.Error("cancelled form should not add an event")
	}
}

func TestEventValuesInput(t *testing.T) {
	v := newEventValues(&scenarioBook().Events[1], time.Now())
	v.VariableCost = ""
	v.Price = "$1,250"
	in, err := v.input()
	if err != nil {
		t.Fatal(err)
	}
	if !in.ClearVariableCost {
		t.Error("blank variable cost should clear the override")
	}
	if *in.Price != 1250 {
		t.Errorf("price = %v, want 1250", *in.Price)
	}

	v.Price = "mucho"
	if _, err := v.input(); err == nil {
		t.Error("expected an error for a non-numeric price")
	}
}

func TestAssumptionValuesApply(t *testing.T) {
	raw := model.RawAssumptions{TargetBookings: model.Float(8)}
	v := &assumptionValues{DefaultVariableCost: "50", MonthlyFixedCosts: "1,000"}
	if err := v.apply(&raw); err != nil {
		t.Fatal(err)
	}
	if raw.TargetBookings != nil {
		t.Error("blank target should unset it")
	}
	if got := raw.Resolve(); got.DefaultVariableCost != 50 || got.MonthlyFixedCosts != 1000 {
		t.Errorf("resolved = %+v", got)
	}

	v.AveragePrice = "abc"
	before := raw
	if err := v.apply(&raw); err == nil {
		t.Fatal("expected an error")
	}
	if raw.DefaultVariableCost != before.DefaultVariableCost {
		t.Error("a failed apply should leave the assumptions untouched")
	}
}

func TestMarketingRecords(t *testing.T) {
	ads, err := (&adsValues{Month: "Mar", Spend: "100", Messages: "50", Clicks: "20", Impressions: "1000"}).record(2025)
	if err != nil {
		t.Fatal(err)
	}
	if ads.Month != march {
		t.Errorf("month = %v, want %v", ads.Month, march)
	}
	d := pipeline.AdsMetrics(ads)
	if *d.CostPerMessage != 2 || *d.CTR != 0.02 {
		t.Errorf("derived = %v %v", *d.CostPerMessage, *d.CTR)
	}

	if _, err := (&funnelValues{Month: "not a month"}).record(2025); err == nil {
		t.Error("expected a month error")
	}
}

func TestSettingsValuesApply(t *testing.T) {
	v := newSettingsValues(config.DefaultConfig())
	v.BookingRatio = "target"
	v.Year = "2024"
	cfg, err := v.apply(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Metrics.BookingRatio != "target" || cfg.General.Year != 2024 {
		t.Errorf("cfg = %+v", cfg)
	}

	v.Duration = "0"
	if _, err := v.apply(config.DefaultConfig()); err == nil {
		t.Error("zero duration should fail validation")
	}
}

func TestNarrowTerminal(t *testing.T) {
	a := send(t, newTestApp(t), tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(a.View(), "too narrow") {
		t.Error("expected the narrow-terminal message")
	}
}
