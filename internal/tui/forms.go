package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/eventlog"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/tui/theme"
	"github.com/theirongolddev/gbdash/internal/workbook"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

type formKind int

const (
	formNone formKind = iota
	formSetup
	formEvent
	formAgenda
	formAssumptions
	formAds
	formFunnel
	formSettings
)

func (k formKind) title() string {
	switch k {
	case formSetup:
		return "Welcome to gbdash"
	case formEvent:
		return "Event"
	case formAgenda:
		return "Agenda entry"
	case formAssumptions:
		return "Assumptions"
	case formAds:
		return "Ads month"
	case formFunnel:
		return "Funnel month"
	case formSettings:
		return "Settings"
	}
	return ""
}

func formKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	return km
}

// startForm makes f the active form.
func (a *App) startForm(kind formKind, f *huh.Form) tea.Cmd {
	f = f.WithTheme(theme.Active.Huh()).WithKeyMap(formKeyMap()).WithShowHelp(true)
	if a.width > 0 {
		f = f.WithWidth(a.formWidth()).WithHeight(a.height - 2)
	}
	a.form, a.formKind = f, kind
	return f.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.formKind
		a.form, a.formKind = nil, formNone
		next := a.submitForm(kind)
		return a, next
	case huh.StateAborted:
		kind := a.formKind
		a.form, a.formKind = nil, formNone
		if kind == formSetup {
			// defaults stay in memory; setup runs again next time
			a.loading = true
			return a, loadCmd(a.cfg.WorkbookPath(), a.cfg.Locale(), a.year)
		}
		a.setStatus("cancelled")
		return a, nil
	}
	return a, cmd
}

func (a *App) submitForm(kind formKind) tea.Cmd {
	switch kind {
	case formSetup:
		return a.finishSetup()
	case formEvent:
		return a.submitEvent()
	case formAgenda:
		return a.submitAgenda()
	case formAssumptions:
		v := a.assumpV
		return a.mutate("assumptions saved", func(b *workbook.Book) error {
			return v.apply(&b.Assumptions)
		})
	case formAds:
		rec, err := a.adsV.record(a.year)
		if err != nil {
			a.setError(err.Error())
			return nil
		}
		return a.mutate("ads "+rec.Month.String()+" saved", func(b *workbook.Book) error {
			b.Ads = pipeline.UpsertAds(b.Ads, rec)
			return nil
		})
	case formFunnel:
		rec, err := a.funnelV.record(a.year)
		if err != nil {
			a.setError(err.Error())
			return nil
		}
		return a.mutate("funnel "+rec.Month.String()+" saved", func(b *workbook.Book) error {
			b.Funnel = pipeline.UpsertFunnel(b.Funnel, rec)
			return nil
		})
	case formSettings:
		return a.submitSettings()
	}
	return nil
}

// ─── Validation ─────────────────────────────────────────────────

func validDate(required bool) func(string) error {
	return func(s string) error {
		d, ok := workbook.ParseDate(s)
		switch {
		case !ok:
			return errors.New("use YYYY-MM-DD or DD/MM/YYYY")
		case required && d.IsZero():
			return errors.New("required")
		}
		return nil
	}
}

func validClock(s string) error {
	if _, ok := workbook.ParseClock(s); !ok {
		return errors.New("use HH:MM")
	}
	return nil
}

func validAmount(s string) error {
	if _, _, ok := workbook.ParseNumber(s); !ok {
		return errors.New("not a number")
	}
	return nil
}

func validRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

// parseAmount reads an optional amount; blank is nil.
func parseAmount(s string) (*float64, error) {
	v, present, ok := workbook.ParseNumber(s)
	if !ok {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	if !present {
		return nil, nil
	}
	return &v, nil
}

// amount is parseAmount with blank read as zero.
func amount(s string) (float64, error) {
	v, err := parseAmount(s)
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

func fmtAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtOptAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ─── Event ──────────────────────────────────────────────────────

type eventValues struct {
	id                                    int
	Date, Start, End                      string
	Client, Phone, Address, Zone, Package string
	Price, VariableCost, PizzaMargin      string
	Pizza, Retro, Confirmed               bool
	Notes                                 string
}

func newEventValues(e *model.Event, now time.Time) *eventValues {
	if e == nil {
		return &eventValues{Date: now.Format("2006-01-02"), Package: model.Packages[0]}
	}
	return &eventValues{
		id:           e.ID,
		Date:         cli.FormatDate(e.Date),
		Start:        e.StartTime,
		End:          e.EndTime,
		Client:       e.ClientName,
		Phone:        e.Phone,
		Address:      e.Address,
		Zone:         e.Zone,
		Package:      e.Package,
		Price:        fmtAmount(e.Price),
		VariableCost: fmtOptAmount(e.VariableCost),
		PizzaMargin:  fmtAmount(e.PizzaMargin),
		Pizza:        e.PizzaAddon,
		Retro:        e.RetroExterior,
		Confirmed:    e.Confirmed,
		Notes:        e.Notes,
	}
}

// input converts the form into a full eventlog.Input. A blank variable
// cost clears the event's own cost so the assumptions default applies.
func (v *eventValues) input() (eventlog.Input, error) {
	price, err := amount(v.Price)
	if err != nil {
		return eventlog.Input{}, fmt.Errorf("price: %w", err)
	}
	margin, err := amount(v.PizzaMargin)
	if err != nil {
		return eventlog.Input{}, fmt.Errorf("pizza margin: %w", err)
	}
	varCost, err := parseAmount(v.VariableCost)
	if err != nil {
		return eventlog.Input{}, fmt.Errorf("variable cost: %w", err)
	}
	return eventlog.Input{
		Date:              &v.Date,
		StartTime:         &v.Start,
		EndTime:           &v.End,
		ClientName:        &v.Client,
		Address:           &v.Address,
		Phone:             &v.Phone,
		Zone:              &v.Zone,
		Package:           &v.Package,
		Price:             &price,
		PizzaAddon:        &v.Pizza,
		PizzaMargin:       &margin,
		RetroExterior:     &v.Retro,
		VariableCost:      varCost,
		ClearVariableCost: varCost == nil,
		Confirmed:         &v.Confirmed,
		Notes:             &v.Notes,
	}, nil
}

func (a *App) openEventForm(e *model.Event) tea.Cmd {
	v := newEventValues(e, a.now())
	a.eventVal = v

	packages := model.Packages
	if v.Package != "" && !slices.Contains(packages, v.Package) {
		packages = append([]string{v.Package}, packages...)
	}
	defaultCost := cli.FormatMoney(a.res.Book.Assumptions.Resolve().DefaultVariableCost)

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Placeholder("2025-03-14").Value(&v.Date).Validate(validDate(true)),
			huh.NewInput().Title("Start").Placeholder("HH:MM").Value(&v.Start).Validate(validClock),
			huh.NewInput().Title("End").Placeholder("HH:MM").Value(&v.End).Validate(validClock),
			huh.NewInput().Title("Client").Value(&v.Client),
			huh.NewInput().Title("Phone").Value(&v.Phone),
			huh.NewInput().Title("Address").Value(&v.Address),
			huh.NewInput().Title("Zone").Value(&v.Zone),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Package").Options(huh.NewOptions(packages...)...).Value(&v.Package),
			huh.NewInput().Title("Price").Value(&v.Price).Validate(validAmount),
			huh.NewInput().Title("Variable cost").
				Description("Blank uses the default of "+defaultCost).
				Value(&v.VariableCost).Validate(validAmount),
			huh.NewConfirm().Title("Pizza add-on").Value(&v.Pizza),
			huh.NewInput().Title("Pizza margin").Value(&v.PizzaMargin).Validate(validAmount),
			huh.NewConfirm().Title("Retro exterior").Value(&v.Retro),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Confirmed").Affirmative("Efectuado").Negative("Pendiente").Value(&v.Confirmed),
			huh.NewText().Title("Notes").Value(&v.Notes),
		),
	)
	return a.startForm(formEvent, f)
}

func (a *App) submitEvent() tea.Cmd {
	v := a.eventVal
	in, err := v.input()
	if err != nil {
		a.setError(err.Error())
		return nil
	}
	if v.id == 0 {
		e, err := in.New()
		if err != nil {
			a.setError(err.Error())
			return nil
		}
		return a.mutate("event added", func(b *workbook.Book) error {
			eventlog.Add(b, e)
			return nil
		})
	}
	id := v.id
	return a.mutate(fmt.Sprintf("event %d updated", id), func(b *workbook.Book) error {
		e, err := eventlog.Get(b, id)
		if err != nil {
			return err
		}
		if err := in.Apply(&e); err != nil {
			return err
		}
		_, err = eventlog.Update(b, id, e)
		return err
	})
}

// ─── Agenda ─────────────────────────────────────────────────────

type agendaValues struct {
	id                        string
	Name, Address, Date, Time string
	Cost                      string
}

func (v *agendaValues) input() (agenda.Input, error) {
	cost, err := amount(v.Cost)
	if err != nil {
		return agenda.Input{}, fmt.Errorf("cost: %w", err)
	}
	return agenda.Input{Name: &v.Name, Address: &v.Address, Date: &v.Date, Time: &v.Time, Cost: &cost}, nil
}

func (a *App) openAgendaForm(e *model.AgendaEntry) tea.Cmd {
	v := &agendaValues{Date: a.now().Format("2006-01-02")}
	if e != nil {
		v = &agendaValues{
			id:      e.ID,
			Name:    e.Name,
			Address: e.Address,
			Date:    cli.FormatDate(e.Date),
			Time:    e.Time,
			Cost:    fmtAmount(e.Cost),
		}
	}
	a.agendaV = v

	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Name").Value(&v.Name).Validate(validRequired),
		huh.NewInput().Title("Address").Value(&v.Address),
		huh.NewInput().Title("Date").Placeholder("2025-03-14").Value(&v.Date).Validate(validDate(false)),
		huh.NewInput().Title("Time").
			Description("Blank starts at "+a.icsOpts.DefaultStart+" in calendar exports").
			Placeholder("HH:MM").Value(&v.Time).Validate(validClock),
		huh.NewInput().Title("Cost").Value(&v.Cost).Validate(validAmount),
	))
	return a.startForm(formAgenda, f)
}

func (a *App) submitAgenda() tea.Cmd {
	v := a.agendaV
	in, err := v.input()
	if err != nil {
		a.setError(err.Error())
		return nil
	}
	if v.id == "" {
		e, err := in.Entry()
		if err != nil {
			a.setError(err.Error())
			return nil
		}
		return a.mutate("agenda entry added", func(b *workbook.Book) error {
			agenda.NewManager(b).Add(e)
			return nil
		})
	}
	p, err := in.Patch()
	if err != nil {
		a.setError(err.Error())
		return nil
	}
	id := v.id
	return a.mutate("agenda entry updated", func(b *workbook.Book) error {
		_, err := agenda.NewManager(b).Update(id, p)
		return err
	})
}

// ─── Assumptions ────────────────────────────────────────────────

type assumptionValues struct {
	AveragePrice, DefaultVariableCost, MonthlyFixedCosts, TargetBookings string
}

// apply writes the form onto raw. Blank fields become unset.
func (v *assumptionValues) apply(raw *model.RawAssumptions) error {
	fields := []struct {
		name string
		in   string
		out  **float64
	}{
		{"average price", v.AveragePrice, &raw.AveragePrice},
		{"default variable cost", v.DefaultVariableCost, &raw.DefaultVariableCost},
		{"monthly fixed costs", v.MonthlyFixedCosts, &raw.MonthlyFixedCosts},
		{"target bookings", v.TargetBookings, &raw.TargetBookings},
	}
	parsed := make([]*float64, len(fields))
	for i, f := range fields {
		p, err := parseAmount(f.in)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		parsed[i] = p
	}
	for i, f := range fields {
		*f.out = parsed[i]
	}
	return nil
}

func (a *App) openAssumptionsForm() tea.Cmd {
	raw := a.res.Book.Assumptions
	v := &assumptionValues{
		AveragePrice:        fmtOptAmount(raw.AveragePrice),
		DefaultVariableCost: fmtOptAmount(raw.DefaultVariableCost),
		MonthlyFixedCosts:   fmtOptAmount(raw.MonthlyFixedCosts),
		TargetBookings:      fmtOptAmount(raw.TargetBookings),
	}
	a.assumpV = v

	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Average price").Value(&v.AveragePrice).Validate(validAmount),
		huh.NewInput().Title("Default variable cost").
			Description("Applied to events without their own variable cost").
			Value(&v.DefaultVariableCost).Validate(validAmount),
		huh.NewInput().Title("Monthly fixed costs").Value(&v.MonthlyFixedCosts).Validate(validAmount),
		huh.NewInput().Title("Target bookings").
			Description("Monthly goal, used by the target booking ratio").
			Value(&v.TargetBookings).Validate(validAmount),
	))
	return a.startForm(formAssumptions, f)
}

// ─── Ads & funnel ───────────────────────────────────────────────

func validMonth(year int) func(string) error {
	return func(s string) error {
		if _, ok := model.ParseMonth(s, year); !ok {
			return errors.New("use 2025-03, Mar or marzo")
		}
		return nil
	}
}

type adsValues struct {
	Month, Spend, Impressions, Clicks, Messages string
}

func (v *adsValues) record(year int) (model.AdsRecord, error) {
	m, ok := model.ParseMonth(v.Month, year)
	if !ok {
		return model.AdsRecord{}, fmt.Errorf("month %q not recognised", v.Month)
	}
	r := model.AdsRecord{Month: m}
	for _, f := range []struct {
		name string
		in   string
		out  *float64
	}{
		{"spend", v.Spend, &r.Spend},
		{"impressions", v.Impressions, &r.Impressions},
		{"clicks", v.Clicks, &r.Clicks},
		{"messages", v.Messages, &r.Messages},
	} {
		n, err := amount(f.in)
		if err != nil {
			return model.AdsRecord{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.out = n
	}
	return r, nil
}

func (a *App) defaultMonth() string {
	m := model.MonthOf(a.now())
	if m.Year != a.year {
		m = model.Month{Year: a.year, Month: time.January}
	}
	return m.String()
}

func (a *App) openAdsForm(r *pipeline.AdsRow) tea.Cmd {
	v := &adsValues{Month: a.defaultMonth()}
	if r != nil {
		v = &adsValues{
			Month:       r.Month.String(),
			Spend:       fmtAmount(r.Spend),
			Impressions: fmtAmount(r.Impressions),
			Clicks:      fmtAmount(r.Clicks),
			Messages:    fmtAmount(r.Messages),
		}
	}
	a.adsV = v

	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Month").Value(&v.Month).Validate(validMonth(a.year)),
		huh.NewInput().Title("Spend").Value(&v.Spend).Validate(validAmount),
		huh.NewInput().Title("Impressions").Value(&v.Impressions).Validate(validAmount),
		huh.NewInput().Title("Clicks").Value(&v.Clicks).Validate(validAmount),
		huh.NewInput().Title("Messages").Value(&v.Messages).Validate(validAmount),
	))
	return a.startForm(formAds, f)
}

type funnelValues struct {
	Month, Messages, Offered, Confirmed string
}

func (v *funnelValues) record(year int) (model.FunnelRecord, error) {
	m, ok := model.ParseMonth(v.Month, year)
	if !ok {
		return model.FunnelRecord{}, fmt.Errorf("month %q not recognised", v.Month)
	}
	r := model.FunnelRecord{Month: m}
	var err error
	if r.Messages, err = amount(v.Messages); err != nil {
		return r, fmt.Errorf("messages: %w", err)
	}
	if r.AppointmentsOffered, err = amount(v.Offered); err != nil {
		return r, fmt.Errorf("appointments offered: %w", err)
	}
	if r.BookingsConfirmed, err = amount(v.Confirmed); err != nil {
		return r, fmt.Errorf("bookings confirmed: %w", err)
	}
	return r, nil
}

func (a *App) openFunnelForm(r *pipeline.FunnelRow) tea.Cmd {
	v := &funnelValues{Month: a.defaultMonth()}
	if r != nil {
		v = &funnelValues{
			Month:     r.Month.String(),
			Messages:  fmtAmount(r.Messages),
			Offered:   fmtAmount(r.AppointmentsOffered),
			Confirmed: fmtAmount(r.BookingsConfirmed),
		}
	}
	a.funnelV = v

	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Month").Value(&v.Month).Validate(validMonth(a.year)),
		huh.NewInput().Title("Messages").Value(&v.Messages).Validate(validAmount),
		huh.NewInput().Title("Appointments offered").Value(&v.Offered).Validate(validAmount),
		huh.NewInput().Title("Bookings confirmed").Value(&v.Confirmed).Validate(validAmount),
	))
	return a.startForm(formFunnel, f)
}
