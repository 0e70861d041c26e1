package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

// newTestService writes a small workbook and serves it.
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")

	b := workbook.New(workbook.LocaleES)
	b.Assumptions.DefaultVariableCost = model.Float(50)
	b.Assumptions.MonthlyFixedCosts = model.Float(1000)
	b.Events = []model.Event{
		{ID: 1, Date: day(3, 5), ClientName: "Ana", Price: 200},
		{ID: 2, Date: day(3, 20), ClientName: "Luis", Price: 300, VariableCost: model.Float(80), Confirmed: true},
	}
	b.Ads = []model.AdsRecord{{Month: model.Month{Year: 2025, Month: time.March}, Spend: 100, Messages: 50, Clicks: 20, Impressions: 1000}}
	b.Funnel = []model.FunnelRecord{{Month: model.Month{Year: 2025, Month: time.March}, AppointmentsOffered: 0, BookingsConfirmed: 0}}
	if err := workbook.Save(path, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := New(Config{
		Workbook: path,
		Year:     2025,
		Options:  pipeline.DefaultOptions(),
		ICS:      agenda.DefaultICSOptions(),
	}, nil)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s, path
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndRequestID(t *testing.T) {
	s, _ := newTestService(t)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRequestIDFromClient(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()
	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"uuid", "3f2b8c1e-0a4d-4e5f-9b7a-1c2d3e4f5a6b", true},
		{"max length", strings.Repeat("a", 64), true},
		{"too long", strings.Repeat("a", 65), false},
		{"header injection", "abc\r\nSet-Cookie: x=1", false},
		{"spaces", "abc def", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("X-Request-ID", tt.in)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			got := rec.Header().Get("X-Request-ID")
			if (got == tt.in) != tt.keep {
				t.Errorf("X-Request-ID = %q for %q, keep = %v", got, tt.in, tt.keep)
			}
			if !validRID(got) {
				t.Errorf("response id %q is not a valid id", got)
			}
		})
	}
}

func TestMonthlyScenario(t *testing.T) {
	s, _ := newTestService(t)
	rec := do(t, s.Handler(), http.MethodGet, "/v1/monthly?year=2025", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	monthly := decode[[]model.MonthlySummary](t, rec)
	if len(monthly) != 12 {
		t.Fatalf("got %d months", len(monthly))
	}
	mar := monthly[2]
	if mar.Revenue != 500 || mar.VariableCostTotal != 130 || mar.NetProfit != -630 {
		t.Errorf("March = revenue %v, var %v, net %v; want 500, 130, -630", mar.Revenue, mar.VariableCostTotal, mar.NetProfit)
	}
	if jan := monthly[0]; jan.ARPU != nil || jan.EventCount != 0 {
		t.Errorf("January ARPU = %v, want nil", jan.ARPU)
	}
}

func TestDashboard(t *testing.T) {
	s, _ := newTestService(t)
	rec := do(t, s.Handler(), http.MethodGet, "/v1/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	d := decode[Dashboard](t, rec)
	if d.Year != 2025 || d.YTD.EventCount != 2 || d.YTD.Revenue != 500 {
		t.Errorf("dashboard = %+v", d)
	}
	if d.YTD.Through.Month != time.June {
		t.Errorf("YTD through = %v, want 2025-06", d.YTD.Through)
	}
	if len(d.Years) != 1 || d.Years[0] != 2025 {
		t.Errorf("years = %v", d.Years)
	}
}

func TestAdsAndFunnel(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	ads := decode[[]pipeline.AdsRow](t, do(t, h, http.MethodGet, "/v1/ads?year=2025", ""))
	if len(ads) != 1 || ads[0].CostPerMessage == nil || *ads[0].CostPerMessage != 2 || *ads[0].CTR != 0.02 {
		t.Errorf("ads = %+v", ads)
	}
	funnel := decode[[]pipeline.FunnelRow](t, do(t, h, http.MethodGet, "/v1/funnel", ""))
	if len(funnel) != 1 || funnel[0].CloseRate != nil {
		t.Errorf("funnel close rate with zero offered should be null: %+v", funnel)
	}
}

// writeYearlessFunnel writes a workbook whose Funnel sheet labels months
// without a year, next to two confirmed March 2024 events.
func writeYearlessFunnel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.xlsx")
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", workbook.SheetEvents); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet(workbook.SheetFunnel); err != nil {
		t.Fatal(err)
	}
	sheets := map[string][][]any{
		workbook.SheetEvents: {
			{"ID", "Fecha", "Precio (MXN)", "Estatus"},
			{1, "2024-03-05", 200, "Efectuado"},
			{2, "2024-03-19", 300, "Efectuado"},
		},
		workbook.SheetFunnel: {
			{"Mes", "Mensajes", "Citas ofrecidas", "Reservas confirmadas"},
			{"Mar", 40, 4, 2},
		},
	}
	for name, rows := range sheets {
		for r, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYearlessMonthLabelsFollowRequestedYear(t *testing.T) {
	opts := pipeline.DefaultOptions()
	opts.BookingRatio = pipeline.BookingRatioFunnel
	s := New(Config{Workbook: writeYearlessFunnel(t), Options: opts, ICS: agenda.DefaultICSOptions()}, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) }
	h := s.Handler()

	monthly := decode[[]model.MonthlySummary](t, do(t, h, http.MethodGet, "/v1/monthly?year=2024", ""))
	if len(monthly) != 12 {
		t.Fatalf("got %d months", len(monthly))
	}
	if br := monthly[2].BookingRatio; br == nil || *br != 1 {
		t.Errorf("March 2024 booking ratio = %v, want 1", br)
	}

	funnel := decode[[]pipeline.FunnelRow](t, do(t, h, http.MethodGet, "/v1/funnel?year=2024", ""))
	if len(funnel) != 1 || funnel[0].Month != (model.Month{Year: 2024, Month: time.March}) {
		t.Errorf("funnel 2024 = %+v", funnel)
	}
	if rows := decode[[]pipeline.FunnelRow](t, do(t, h, http.MethodGet, "/v1/funnel?year=2026", "")); len(rows) != 1 {
		t.Errorf("funnel 2026 = %+v, want the label read as 2026", rows)
	}
}

func TestEventLifecycle(t *testing.T) {
	s, path := newTestService(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/v1/events", `{"date":"2025-04-02","client_name":"Caro","price":250,"start_time":"18:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[model.Event](t, rec)
	if created.ID != 3 || created.StartTime != "18:00" {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, h, http.MethodPatch, "/v1/events/3", `{"confirmed":true,"variable_cost":60}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch = %d: %s", rec.Code, rec.Body.String())
	}
	if e := decode[model.Event](t, rec); !e.Confirmed || e.VariableCost == nil || *e.VariableCost != 60 || e.ClientName != "Caro" {
		t.Errorf("patched = %+v", e)
	}

	b, _, err := workbook.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Events) != 3 {
		t.Fatalf("workbook has %d events after create", len(b.Events))
	}

	list := decode[[]model.Event](t, do(t, h, http.MethodGet, "/v1/events?month=2025-04&status=confirmed", ""))
	if len(list) != 1 || list[0].ID != 3 {
		t.Errorf("filtered list = %+v", list)
	}

	if rec := do(t, h, http.MethodDelete, "/v1/events/3", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/v1/events/3", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestEventErrors(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	tests := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodPost, "/v1/events", `{"client_name":"no date"}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/events", `{"date":"2025-04-02","bogus":1}`, http.StatusBadRequest},
		{http.MethodPatch, "/v1/events/abc", `{}`, http.StatusBadRequest},
		{http.MethodPatch, "/v1/events/99", `{}`, http.StatusNotFound},
		{http.MethodGet, "/v1/events?status=maybe", "", http.StatusBadRequest},
		{http.MethodGet, "/v1/monthly?year=25", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.target, tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.target, rec.Code, tt.want, rec.Body.String())
			continue
		}
		if body := decode[map[string]string](t, rec); body["error"] == "" {
			t.Errorf("%s %s: missing error body", tt.method, tt.target)
		}
	}
}

func TestAgendaLifecycleAndExports(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/v1/agenda", `{"name":"Visita","address":"Calle 5","date":"2025-05-10","time":"11:00","cost":150}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	e := decode[model.AgendaEntry](t, rec)

	rec = do(t, h, http.MethodPut, "/v1/agenda/"+e.ID, `{"cost":175}`)
	if got := decode[model.AgendaEntry](t, rec); got.Cost != 175 || got.Name != "Visita" {
		t.Errorf("update = %+v", got)
	}

	rec = do(t, h, http.MethodGet, "/v1/agenda.csv", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("csv content type = %q", ct)
	}
	entries, err := agenda.FromCSV(bytes.NewReader(rec.Body.Bytes()))
	if err != nil || len(entries) != 1 || entries[0].Cost != 175 {
		t.Errorf("csv export = %+v, %v", entries, err)
	}

	rec = do(t, h, http.MethodGet, "/v1/agenda.ics", "")
	if !strings.Contains(rec.Body.String(), "SUMMARY:Visita") {
		t.Errorf("ics export missing entry:\n%s", rec.Body.String())
	}

	if rec := do(t, h, http.MethodDelete, "/v1/agenda/"+e.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if list := decode[[]model.AgendaEntry](t, do(t, h, http.MethodGet, "/v1/agenda", "")); len(list) != 0 {
		t.Errorf("agenda after delete = %+v", list)
	}
}

func TestCalendarFeedsAndConsolidate(t *testing.T) {
	s, path := newTestService(t)
	h := s.Handler()

	feed := decode[[]agenda.FeedEvent](t, do(t, h, http.MethodGet, "/v1/calendar", ""))
	if len(feed) != 2 || feed[1].Color != agenda.ColorOther {
		t.Errorf("feed = %+v", feed)
	}
	if rec := do(t, h, http.MethodGet, "/v1/events.ics", ""); !strings.Contains(rec.Body.String(), "event-1@gbdash") {
		t.Errorf("events.ics missing event 1")
	}

	rec := do(t, h, http.MethodPost, "/v1/consolidate?year=2025", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("consolidate = %d: %s", rec.Code, rec.Body.String())
	}
	b, _, err := workbook.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Monthly) != 12 || b.Monthly[2].Revenue != 500 {
		t.Errorf("Monthly sheet = %d rows", len(b.Monthly))
	}
}

func TestEventsCSVUsesListFilters(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/v1/events.csv?status=confirmed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("events.csv = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "eventos.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "2" || rows[1][4] != "Luis" {
		t.Errorf("confirmed rows = %v", rows)
	}

	rows, err = csv.NewReader(bytes.NewReader(do(t, h, http.MethodGet, "/v1/events.csv?q=ana", "").Body.Bytes())).ReadAll()
	if err != nil || len(rows) != 2 || rows[1][14] != "50" {
		t.Errorf("search rows = %v, %v", rows, err)
	}

	if rec := do(t, h, http.MethodGet, "/v1/events.csv?status=maybe", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", rec.Code)
	}
}

func TestSheets(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	sheets := decode[[]SheetInfo](t, do(t, h, http.MethodGet, "/v1/sheets", ""))
	rows := map[string]int{}
	for _, sh := range sheets {
		rows[sh.Name] = sh.Rows
	}
	if rows[workbook.SheetEvents] != 2 || rows[workbook.SheetAds] != 1 {
		t.Errorf("sheets = %+v", sheets)
	}

	rec := do(t, h, http.MethodGet, "/v1/sheets/event_log.xlsx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Event_Log.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if list := f.GetSheetList(); len(list) != 1 || list[0] != workbook.SheetEvents {
		t.Errorf("exported sheets = %v", list)
	}

	if rec := do(t, h, http.MethodGet, "/v1/sheets/Nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown sheet = %d, want 404", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()
	do(t, h, http.MethodGet, "/v1/events/", "")
	do(t, h, http.MethodGet, "/v1/annual", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	body := rec.Body.String()
	for _, want := range []string{
		`gbdash_http_requests_total{method="GET",route="/v1/annual",status="200"} 1`,
		"gbdash_workbook_load_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
