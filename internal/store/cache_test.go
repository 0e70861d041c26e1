package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/gbdash/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndLoadSummaries(t *testing.T) {
	c := openTestCache(t)
	k := Key{Path: "/tmp/book.xlsx", Year: 2025, Options: "confirmed|1|all"}

	if _, ok, err := c.Tracked(k); err != nil || ok {
		t.Fatalf("Tracked on empty cache = %v, %v", ok, err)
	}

	in := []model.MonthlySummary{
		{Month: model.Month{Year: 2025, Month: time.January}},
		{Month: model.Month{Year: 2025, Month: time.February}, EventCount: 2, ConfirmedCount: 1,
			Revenue: 500, VariableCostTotal: 130, FixedCosts: 1000, NetProfit: -630,
			ARPU: model.Float(250), BookingRatio: model.Float(0.5), NewReviews: 3},
	}
	fi := FileInfo{MtimeNs: 42, SizeBytes: 1024}
	if err := c.SaveSummaries(k, fi, in); err != nil {
		t.Fatalf("SaveSummaries: %v", err)
	}

	got, ok, err := c.Tracked(k)
	if err != nil || !ok || got != fi {
		t.Fatalf("Tracked = %+v, %v, %v", got, ok, err)
	}

	out, err := c.LoadSummaries(k)
	if err != nil {
		t.Fatalf("LoadSummaries: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d summaries, want 2", len(out))
	}
	if out[0].ARPU != nil || out[0].BookingRatio != nil {
		t.Errorf("January ratios should stay nil: %+v", out[0])
	}
	feb := out[1]
	if feb.Month != in[1].Month || feb.NetProfit != -630 || feb.ARPU == nil || *feb.ARPU != 250 {
		t.Errorf("February = %+v", feb)
	}
}

func TestSaveSummaries_Replaces(t *testing.T) {
	c := openTestCache(t)
	k := Key{Path: "book.xlsx", Year: 2025, Options: "x"}
	one := []model.MonthlySummary{{Month: model.Month{Year: 2025, Month: time.March}, Revenue: 1}}
	two := []model.MonthlySummary{{Month: model.Month{Year: 2025, Month: time.March}, Revenue: 2}}

	if err := c.SaveSummaries(k, FileInfo{MtimeNs: 1}, one); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveSummaries(k, FileInfo{MtimeNs: 2}, two); err != nil {
		t.Fatal(err)
	}
	n, err := c.SummaryCount()
	if err != nil || n != 1 {
		t.Fatalf("SummaryCount = %d, %v, want 1", n, err)
	}
	out, _ := c.LoadSummaries(k)
	if out[0].Revenue != 2 {
		t.Errorf("revenue = %.2f, want 2", out[0].Revenue)
	}
}

func TestInvalidate(t *testing.T) {
	c := openTestCache(t)
	k := Key{Path: "book.xlsx", Year: 2025, Options: "x"}
	if err := c.SaveSummaries(k, FileInfo{}, []model.MonthlySummary{{Month: model.Month{Year: 2025, Month: 1}}}); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate("book.xlsx"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Tracked(k); ok {
		t.Error("tracker should be gone after Invalidate")
	}
	if n, _ := c.SummaryCount(); n != 0 {
		t.Errorf("SummaryCount = %d, want 0", n)
	}
}
