package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/gbdash/internal/model"
)

func TestAdsMetrics_Scenario(t *testing.T) {
	d := AdsMetrics(model.AdsRecord{Spend: 100, Messages: 50, Clicks: 20, Impressions: 1000})
	if d.CostPerMessage == nil || *d.CostPerMessage != 2.0 {
		t.Errorf("CostPerMessage = %v, want 2.0", d.CostPerMessage)
	}
	if d.CTR == nil || *d.CTR != 0.02 {
		t.Errorf("CTR = %v, want 0.02", d.CTR)
	}
}

func TestAdsMetrics_ZeroDenominators(t *testing.T) {
	d := AdsMetrics(model.AdsRecord{Spend: 100})
	if d.CostPerMessage != nil || d.CTR != nil {
		t.Errorf("AdsMetrics with no messages/impressions = %+v, want nil ratios", d)
	}
}

func TestFunnelMetrics(t *testing.T) {
	d := FunnelMetrics(model.FunnelRecord{AppointmentsOffered: 8, BookingsConfirmed: 2})
	if d.CloseRate == nil || *d.CloseRate != 0.25 {
		t.Errorf("CloseRate = %v, want 0.25", d.CloseRate)
	}
	d = FunnelMetrics(model.FunnelRecord{BookingsConfirmed: 2})
	if d.CloseRate != nil {
		t.Errorf("CloseRate with zero appointments = %v, want nil", *d.CloseRate)
	}
}

func TestRowsFilterAndSort(t *testing.T) {
	records := []model.AdsRecord{
		{Month: model.Month{Year: 2025, Month: time.May}, Spend: 5},
		{Month: model.Month{Year: 2024, Month: time.May}, Spend: 4},
		{Month: model.Month{Year: 2025, Month: time.January}, Spend: 1},
	}
	rows := AdsRows(records, 2025)
	if len(rows) != 2 || rows[0].Spend != 1 || rows[1].Spend != 5 {
		t.Errorf("AdsRows = %+v", rows)
	}
	if all := AdsRows(records, 0); len(all) != 3 || all[0].Month.Year != 2024 {
		t.Errorf("AdsRows(all) = %+v", all)
	}
}

func TestUpsert(t *testing.T) {
	m := model.Month{Year: 2025, Month: time.June}
	var funnel []model.FunnelRecord
	funnel = UpsertFunnel(funnel, model.FunnelRecord{Month: m, Messages: 1})
	funnel = UpsertFunnel(funnel, model.FunnelRecord{Month: m, Messages: 2})
	if len(funnel) != 1 || funnel[0].Messages != 2 {
		t.Errorf("UpsertFunnel = %+v", funnel)
	}

	var ads []model.AdsRecord
	ads = UpsertAds(ads, model.AdsRecord{Month: m, Spend: 1})
	ads = UpsertAds(ads, model.AdsRecord{Month: model.Month{Year: 2025, Month: time.July}, Spend: 2})
	if len(ads) != 2 {
		t.Errorf("UpsertAds = %+v", ads)
	}
}
