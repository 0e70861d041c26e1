package pipeline

import (
	"sort"

	"github.com/theirongolddev/gbdash/internal/model"
)

// FunnelMetrics derives the close rate of one funnel row. The rate is nil
// when no appointments were offered.
func FunnelMetrics(r model.FunnelRecord) model.FunnelDerived {
	return model.FunnelDerived{CloseRate: ratio(r.BookingsConfirmed, r.AppointmentsOffered)}
}

// AdsMetrics derives cost per message and click-through rate of one ads row.
func AdsMetrics(r model.AdsRecord) model.AdsDerived {
	return model.AdsDerived{
		CostPerMessage: moneyRatio(r.Spend, r.Messages),
		CTR:            ratio(r.Clicks, r.Impressions),
	}
}

// FunnelRow pairs a funnel record with its derived fields.
type FunnelRow struct {
	model.FunnelRecord
	model.FunnelDerived
}

// AdsRow pairs an ads record with its derived fields.
type AdsRow struct {
	model.AdsRecord
	model.AdsDerived
}

// FunnelRows derives every record of year (all years when year is 0),
// sorted by month.
func FunnelRows(records []model.FunnelRecord, year int) []FunnelRow {
	out := make([]FunnelRow, 0, len(records))
	for _, r := range records {
		if year != 0 && r.Month.Year != year {
			continue
		}
		out = append(out, FunnelRow{FunnelRecord: r, FunnelDerived: FunnelMetrics(r)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// AdsRows derives every record of year (all years when year is 0), sorted
// by month.
func AdsRows(records []model.AdsRecord, year int) []AdsRow {
	out := make([]AdsRow, 0, len(records))
	for _, r := range records {
		if year != 0 && r.Month.Year != year {
			continue
		}
		out = append(out, AdsRow{AdsRecord: r, AdsDerived: AdsMetrics(r)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// UpsertFunnel replaces the record for r.Month or appends it.
func UpsertFunnel(records []model.FunnelRecord, r model.FunnelRecord) []model.FunnelRecord {
	for i := range records {
		if records[i].Month == r.Month {
			records[i] = r
			return records
		}
	}
	return append(records, r)
}

// UpsertAds replaces the record for r.Month or appends it.
func UpsertAds(records []model.AdsRecord, r model.AdsRecord) []model.AdsRecord {
	for i := range records {
		if records[i].Month == r.Month {
			records[i] = r
			return records
		}
	}
	return append(records, r)
}
