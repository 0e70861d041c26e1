package model

// FunnelRecord is one month of the sales funnel.
type FunnelRecord struct {
	Month               Month   `json:"month"`
	Messages            float64 `json:"messages"`
	AppointmentsOffered float64 `json:"appointments_offered"`
	BookingsConfirmed   float64 `json:"bookings_confirmed"`
}

// FunnelDerived holds the per-row funnel ratios.
type FunnelDerived struct {
	CloseRate *float64 `json:"close_rate"`
}

// AdsRecord is one month of paid-ads spend and reach.
type AdsRecord struct {
	Month       Month   `json:"month"`
	Spend       float64 `json:"spend"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Messages    float64 `json:"messages"`
}

// AdsDerived holds the per-row ads ratios.
type AdsDerived struct {
	CostPerMessage *float64 `json:"cost_per_message"`
	CTR            *float64 `json:"ctr"`
}

// MonthlyNote carries the hand-entered columns of the Monthly sheet.
type MonthlyNote struct {
	Month      Month   `json:"month"`
	NewReviews float64 `json:"new_reviews"`
}
