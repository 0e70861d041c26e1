package model

// MonthlySummary holds the derived figures for one month.
type MonthlySummary struct {
	Month             Month    `json:"month"`
	EventCount        int      `json:"event_count"`
	ConfirmedCount    int      `json:"confirmed_count"`
	AveragePrice      *float64 `json:"average_price"`
	Revenue           float64  `json:"revenue"`
	VariableCostTotal float64  `json:"variable_cost_total"`
	FixedCosts        float64  `json:"fixed_costs"`
	PizzaAddons       int      `json:"pizza_addons"`
	PizzaMargin       float64  `json:"pizza_margin"`
	NetProfit         float64  `json:"net_profit"`
	ARPU              *float64 `json:"arpu"`
	BookingRatio      *float64 `json:"booking_ratio"`
	RetroAdoption     *float64 `json:"retro_adoption"`
	NewReviews        float64  `json:"new_reviews"`
}

// AnnualSummary rolls up a year of monthly summaries.
type AnnualSummary struct {
	Year              int      `json:"year"`
	Months            int      `json:"months"`
	ActiveMonths      int      `json:"active_months"`
	EventCount        int      `json:"event_count"`
	Revenue           float64  `json:"revenue"`
	VariableCostTotal float64  `json:"variable_cost_total"`
	FixedCosts        float64  `json:"fixed_costs"`
	PizzaAddons       int      `json:"pizza_addons"`
	PizzaMargin       float64  `json:"pizza_margin"`
	NetProfit         float64  `json:"net_profit"`
	NewReviews        float64  `json:"new_reviews"`
	ARPU              *float64 `json:"arpu"`
	AvgMonthlyRevenue *float64 `json:"avg_monthly_revenue"`
	AvgMonthlyProfit  *float64 `json:"avg_monthly_net_profit"`
	AvgBookingRatio   *float64 `json:"avg_booking_ratio"`
}

// KPIs is the year-to-date header shown on the dashboard.
type KPIs struct {
	Through    Month   `json:"through"`
	EventCount int     `json:"event_count"`
	Revenue    float64 `json:"revenue"`
	NetProfit  float64 `json:"net_profit"`
}
