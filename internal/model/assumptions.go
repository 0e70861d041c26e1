package model

// Assumptions holds the business-wide defaults used when per-event data is
// absent. Fields read from the sheet are optional until Resolve is called.
type Assumptions struct {
	AveragePrice        float64  `json:"average_price"`
	DefaultVariableCost float64  `json:"default_variable_cost"`
	MonthlyFixedCosts   float64  `json:"monthly_fixed_costs"`
	TargetBookings      *float64 `json:"target_bookings"`
}

// RawAssumptions is the Assumptions sheet as read, before defaults apply.
type RawAssumptions struct {
	AveragePrice        *float64
	DefaultVariableCost *float64
	MonthlyFixedCosts   *float64
	TargetBookings      *float64

	// Extra keeps unrecognised Variable/Value rows so saving does not drop them.
	Extra []KeyValue
}

// KeyValue is a free-form assumptions row.
type KeyValue struct {
	Key   string
	Value string
}

// Resolve applies zero defaults to missing fields. TargetBookings stays
// optional because zero is not a meaningful target.
func (r RawAssumptions) Resolve() Assumptions {
	a := Assumptions{TargetBookings: r.TargetBookings}
	if r.AveragePrice != nil {
		a.AveragePrice = *r.AveragePrice
	}
	if r.DefaultVariableCost != nil {
		a.DefaultVariableCost = *r.DefaultVariableCost
	}
	if r.MonthlyFixedCosts != nil {
		a.MonthlyFixedCosts = *r.MonthlyFixedCosts
	}
	return a
}
