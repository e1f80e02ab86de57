package engine

import "github.com/kalmanoharan/rebalance-engine/date"

// Valuation is a daily portfolio snapshot (§3).
type Valuation struct {
	Date        date.Date
	TotalValue  Money
	Deposits    Money
	Withdrawals Money
}

// ExternalFlow is the net cash moved in/out of the portfolio that day,
// not attributable to market movement: deposits minus withdrawals.
func (v Valuation) ExternalFlow() Money {
	return v.Deposits.Sub(v.Withdrawals)
}
