package engine

import (
	"github.com/google/uuid"
	"github.com/kalmanoharan/rebalance-engine/date"
)

// PurchaseLot is one acquisition: the unit of FIFO cost-basis accounting
// (§3). CostPerShare is frozen at creation; only RemainingShares mutates as
// the lot is consumed by sales or transfers.
type PurchaseLot struct {
	ID              string
	Date            date.Date
	Shares          Quantity // original acquired quantity
	CostPerShare    Money    // TotalCost / Shares, frozen
	TotalCost       Money    // including fees
	RemainingShares Quantity // 0 <= RemainingShares <= Shares
	Fees            Money
}

// newLot creates a lot with a fresh, stable ID and a frozen cost-per-share.
func newLot(on date.Date, shares Quantity, totalCost, fees Money) *PurchaseLot {
	return &PurchaseLot{
		ID:              uuid.NewString(),
		Date:            on,
		Shares:          shares,
		CostPerShare:    totalCost.DivQuantity(shares),
		TotalCost:       totalCost,
		RemainingShares: shares,
		Fees:            fees,
	}
}

// isActive reports whether a lot still carries remaining shares. Depleted
// lots are kept in the ledger for audit (§9 Design Notes) but excluded from
// active totals.
func (l *PurchaseLot) isActive() bool { return l.RemainingShares.IsPositive() }

// LotConsumed records one lot's contribution to a sale.
type LotConsumed struct {
	LotID     string
	LotDate   date.Date
	Shares    Quantity
	CostBasis Money
}

// consume reduces the lot's remaining shares by `shares` (capped to what is
// available) and returns the consumption record, whose Shares is the amount
// actually taken, so callers enforce the short-sell policy without a second pass.
func (l *PurchaseLot) consume(shares Quantity) LotConsumed {
	taken := shares.Min(l.RemainingShares)
	costBasis := l.CostPerShare.Mul(taken)
	l.RemainingShares = l.RemainingShares.Sub(taken)
	return LotConsumed{LotID: l.ID, LotDate: l.Date, Shares: taken, CostBasis: costBasis}
}
