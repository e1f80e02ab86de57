package engine

import (
	"sort"

	"github.com/kalmanoharan/rebalance-engine/date"
)

// LotLedger is the FIFO cost-basis store (C3, §4.3). It is mutable, but
// always instantiated per analysis call (§5, §9 Design Notes): callers build
// one, replay an activity stream into it, query it, and drop it.
type LotLedger struct {
	lots map[string][]*PurchaseLot // security -> lots, sorted ascending by Date
}

// NewLotLedger returns an empty ledger.
func NewLotLedger() *LotLedger {
	return &LotLedger{lots: make(map[string][]*PurchaseLot)}
}

// AddPurchase records a new lot for a security.
func (l *LotLedger) AddPurchase(security string, on date.Date, shares Quantity, totalCost, fees Money) *PurchaseLot {
	lot := newLot(on, shares, totalCost, fees)
	l.lots[security] = append(l.lots[security], lot)
	l.sortSecurity(security)
	return lot
}

// sortSecurity keeps a security's lots ordered ascending by date, stable on
// ties so same-day purchases retain insertion order (§3 invariant).
func (l *LotLedger) sortSecurity(security string) {
	lots := l.lots[security]
	sort.SliceStable(lots, func(i, j int) bool { return lots[i].Date.Before(lots[j].Date) })
}

// SaleResult is the outcome of a FIFO sale (§4.3).
type SaleResult struct {
	SharesRequested     Quantity
	SharesSold          Quantity // may be < SharesRequested if short
	TotalCostBasis      Money
	TotalProceeds        Money
	RealizedGain         Money
	RealizedGainPercent  Percent
	LotsUsed             []LotConsumed
}

// ProcessSale consumes lots oldest-first until shares are satisfied or
// exhausted (FIFO, §4.3). The ledger never goes negative: if the requested
// quantity exceeds available shares, the excess is silently dropped and
// reflected in SharesSold < SharesRequested.
func (l *LotLedger) ProcessSale(security string, shares Quantity, price Money, on date.Date) SaleResult {
	remaining := shares
	costBasis := M(Zero, price.Currency())
	var used []LotConsumed

	for _, lot := range l.lots[security] {
		if remaining.IsZero() || !remaining.IsPositive() {
			break
		}
		if !lot.isActive() {
			continue
		}
		consumed := lot.consume(remaining)
		if consumed.Shares.IsZero() {
			continue
		}
		costBasis = costBasis.Add(consumed.CostBasis)
		remaining = remaining.Sub(consumed.Shares)
		used = append(used, consumed)
	}

	sold := shares.Sub(remaining)
	proceeds := price.Mul(sold)
	gain := proceeds.Sub(costBasis)

	var pct Percent
	if !costBasis.IsZero() {
		ratio, _ := gain.Decimal().Div(costBasis.Decimal()).Float64()
		pct = Percent(ratio * 100)
	}

	return SaleResult{
		SharesRequested:    shares,
		SharesSold:         sold,
		TotalCostBasis:     costBasis,
		TotalProceeds:      proceeds,
		RealizedGain:       gain,
		RealizedGainPercent: pct,
		LotsUsed:           used,
	}
}

// TransferredLots is the output of a lot transfer: new lot records that
// preserve acquisition date (holding-period continuity) and carry a
// proportional slice of the source lots' fees (§4.3).
type TransferredLots struct {
	Security string
	Lots     []*PurchaseLot
}

// ProcessTransfer consumes lots identically to a sale, but instead of
// realizing a gain it produces new, date-preserving lot records for the
// destination ledger (the caller's responsibility to insert).
func (l *LotLedger) ProcessTransfer(security string, shares Quantity, on date.Date) TransferredLots {
	remaining := shares
	var out []*PurchaseLot

	for _, lot := range l.lots[security] {
		if !remaining.IsPositive() {
			break
		}
		if !lot.isActive() {
			continue
		}
		taken := remaining.Min(lot.RemainingShares)
		if taken.IsZero() {
			continue
		}
		costBasis := lot.CostPerShare.Mul(taken)
		fees := lot.Fees.Mul(taken).DivQuantity(lot.Shares)
		lot.RemainingShares = lot.RemainingShares.Sub(taken)
		remaining = remaining.Sub(taken)

		out = append(out, &PurchaseLot{
			ID:              lot.ID,
			Date:            lot.Date, // preserved for holding-period continuity
			Shares:          taken,
			CostPerShare:    lot.CostPerShare,
			TotalCost:       costBasis,
			RemainingShares: taken,
			Fees:            fees,
		})
	}

	return TransferredLots{Security: security, Lots: out}
}

// CostBasisSummary aggregates active lots for a security (§4.3).
type CostBasisSummary struct {
	Security       string
	TotalShares    Quantity
	TotalCostBasis Money
	AvgCost        Money
	CurrentPrice   Money
	UnrealizedGain Money
}

// Summary computes the active-lot aggregate for a security, valuing it at
// the caller-supplied current price. The ledger never consults market data
// itself (§4.3 contract).
func (l *LotLedger) Summary(security string, currentPrice Money) CostBasisSummary {
	shares := Quantity{}
	basis := M(Zero, currentPrice.Currency())

	for _, lot := range l.lots[security] {
		if !lot.isActive() {
			continue
		}
		shares = shares.Add(lot.RemainingShares)
		basis = basis.Add(lot.CostPerShare.Mul(lot.RemainingShares))
	}

	var avg Money
	if !shares.IsZero() {
		avg = basis.DivQuantity(shares)
	} else {
		avg = M(Zero, currentPrice.Currency())
	}

	marketValue := currentPrice.Mul(shares)
	return CostBasisSummary{
		Security:       security,
		TotalShares:    shares,
		TotalCostBasis: basis,
		AvgCost:        avg,
		CurrentPrice:   currentPrice,
		UnrealizedGain: marketValue.Sub(basis),
	}
}

// OldestHoldingDays returns the number of days since the oldest lot with
// remaining shares was acquired, or false if no shares are held.
func (l *LotLedger) OldestHoldingDays(security string, asOf date.Date) (int, bool) {
	for _, lot := range l.lots[security] {
		if lot.isActive() {
			return asOf.Sub(lot.Date), true
		}
	}
	return 0, false
}

// IsLongTerm reports whether the oldest remaining lot has been held longer
// than threshold days. Tax-jurisdiction semantics are out of scope (§1); the
// caller supplies the threshold.
func (l *LotLedger) IsLongTerm(security string, asOf date.Date, thresholdDays int) bool {
	days, ok := l.OldestHoldingDays(security, asOf)
	return ok && days > thresholdDays
}

// NetShares returns the sum of remaining shares for a security across all
// lots, active or not (always zero once depleted).
func (l *LotLedger) NetShares(security string) Quantity {
	total := Quantity{}
	for _, lot := range l.lots[security] {
		total = total.Add(lot.RemainingShares)
	}
	return total
}

// Clear drops all lots, across all securities.
func (l *LotLedger) Clear() {
	l.lots = make(map[string][]*PurchaseLot)
}

// Lots returns a defensive copy of the lot slice for a security, in FIFO
// (date-ascending) order, for callers that need to inspect the raw ledger
// (audits, tests).
func (l *LotLedger) Lots(security string) []*PurchaseLot {
	src := l.lots[security]
	out := make([]*PurchaseLot, len(src))
	copy(out, src)
	return out
}

// ReplayActivities rebuilds the ledger deterministically from an activity
// stream, sorted by date (ties break by input order, a stable sort; §5
// Ordering guarantees): BUY adds a lot, SELL consumes lots oldest-first.
// Other activity types are ignored.
func (l *LotLedger) ReplayActivities(activities []Activity) {
	sorted := make([]Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, a := range sorted {
		switch a.Type {
		case Buy:
			cost := a.UnitPrice.Mul(a.Quantity).Add(a.Fee)
			l.AddPurchase(a.Symbol, a.Date, a.Quantity, cost, a.Fee)
		case Sell:
			l.ProcessSale(a.Symbol, a.Quantity, a.UnitPrice, a.Date)
		}
	}
}
