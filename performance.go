package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kalmanoharan/rebalance-engine/date"
)

// PerformanceResult is the combined metric set for `performance` (§6 op 4).
type PerformanceResult struct {
	IRR                 *float64
	IRRAnnualized       *float64
	TTWROR              float64
	TTWRORAnnualized    float64
	CapitalGains        Money
	Dividends           Money
	Fees                Money
	Taxes               Money // always zero: no tax-jurisdiction-specific reporting (§1 Non-goals)
	AbsolutePerf        Money
	AbsolutePerfPercent Percent
}

// Performance composes C1 (IRR), C2 (TTWROR) and C3 (cost basis, for the
// capital-gains breakdown) into the portfolio-level read operation (§2, §6).
//
// start/end bound the window; currentValue is the portfolio's terminal
// market value, treated as a positive inflow at end for the IRR solver.
func Performance(activities []Activity, valuations []Valuation, start, end date.Date, currentValue Money) PerformanceResult {
	currency := currentValue.Currency()

	var windowed []Activity
	for _, a := range activities {
		if !a.Date.Before(start) && !a.Date.After(end) {
			windowed = append(windowed, a)
		}
	}

	flows := ActivitiesToCashFlows(windowed)
	irrResult := SolveIRR(flows, currentValue, end)

	points := make([]ValuationPoint, 0, len(valuations))
	for _, v := range valuations {
		if v.Date.Before(start) || v.Date.After(end) {
			continue
		}
		mv, _ := v.TotalValue.Decimal().Float64()
		ef, _ := v.ExternalFlow().Decimal().Float64()
		points = append(points, ValuationPoint{Date: v.Date, MarketValue: mv, ExternalFlow: ef})
	}
	ttwror := AccumulateTTWROR(points, false)

	dividends := M(Zero, currency)
	fees := M(Zero, currency)
	netInvested := M(Zero, currency)
	for _, a := range windowed {
		switch a.Type {
		case Dividend, Interest:
			dividends = dividends.Add(a.EffectiveValue())
		case Fee:
			fees = fees.Add(a.Fee)
		case Buy:
			netInvested = netInvested.Add(a.EffectiveValue()).Add(a.Fee)
			fees = fees.Add(a.Fee)
		case Sell:
			netInvested = netInvested.Sub(a.EffectiveValue().Sub(a.Fee))
			fees = fees.Add(a.Fee)
		}
	}

	ledger := NewLotLedger()
	ledger.ReplayActivities(windowed)
	capitalGains := M(Zero, currency)
	for security := range securitiesIn(windowed) {
		result := sellsOnly(windowed, security)
		capitalGains = capitalGains.Add(result)
	}

	absolutePerf := currentValue.Sub(netInvested)
	var absolutePerfPercent Percent
	if !netInvested.IsZero() {
		ratio, _ := absolutePerf.Decimal().Div(netInvested.Decimal()).Float64()
		absolutePerfPercent = Percent(ratio * 100)
	}

	return PerformanceResult{
		IRR:                 irrResult.IRR,
		IRRAnnualized:       irrResult.IRRAnnualized,
		TTWROR:              ttwror.TTWROR,
		TTWRORAnnualized:    ttwror.TTWRORAnnualized,
		CapitalGains:        capitalGains,
		Dividends:           dividends,
		Fees:                fees,
		Taxes:               M(Zero, currency),
		AbsolutePerf:        absolutePerf,
		AbsolutePerfPercent: absolutePerfPercent,
	}
}

// securitiesIn collects the distinct symbols touched by a set of activities.
func securitiesIn(activities []Activity) map[string]struct{} {
	set := make(map[string]struct{})
	for _, a := range activities {
		if a.Symbol != "" {
			set[a.Symbol] = struct{}{}
		}
	}
	return set
}

// sellsOnly replays one security's activities, in stable date order, into a
// fresh ledger and sums the realized gain of every SELL, giving the
// capital-gains contribution of that security within the window.
func sellsOnly(activities []Activity, security string) Money {
	sorted := make([]Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	ledger := NewLotLedger()
	gain := M(Zero, "")
	for _, a := range sorted {
		if a.Symbol != security {
			continue
		}
		switch a.Type {
		case Buy:
			cost := a.UnitPrice.Mul(a.Quantity).Add(a.Fee)
			ledger.AddPurchase(security, a.Date, a.Quantity, cost, a.Fee)
		case Sell:
			result := ledger.ProcessSale(security, a.Quantity, a.UnitPrice, a.Date)
			gain = gain.Add(result.RealizedGain)
		}
	}
	return gain
}

// PeriodPerformance is one bucket of a periodic performance breakdown.
type PeriodPerformance struct {
	Range  date.Range
	// Label identifies the bucket (e.g. "2024-Q1", "2024-03") the way a
	// chart legend or table row would, derived from Range.Identifier.
	Label string
	// ValuationCount is how many recorded valuations fall inside Range.
	// A bucket can be non-empty but still report 0 here if its market
	// value was resolved from a valuation recorded in an earlier bucket.
	ValuationCount int
	Result         PerformanceResult
}

// valuationHistory indexes a valuation series by date so a bucket boundary
// that falls between two recorded valuations can still resolve to "the most
// recent known market value on or before that day" (date.History.ValueAsOf),
// rather than requiring a valuation on every single bucket edge.
func valuationHistory(valuations []Valuation) *date.History[float64] {
	h := &date.History[float64]{}
	for _, v := range valuations {
		f, _ := v.TotalValue.Decimal().Float64()
		h.Append(v.Date, f)
	}
	return h
}

// PerformanceByPeriod buckets [start, end] into consecutive date.Range
// windows of the given granularity (date.Range.Split) and runs Performance
// independently over each one, giving the monthly/quarterly/yearly
// breakdown a dashboard needs instead of a single whole-window figure.
// currentValue is used as the terminal value of the final bucket; earlier
// buckets close out at the portfolio's recorded valuation as of their own
// end date.
func PerformanceByPeriod(activities []Activity, valuations []Valuation, start, end date.Date, currentValue Money, period date.Period) []PeriodPerformance {
	history := valuationHistory(valuations)
	currency := currentValue.Currency()

	buckets := date.Range{From: start, To: end}.Split(period)
	out := make([]PeriodPerformance, 0, end.Sub(start)/period.NominalDays()+1)
	for _, bucket := range buckets {
		bucketValue := currentValue
		if bucket.To != end {
			if v, ok := history.ValueAsOf(bucket.To); ok {
				bucketValue = M(decimal.NewFromFloat(v), currency)
			}
		}

		out = append(out, PeriodPerformance{
			Range:          bucket,
			Label:          bucket.Identifier(),
			ValuationCount: history.CountInRange(bucket),
			Result:         Performance(activities, valuations, bucket.From, bucket.To, bucketValue),
		})
	}
	return out
}

// HoldingPerformanceResult is the per-holding read operation's output (§6 op 5).
type HoldingPerformanceResult struct {
	IRR               *float64
	IRRAnnualized     *float64
	CostBasisSummary  CostBasisSummary
	OldestHoldingDays int
	HasHoldingDays    bool
	IsLongTerm        bool
}

// HoldingPerformance composes C1 and C3 for a single security (§6 op 5).
func HoldingPerformance(symbol string, activities []Activity, currentPrice Money, end date.Date, longTermThresholdDays int) HoldingPerformanceResult {
	var securityActivities []Activity
	for _, a := range activities {
		if a.Symbol == symbol {
			securityActivities = append(securityActivities, a)
		}
	}

	ledger := NewLotLedger()
	ledger.ReplayActivities(securityActivities)

	flows := ActivitiesToCashFlows(securityActivities)
	terminalValue := currentPrice.Mul(ledger.NetShares(symbol))
	irrResult := SolveIRR(flows, terminalValue, end)

	summary := ledger.Summary(symbol, currentPrice)
	days, ok := ledger.OldestHoldingDays(symbol, end)

	return HoldingPerformanceResult{
		IRR:               irrResult.IRR,
		IRRAnnualized:     irrResult.IRRAnnualized,
		CostBasisSummary:  summary,
		OldestHoldingDays: days,
		HasHoldingDays:    ok,
		IsLongTerm:        ledger.IsLongTerm(symbol, end, longTermThresholdDays),
	}
}
