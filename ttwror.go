package engine

import (
	"math"
	"sort"

	"github.com/kalmanoharan/rebalance-engine/date"
)

// ValuationPoint is one day's market value and external flow, the unit C2
// accumulates over (§4.2).
type ValuationPoint struct {
	Date          date.Date
	MarketValue   float64
	ExternalFlow  float64
}

// TTWRORResult is the output of the time-weighted return accumulator.
type TTWRORResult struct {
	TTWROR           float64
	TTWRORAnnualized float64
	// Series holds the cumulative factor (1 + cumulative return) at each
	// point, aligned index-for-index with the sorted input, when requested.
	Series []float64
}

// AccumulateTTWROR computes the cash-flow-neutral, geometrically linked
// time-weighted return over a sequence of daily valuations (§4.2).
//
// Fewer than two points returns the zero result, per the degenerate-data
// contract in §7.
func AccumulateTTWROR(points []ValuationPoint, withSeries bool) TTWRORResult {
	if len(points) < 2 {
		return TTWRORResult{}
	}

	sorted := make([]ValuationPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	cumulative := 1.0
	var series []float64
	if withSeries {
		series = make([]float64, len(sorted))
		series[0] = cumulative
	}

	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]

		inbound := math.Max(curr.ExternalFlow, 0)
		outbound := math.Max(-curr.ExternalFlow, 0)

		// Modified-Dietz: a mid-period external flow is credited to the
		// period that received it, not baked into the opening base, so it
		// never inflates or deflates the market's own return.
		denominator := prev.MarketValue
		if denominator > 0 {
			periodReturn := (curr.MarketValue-inbound+outbound)/denominator - 1
			cumulative *= 1 + periodReturn
		}
		// denominator <= 0: period contributes nothing, cumulative unchanged.

		if withSeries {
			series[i] = cumulative
		}
	}

	ttwror := cumulative - 1

	days := sorted[len(sorted)-1].Date.Sub(sorted[0].Date)
	if days < 1 {
		days = 1
	}
	var annualized float64
	if cumulative > 0 {
		annualized = math.Pow(cumulative, 365.0/float64(days)) - 1
	} else {
		annualized = -1
	}

	return TTWRORResult{TTWROR: ttwror, TTWRORAnnualized: annualized, Series: series}
}
