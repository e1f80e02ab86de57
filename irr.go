package engine

import (
	"math"

	"github.com/kalmanoharan/rebalance-engine/date"
)

// IRRResult is the outcome of the money-weighted return solver (C1, §4.1).
type IRRResult struct {
	IRR           *float64 // periodic rate over [earliest cash flow, end date]
	IRRAnnualized *float64
	Converged     bool
	Iterations    int
}

// irrFlow is the float64 boundary representation of one discounted cash
// flow entry: a signed amount at a day offset from the earliest flow. The
// engine converts Decimal amounts to float64 exactly once, here, at the
// entry point to the root-finder (§9 Design Notes).
type irrFlow struct {
	days  float64
	value float64
}

// SolveIRR computes the money-weighted return given a set of dated cash
// flows and a terminal value treated as a positive inflow on endDate.
//
// It implements the three-phase root-finder of §4.1: a sign-bootstrap
// bisection to find an initial guess, Newton-Raphson with a central
// finite-difference derivative to refine it, and annualization over the
// holding period in days.
func SolveIRR(flows []CashFlow, endValue Money, endDate date.Date) IRRResult {
	if len(flows) == 0 {
		return IRRResult{}
	}

	earliest := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(earliest) {
			earliest = f.Date
		}
	}

	// Zero holding period: every discount exponent in npv is 0, so NPV is a
	// constant independent of x and the root-finder has nothing to solve.
	// The annualized rate is defined to be 0 rather than spurious (§4.1).
	if endDate.Sub(earliest) == 0 {
		zero := 0.0
		return IRRResult{IRR: &zero, IRRAnnualized: &zero, Converged: true}
	}

	totalAbs := 0.0
	entries := make([]irrFlow, 0, len(flows)+1)
	for _, f := range flows {
		v, _ := f.Amount.Decimal().Float64()
		totalAbs += math.Abs(v)
		entries = append(entries, irrFlow{days: float64(f.Date.Sub(earliest)), value: v})
	}
	endVal, _ := endValue.Decimal().Float64()
	entries = append(entries, irrFlow{days: float64(endDate.Sub(earliest)), value: endVal})

	if totalAbs == 0 && endVal == 0 {
		return IRRResult{}
	}

	npv := func(x float64) float64 {
		sum := 0.0
		for _, e := range entries {
			sum += e.value * math.Pow(x, -e.days/365.0)
		}
		return sum
	}

	x0 := initialGuess(npv)

	// x is the annual discount factor that zeroes the NPV: x-1 is already
	// the annualized rate. The whole-period (non-annualized) rate compounds
	// x over the actual holding period in days.
	x, converged, iterations := newtonRaphson(npv, x0)

	annualized := x - 1
	result := IRRResult{IRRAnnualized: &annualized, Converged: converged, Iterations: iterations}

	days := endDate.Sub(earliest)
	if days < 1 {
		days = 1
	}
	var irr float64
	if x > 0 {
		irr = math.Pow(x, float64(days)/365.0) - 1
	} else {
		irr = -1
	}
	result.IRR = &irr
	return result
}

// initialGuess implements phase 1 of §4.1: evaluate NPV at the interval
// endpoints; if they straddle zero, bisect down to a 1e-3 wide interval and
// take the midpoint, else seed at 1.05.
func initialGuess(npv func(float64) float64) float64 {
	lo, hi := 0.001, 1.0
	vlo, vhi := npv(lo), npv(hi)
	if (vlo < 0) == (vhi < 0) {
		// Same sign: no bracket, seed a plausible guess instead of bisecting.
		return 1.05
	}
	return bisect(npv, lo, hi, vlo)
}

// bisect recursively halves [lo, hi] until its width is < 1e-3.
func bisect(npv func(float64) float64, lo, hi, vlo float64) float64 {
	for hi-lo >= 1e-3 {
		mid := (lo + hi) / 2
		vmid := npv(mid)
		if (vmid < 0) == (vlo < 0) {
			lo, vlo = mid, vmid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// newtonRaphson implements phase 2 of §4.1: iterate x <- x - NPV(x)/NPV'(x)
// using a central finite-difference derivative, clamping each successor to
// [1e-4, 100], stopping on |dx| < 1e-5 (converged) or after 500 iterations.
func newtonRaphson(npv func(float64) float64, x0 float64) (x float64, converged bool, iterations int) {
	const (
		maxIter = 500
		tol     = 1e-5
		lo, hi  = 1e-4, 100.0
	)
	x = x0
	for iterations = 0; iterations < maxIter; iterations++ {
		fx := npv(x)
		h := math.Abs(x) * 1e-6
		if h == 0 {
			h = 1e-9
		}
		deriv := (npv(x+h) - npv(x-h)) / (2 * h)
		if math.Abs(deriv) < 1e-10 {
			return x, false, iterations
		}
		dx := fx / deriv
		next := x - dx
		if next < lo {
			next = lo
		}
		if next > hi {
			next = hi
		}
		if math.Abs(next-x) < tol {
			return next, true, iterations + 1
		}
		x = next
	}
	return x, false, iterations
}
