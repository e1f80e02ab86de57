package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalmanoharan/rebalance-engine/date"
)

func TestSolveIRR_SingleBuy(t *testing.T) {
	flows := []CashFlow{
		{Date: date.New(2023, 1, 1), Amount: MFloat(-1000, "USD"), Type: Buy},
	}
	result := SolveIRR(flows, MFloat(1100, "USD"), date.New(2024, 1, 1))

	require.True(t, result.Converged)
	require.NotNil(t, result.IRR)
	assert.InDelta(t, 0.10, *result.IRR, 1e-3)
	require.NotNil(t, result.IRRAnnualized)
	assert.InDelta(t, 0.10, *result.IRRAnnualized, 1e-3)
}

func TestSolveIRR_DoublingOverTwoYears(t *testing.T) {
	flows := []CashFlow{
		{Date: date.New(2022, 1, 1), Amount: MFloat(-1000, "USD"), Type: Buy},
	}
	result := SolveIRR(flows, MFloat(2000, "USD"), date.New(2024, 1, 1))

	require.True(t, result.Converged)
	require.NotNil(t, result.IRR)
	assert.InDelta(t, 1.00, *result.IRR, 1e-2)
	require.NotNil(t, result.IRRAnnualized)
	assert.InDelta(t, 0.414, *result.IRRAnnualized, 1e-2)
}

func TestSolveIRR_NoFlows(t *testing.T) {
	result := SolveIRR(nil, MFloat(0, "USD"), date.New(2024, 1, 1))
	assert.False(t, result.Converged)
	assert.Nil(t, result.IRR)
}

func TestSolveIRR_ZeroHoldingPeriodIsZero(t *testing.T) {
	// Buy and terminal valuation fall on the same day: no time has passed
	// for any rate to compound over.
	flows := []CashFlow{
		{Date: date.New(2023, 6, 1), Amount: MFloat(-1000, "USD"), Type: Buy},
	}
	result := SolveIRR(flows, MFloat(1200, "USD"), date.New(2023, 6, 1))

	require.True(t, result.Converged)
	require.NotNil(t, result.IRR)
	require.NotNil(t, result.IRRAnnualized)
	assert.Equal(t, 0.0, *result.IRR)
	assert.Equal(t, 0.0, *result.IRRAnnualized)
}

func TestSolveIRR_TotalLossDoesNotConverge(t *testing.T) {
	// A single outflow with nothing returned has no rate that zeroes the
	// NPV: the solver reports non-convergence, so its last iterate is not
	// presented as a solved rate.
	flows := []CashFlow{
		{Date: date.New(2023, 1, 1), Amount: MFloat(-1000, "USD"), Type: Buy},
	}
	result := SolveIRR(flows, MFloat(0, "USD"), date.New(2024, 1, 1))
	assert.False(t, result.Converged)
}

func TestNewtonRaphson_ConvergesOnKnownRoot(t *testing.T) {
	// npv(x) = x - 2, root at x = 2.
	npv := func(x float64) float64 { return x - 2 }
	x, converged, iterations := newtonRaphson(npv, 1.0)
	require.True(t, converged)
	assert.InDelta(t, 2.0, x, 1e-4)
	assert.Greater(t, iterations, 0)
}

func TestBisect_FindsSignChange(t *testing.T) {
	npv := func(x float64) float64 { return x - 3 }
	x := bisect(npv, 0, 10, npv(0))
	assert.True(t, math.Abs(x-3) < 1e-2)
}
