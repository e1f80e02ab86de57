package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalmanoharan/rebalance-engine/date"
)

func TestPerformance_ComposesIRRAndTTWROR(t *testing.T) {
	activities := []Activity{
		{Date: date.New(2023, 1, 1), Type: Buy, Symbol: "AAPL", Quantity: QFloat(10), UnitPrice: MFloat(100, "USD")},
	}
	valuations := []Valuation{
		{Date: date.New(2023, 1, 1), TotalValue: MFloat(1000, "USD")},
		{Date: date.New(2024, 1, 1), TotalValue: MFloat(1100, "USD")},
	}

	result := Performance(activities, valuations, date.New(2023, 1, 1), date.New(2024, 1, 1), MFloat(1100, "USD"))

	require.NotNil(t, result.IRR)
	assert.InDelta(t, 0.10, *result.IRR, 1e-2)
	assert.True(t, result.Taxes.IsZero())
}

func TestPerformanceByPeriod_BucketsIntoQuarters(t *testing.T) {
	activities := []Activity{
		{Date: date.New(2023, 1, 1), Type: Buy, Symbol: "AAPL", Quantity: QFloat(10), UnitPrice: MFloat(100, "USD")},
	}
	valuations := []Valuation{
		{Date: date.New(2023, 1, 1), TotalValue: MFloat(1000, "USD")},
		{Date: date.New(2023, 3, 31), TotalValue: MFloat(1050, "USD")},
		{Date: date.New(2023, 6, 30), TotalValue: MFloat(1100, "USD")},
	}

	buckets := PerformanceByPeriod(activities, valuations, date.New(2023, 1, 1), date.New(2023, 6, 30), MFloat(1100, "USD"), date.Quarterly)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2023-Q1", buckets[0].Range.Identifier())
	assert.Equal(t, "2023-Q1", buckets[0].Label)
	assert.Equal(t, "2023-Q2", buckets[1].Range.Identifier())
	assert.Equal(t, "2023-Q2", buckets[1].Label)
	assert.True(t, buckets[1].Range.To == date.New(2023, 6, 30))
	assert.Equal(t, 2, buckets[0].ValuationCount) // 2023-01-01 and 2023-03-31
	assert.Equal(t, 1, buckets[1].ValuationCount) // 2023-06-30
}

func TestHoldingPerformance_CostBasisAndLongTerm(t *testing.T) {
	activities := []Activity{
		{Date: date.New(2022, 1, 1), Type: Buy, Symbol: "AAPL", Quantity: QFloat(10), UnitPrice: MFloat(100, "USD")},
	}

	result := HoldingPerformance("AAPL", activities, MFloat(150, "USD"), date.New(2024, 1, 1), 365)

	assert.True(t, result.HasHoldingDays)
	assert.True(t, result.IsLongTerm)
	assert.True(t, result.CostBasisSummary.TotalShares.Equal(QFloat(10)))
}
