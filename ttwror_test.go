package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kalmanoharan/rebalance-engine/date"
)

func TestAccumulateTTWROR_MidPeriodDeposit(t *testing.T) {
	points := []ValuationPoint{
		{Date: date.New(2023, 1, 1), MarketValue: 1000, ExternalFlow: 0},
		{Date: date.New(2023, 7, 1), MarketValue: 1550, ExternalFlow: 500},
		{Date: date.New(2024, 1, 1), MarketValue: 1650, ExternalFlow: 0},
	}

	result := AccumulateTTWROR(points, false)
	assert.InDelta(t, 0.1177, result.TTWROR, 1e-3)
}

func TestAccumulateTTWROR_TooFewPoints(t *testing.T) {
	result := AccumulateTTWROR([]ValuationPoint{{Date: date.New(2023, 1, 1), MarketValue: 1000}}, false)
	assert.Equal(t, 0.0, result.TTWROR)
}

func TestAccumulateTTWROR_DepositDoesNotInflateReturn(t *testing.T) {
	// A deposit should not, by itself, show up as a gain: the single
	// period's return comes out at 0 when the end value is the opening
	// value plus the inbound flow and nothing else.
	points := []ValuationPoint{
		{Date: date.New(2023, 1, 1), MarketValue: 1000, ExternalFlow: 0},
		{Date: date.New(2023, 7, 1), MarketValue: 1500, ExternalFlow: 500},
	}
	result := AccumulateTTWROR(points, false)
	assert.InDelta(t, 0.0, result.TTWROR, 1e-9)
}

func TestAccumulateTTWROR_SeriesOptIn(t *testing.T) {
	points := []ValuationPoint{
		{Date: date.New(2023, 1, 1), MarketValue: 1000, ExternalFlow: 0},
		{Date: date.New(2023, 7, 1), MarketValue: 1100, ExternalFlow: 0},
	}
	withSeries := AccumulateTTWROR(points, true)
	assert.Len(t, withSeries.Series, 2)

	withoutSeries := AccumulateTTWROR(points, false)
	assert.Nil(t, withoutSeries.Series)
}
