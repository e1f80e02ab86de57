package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func driftStrategy() Strategy {
	return Strategy{
		ID:             "s1",
		Name:           "demo",
		IsActive:       true,
		DriftThreshold: 5,
		ClassTargets: []AssetClassTarget{
			{ID: "ct-equity", AssetClass: Equity, TargetPercent: 60},
			{ID: "ct-debt", AssetClass: Debt, TargetPercent: 40},
		},
	}
}

func TestAnalyzeAllocation_DriftScenario(t *testing.T) {
	holdings := []HoldingData{
		{Symbol: "AAPL", AssetClass: Equity, SubClass: SubStock, Value: MFloat(7000, "USD"), Quantity: QFloat(70), MarketPrice: MFloat(100, "USD")},
		{Symbol: "BOND1", AssetClass: Debt, SubClass: SubBond, Value: MFloat(3000, "USD"), Quantity: QFloat(30), MarketPrice: MFloat(100, "USD")},
	}

	analysis := AnalyzeAllocation(driftStrategy(), holdings, "USD")

	require.Len(t, analysis.ClassRows, 2)
	assert.True(t, analysis.PortfolioValue.Equal(MFloat(10000, "USD")))

	equity := analysis.ClassRows[0]
	debt := analysis.ClassRows[1]
	assert.InDelta(t, 10, float64(equity.DriftPercent), 1e-6)
	assert.InDelta(t, -10, float64(debt.DriftPercent), 1e-6)
	assert.Equal(t, StatusCritical, equity.Status)
	assert.Equal(t, StatusCritical, debt.Status)
	assert.Equal(t, StatusCritical, analysis.OverallStatus)
}

func TestAnalyzeAllocation_ExclusionReducesPortfolioValue(t *testing.T) {
	strategy := driftStrategy()
	strategy.Exclusions = []Exclusion{
		{ID: "ex1", SymbolProfileID: "AAPL", ExcludeFromCalculation: true},
	}
	holdings := []HoldingData{
		{Symbol: "AAPL", AssetClass: Equity, SubClass: SubStock, Value: MFloat(2000, "USD"), Quantity: QFloat(20), MarketPrice: MFloat(100, "USD")},
		{Symbol: "MSFT", AssetClass: Equity, SubClass: SubStock, Value: MFloat(5000, "USD"), Quantity: QFloat(50), MarketPrice: MFloat(100, "USD")},
		{Symbol: "BOND1", AssetClass: Debt, SubClass: SubBond, Value: MFloat(3000, "USD"), Quantity: QFloat(30), MarketPrice: MFloat(100, "USD")},
	}

	analysis := AnalyzeAllocation(strategy, holdings, "USD")

	assert.True(t, analysis.PortfolioValue.Equal(MFloat(8000, "USD")))
	assert.True(t, analysis.ExcludedValue.Equal(MFloat(2000, "USD")))
}

func TestGenerateSuggestions_SellsOverweightThenBuysUnderweight(t *testing.T) {
	strategy := driftStrategy()
	holdings := []HoldingData{
		{Symbol: "AAPL", AssetClass: Equity, SubClass: SubStock, Value: MFloat(7000, "USD"), Quantity: QFloat(70), MarketPrice: MFloat(100, "USD")},
		{Symbol: "BOND1", AssetClass: Debt, SubClass: SubBond, Value: MFloat(3000, "USD"), Quantity: QFloat(30), MarketPrice: MFloat(100, "USD")},
	}
	strategy.ClassTargets[0].SubClasses = []AssetSubClassTarget{{ID: "st-stock", AssetSubClass: SubStock, TargetPercent: 100}}
	strategy.ClassTargets[1].SubClasses = []AssetSubClassTarget{{ID: "st-bond", AssetSubClass: SubBond, TargetPercent: 100}}

	analysis := AnalyzeAllocation(strategy, holdings, "USD")
	suggestions := GenerateSuggestions(analysis)

	require.NotEmpty(t, suggestions)
	assert.Equal(t, ActionSell, suggestions[0].Action)
	assert.Equal(t, 1, suggestions[0].Priority)

	var sawBuy bool
	for _, s := range suggestions {
		if s.Action == ActionBuy {
			sawBuy = true
			assert.True(t, s.SuggestedAmount.GreaterThan(MFloat(0, "USD")))
		}
	}
	assert.True(t, sawBuy)
}

func TestGenerateSuggestions_NeverSellExcludesHoldingFromSells(t *testing.T) {
	strategy := driftStrategy()
	strategy.Exclusions = []Exclusion{{ID: "ex1", SymbolProfileID: "AAPL", NeverSell: true}}
	strategy.ClassTargets[0].SubClasses = []AssetSubClassTarget{{ID: "st-stock", AssetSubClass: SubStock, TargetPercent: 100}}
	holdings := []HoldingData{
		{Symbol: "AAPL", AssetClass: Equity, SubClass: SubStock, Value: MFloat(7000, "USD"), Quantity: QFloat(70), MarketPrice: MFloat(100, "USD")},
		{Symbol: "BOND1", AssetClass: Debt, SubClass: SubBond, Value: MFloat(3000, "USD"), Quantity: QFloat(30), MarketPrice: MFloat(100, "USD")},
	}

	analysis := AnalyzeAllocation(strategy, holdings, "USD")
	suggestions := GenerateSuggestions(analysis)

	for _, s := range suggestions {
		assert.NotEqual(t, "AAPL", s.Symbol)
	}
}

func TestSummarizeDrift_NoActiveStrategy(t *testing.T) {
	summary := SummarizeDrift(false, AllocationAnalysis{})
	assert.False(t, summary.HasActiveStrategy)
	assert.Equal(t, StatusNoStrategy, summary.OverallStatus)
}

func TestSummarizeDrift_ReportsCategoriesOverThreshold(t *testing.T) {
	analysis := AnalyzeAllocation(driftStrategy(), []HoldingData{
		{Symbol: "AAPL", AssetClass: Equity, SubClass: SubStock, Value: MFloat(7000, "USD"), Quantity: QFloat(70), MarketPrice: MFloat(100, "USD")},
		{Symbol: "BOND1", AssetClass: Debt, SubClass: SubBond, Value: MFloat(3000, "USD"), Quantity: QFloat(30), MarketPrice: MFloat(100, "USD")},
	}, "USD")

	summary := SummarizeDrift(true, analysis)
	assert.Equal(t, StatusCritical, summary.OverallStatus)
	require.Len(t, summary.CategoriesOverThreshold, 2)
}
