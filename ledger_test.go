package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalmanoharan/rebalance-engine/date"
)

func TestProcessSale_FIFOAcrossTwoLots(t *testing.T) {
	ledger := NewLotLedger()
	ledger.AddPurchase("AAPL", date.New(2023, 1, 1), QFloat(10), MFloat(1000, "USD"), MFloat(0, "USD"))
	ledger.AddPurchase("AAPL", date.New(2023, 2, 1), QFloat(10), MFloat(1200, "USD"), MFloat(0, "USD"))

	result := ledger.ProcessSale("AAPL", QFloat(15), MFloat(130, "USD"), date.New(2023, 3, 1))

	assert.True(t, result.TotalCostBasis.Equal(MFloat(1600, "USD")))
	assert.True(t, result.TotalProceeds.Equal(MFloat(1950, "USD")))
	assert.True(t, result.RealizedGain.Equal(MFloat(350, "USD")))
	require.Len(t, result.LotsUsed, 2)
	assert.True(t, result.LotsUsed[0].Shares.Equal(QFloat(10)))
	assert.True(t, result.LotsUsed[1].Shares.Equal(QFloat(5)))
}

func TestProcessSale_ClampsToAvailableShares(t *testing.T) {
	ledger := NewLotLedger()
	ledger.AddPurchase("AAPL", date.New(2023, 1, 1), QFloat(5), MFloat(500, "USD"), MFloat(0, "USD"))

	result := ledger.ProcessSale("AAPL", QFloat(10), MFloat(100, "USD"), date.New(2023, 2, 1))

	assert.True(t, result.SharesSold.LessThan(result.SharesRequested) || result.SharesSold.Equal(result.SharesRequested))
	assert.True(t, result.SharesSold.Equal(QFloat(5)))
}

func TestLedger_NetSharesNeverNegative(t *testing.T) {
	ledger := NewLotLedger()
	ledger.AddPurchase("AAPL", date.New(2023, 1, 1), QFloat(5), MFloat(500, "USD"), MFloat(0, "USD"))
	ledger.ProcessSale("AAPL", QFloat(100), MFloat(100, "USD"), date.New(2023, 2, 1))

	assert.False(t, ledger.NetShares("AAPL").Decimal().IsNegative())
	assert.True(t, ledger.NetShares("AAPL").IsZero())
}

func TestReplayActivities_IsIdempotentAcrossFreshLedgers(t *testing.T) {
	activities := []Activity{
		{Date: date.New(2023, 1, 1), Type: Buy, Symbol: "AAPL", Quantity: QFloat(10), UnitPrice: MFloat(100, "USD")},
		{Date: date.New(2023, 2, 1), Type: Buy, Symbol: "AAPL", Quantity: QFloat(10), UnitPrice: MFloat(120, "USD")},
		{Date: date.New(2023, 3, 1), Type: Sell, Symbol: "AAPL", Quantity: QFloat(15), UnitPrice: MFloat(130, "USD")},
	}

	first := NewLotLedger()
	first.ReplayActivities(activities)
	second := NewLotLedger()
	second.ReplayActivities(activities)

	assert.True(t, first.NetShares("AAPL").Equal(second.NetShares("AAPL")))
	firstSummary := first.Summary("AAPL", MFloat(150, "USD"))
	secondSummary := second.Summary("AAPL", MFloat(150, "USD"))
	assert.True(t, firstSummary.TotalCostBasis.Equal(secondSummary.TotalCostBasis))
}

func TestProcessSaleThenRepurchase_NoUnrealizedGain(t *testing.T) {
	ledger := NewLotLedger()
	ledger.AddPurchase("AAPL", date.New(2023, 1, 1), QFloat(10), MFloat(1000, "USD"), MFloat(0, "USD"))
	ledger.ProcessSale("AAPL", QFloat(10), MFloat(100, "USD"), date.New(2023, 2, 1))
	ledger.AddPurchase("AAPL", date.New(2023, 2, 1), QFloat(10), MFloat(1000, "USD"), MFloat(0, "USD"))

	summary := ledger.Summary("AAPL", MFloat(100, "USD"))
	assert.True(t, summary.UnrealizedGain.IsZero())
}

func TestOldestHoldingDays_UsesEarliestActiveLot(t *testing.T) {
	ledger := NewLotLedger()
	ledger.AddPurchase("AAPL", date.New(2022, 1, 1), QFloat(5), MFloat(500, "USD"), MFloat(0, "USD"))
	ledger.AddPurchase("AAPL", date.New(2023, 1, 1), QFloat(5), MFloat(600, "USD"), MFloat(0, "USD"))

	days, ok := ledger.OldestHoldingDays("AAPL", date.New(2024, 1, 1))
	require.True(t, ok)
	assert.Equal(t, date.New(2024, 1, 1).Sub(date.New(2022, 1, 1)), days)
	assert.True(t, ledger.IsLongTerm("AAPL", date.New(2024, 1, 1), 365))
}

func TestProcessTransfer_PreservesDateAndAllocatesFeesProportionally(t *testing.T) {
	ledger := NewLotLedger()
	ledger.AddPurchase("AAPL", date.New(2023, 1, 1), QFloat(10), MFloat(1000, "USD"), MFloat(20, "USD"))

	transferred := ledger.ProcessTransfer("AAPL", QFloat(4), date.New(2023, 6, 1))

	require.Len(t, transferred.Lots, 1)
	lot := transferred.Lots[0]
	assert.Equal(t, date.New(2023, 1, 1), lot.Date)
	assert.True(t, lot.RemainingShares.Equal(QFloat(4)))
	assert.True(t, lot.Fees.Equal(MFloat(8, "USD")))
}
