package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/kalmanoharan/rebalance-engine"
	"github.com/kalmanoharan/rebalance-engine/store"
)

func newTestEngine() *engine.Engine {
	return engine.New(store.NewMemoryStore(), store.NewStaticPortfolioProvider())
}

func TestEngine_CreateClassTarget_RejectsSumOverHundred(t *testing.T) {
	eng := newTestEngine()
	ctx := context.Background()

	s, err := eng.CreateStrategy(ctx, "alice", engine.Strategy{
		DriftThreshold: 5,
		ClassTargets:   []engine.AssetClassTarget{{AssetClass: engine.Equity, TargetPercent: 60}},
	})
	require.NoError(t, err)

	_, err = eng.CreateClassTarget(ctx, "alice", s.ID, engine.AssetClassTarget{AssetClass: engine.Debt, TargetPercent: 60})
	assert.Error(t, err)
}

func TestEngine_CreateClassTarget_AcceptsValidAddition(t *testing.T) {
	eng := newTestEngine()
	ctx := context.Background()

	s, err := eng.CreateStrategy(ctx, "alice", engine.Strategy{
		DriftThreshold: 5,
		ClassTargets:   []engine.AssetClassTarget{{AssetClass: engine.Equity, TargetPercent: 60}},
	})
	require.NoError(t, err)

	created, err := eng.CreateClassTarget(ctx, "alice", s.ID, engine.AssetClassTarget{AssetClass: engine.Debt, TargetPercent: 40})
	require.NoError(t, err)
	assert.Equal(t, engine.Debt, created.AssetClass)
}

func TestEngine_CreateSubClassTarget_RejectsInvalidSubClassForParent(t *testing.T) {
	eng := newTestEngine()
	ctx := context.Background()

	s, err := eng.CreateStrategy(ctx, "alice", engine.Strategy{
		DriftThreshold: 5,
		ClassTargets:   []engine.AssetClassTarget{{ID: "ct1", AssetClass: engine.Equity, TargetPercent: 100}},
	})
	require.NoError(t, err)

	_, err = eng.CreateSubClassTarget(ctx, "alice", s.ID, "ct1", engine.AssetSubClassTarget{AssetSubClass: engine.SubBond, TargetPercent: 50})
	assert.Error(t, err)
}

func TestEngine_DeleteClassTarget_RemovesRowWithoutValidation(t *testing.T) {
	eng := newTestEngine()
	ctx := context.Background()

	s, err := eng.CreateStrategy(ctx, "alice", engine.Strategy{
		DriftThreshold: 5,
		ClassTargets:   []engine.AssetClassTarget{{ID: "ct1", AssetClass: engine.Equity, TargetPercent: 60}},
	})
	require.NoError(t, err)

	require.NoError(t, eng.DeleteClassTarget(ctx, "alice", s.ID, "ct1"))
}

func TestEngine_UpsertExclusion_RoundTrips(t *testing.T) {
	eng := newTestEngine()
	ctx := context.Background()

	s, err := eng.CreateStrategy(ctx, "alice", engine.Strategy{DriftThreshold: 5})
	require.NoError(t, err)

	_, err = eng.UpsertExclusion(ctx, "alice", s.ID, engine.Exclusion{SymbolProfileID: "AAPL", NeverSell: true})
	require.NoError(t, err)

	exclusions, err := eng.ListExclusions(ctx, "alice", s.ID)
	require.NoError(t, err)
	require.Len(t, exclusions, 1)
	assert.Equal(t, "AAPL", exclusions[0].SymbolProfileID)
}
