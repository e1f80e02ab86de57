package engine

import (
	"context"

	"github.com/kalmanoharan/rebalance-engine/date"
)

// Engine is the top-level entry point binding the pure computation modules
// (C1-C4, the Performance Facade) to the two external collaborators (§1,
// §6). Engine itself holds no state beyond its collaborators: every
// operation recomputes from what the collaborators return.
type Engine struct {
	Store     PersistenceStore
	Portfolio PortfolioProvider

	// LongTermHoldingDays is the threshold passed to IsLongTerm in
	// HoldingPerformance (§4.3, "long term" is a caller-configurable
	// concept the ledger itself does not define).
	LongTermHoldingDays int
}

// New constructs an Engine wired to its two collaborators.
func New(store PersistenceStore, portfolio PortfolioProvider) *Engine {
	return &Engine{Store: store, Portfolio: portfolio, LongTermHoldingDays: 365}
}

// Analysis runs the `analysis` operation (§6 op 1): reconciles the user's
// active strategy against current holdings. Returns ErrNoActiveStrategy if
// the user has none.
func (e *Engine) Analysis(ctx context.Context, user string) (AllocationAnalysis, error) {
	strategy, ok, err := e.Store.GetActiveStrategy(ctx, user)
	if err != nil {
		return AllocationAnalysis{}, err
	}
	if !ok {
		return AllocationAnalysis{}, ErrNoActiveStrategy
	}

	snapshot, err := e.Portfolio.Snapshot(ctx, user)
	if err != nil {
		return AllocationAnalysis{}, err
	}

	return AnalyzeAllocation(strategy, snapshot.Holdings, snapshot.BaseCurrency), nil
}

// DriftSummary runs the `drift_summary` operation (§6 op 2). Unlike
// Analysis, it degrades to the NO_STRATEGY shape instead of erroring when
// the user has no active strategy (§4.4.3).
func (e *Engine) DriftSummary(ctx context.Context, user string) (DriftSummary, error) {
	strategy, ok, err := e.Store.GetActiveStrategy(ctx, user)
	if err != nil {
		return DriftSummary{}, err
	}
	if !ok {
		return SummarizeDrift(false, AllocationAnalysis{}), nil
	}

	snapshot, err := e.Portfolio.Snapshot(ctx, user)
	if err != nil {
		return DriftSummary{}, err
	}

	analysis := AnalyzeAllocation(strategy, snapshot.Holdings, snapshot.BaseCurrency)
	return SummarizeDrift(true, analysis), nil
}

// Suggestions runs the `suggestions` operation (§6 op 3), built on the same
// analysis as Analysis.
func (e *Engine) Suggestions(ctx context.Context, user string) ([]Suggestion, error) {
	analysis, err := e.Analysis(ctx, user)
	if err != nil {
		return nil, err
	}
	return GenerateSuggestions(analysis), nil
}

// Performance runs the `performance` operation (§6 op 4) over a user's full
// activity and valuation history for the given window.
func (e *Engine) Performance(ctx context.Context, user string, activities []Activity, valuations []Valuation, start, end date.Date) (PerformanceResult, error) {
	snapshot, err := e.Portfolio.Snapshot(ctx, user)
	if err != nil {
		return PerformanceResult{}, err
	}

	currentValue := M(Zero, snapshot.BaseCurrency)
	for _, h := range snapshot.Holdings {
		currentValue = currentValue.Add(h.Value)
	}

	return Performance(activities, valuations, start, end, currentValue), nil
}

// PerformanceBreakdown runs Performance independently over each sub-period
// of [start, end] at the given granularity (daily/weekly/monthly/quarterly/
// yearly), for report views that chart return over time rather than a
// single whole-window number.
func (e *Engine) PerformanceBreakdown(ctx context.Context, user string, activities []Activity, valuations []Valuation, start, end date.Date, period date.Period) ([]PeriodPerformance, error) {
	snapshot, err := e.Portfolio.Snapshot(ctx, user)
	if err != nil {
		return nil, err
	}

	currentValue := M(Zero, snapshot.BaseCurrency)
	for _, h := range snapshot.Holdings {
		currentValue = currentValue.Add(h.Value)
	}

	return PerformanceByPeriod(activities, valuations, start, end, currentValue, period), nil
}

// HoldingPerformance runs the `holding_performance` operation (§6 op 5) for
// a single security, sourcing its current price from the portfolio snapshot.
func (e *Engine) HoldingPerformance(ctx context.Context, user, symbol string, activities []Activity, end date.Date) (HoldingPerformanceResult, error) {
	snapshot, err := e.Portfolio.Snapshot(ctx, user)
	if err != nil {
		return HoldingPerformanceResult{}, err
	}

	currentPrice := M(Zero, snapshot.BaseCurrency)
	for _, h := range snapshot.Holdings {
		if h.Symbol == symbol {
			currentPrice = h.MarketPrice
			break
		}
	}

	return HoldingPerformance(symbol, activities, currentPrice, end, e.LongTermHoldingDays), nil
}

// CreateStrategy validates and persists a new strategy (§4.4.4).
func (e *Engine) CreateStrategy(ctx context.Context, user string, s Strategy) (Strategy, error) {
	if err := ValidateStrategy(s); err != nil {
		return Strategy{}, err
	}
	return e.Store.CreateStrategy(ctx, user, s)
}

// UpdateStrategy validates and persists changes to an existing strategy (§4.4.4).
func (e *Engine) UpdateStrategy(ctx context.Context, user string, s Strategy) (Strategy, error) {
	if err := ValidateStrategy(s); err != nil {
		return Strategy{}, err
	}
	return e.Store.UpdateStrategy(ctx, user, s)
}

// CreateClassTarget validates a new class target against the rest of the
// strategy's tree (§3 invariants a/d) before persisting it individually,
// the same check ValidateStrategy runs at whole-strategy scope.
func (e *Engine) CreateClassTarget(ctx context.Context, user, strategyID string, t AssetClassTarget) (AssetClassTarget, error) {
	strategy, err := e.Store.GetStrategy(ctx, user, strategyID)
	if err != nil {
		return AssetClassTarget{}, err
	}
	candidate := append(append([]AssetClassTarget{}, strategy.ClassTargets...), t)
	if err := ValidateClassTargets(candidate); err != nil {
		return AssetClassTarget{}, err
	}
	return e.Store.CreateClassTarget(ctx, user, strategyID, t)
}

// UpdateClassTarget validates a class target's replacement against the rest
// of the strategy's tree before persisting.
func (e *Engine) UpdateClassTarget(ctx context.Context, user, strategyID string, t AssetClassTarget) (AssetClassTarget, error) {
	strategy, err := e.Store.GetStrategy(ctx, user, strategyID)
	if err != nil {
		return AssetClassTarget{}, err
	}
	candidate := replaceClassTarget(strategy.ClassTargets, t)
	if err := ValidateClassTargets(candidate); err != nil {
		return AssetClassTarget{}, err
	}
	return e.Store.UpdateClassTarget(ctx, user, strategyID, t)
}

// DeleteClassTarget removes a class target. Removing a row can never push
// a sum over 100 or create a duplicate, so no validation precedes it.
func (e *Engine) DeleteClassTarget(ctx context.Context, user, strategyID, targetID string) error {
	return e.Store.DeleteClassTarget(ctx, user, strategyID, targetID)
}

// CreateSubClassTarget validates a new sub-class target against its parent
// class's existing sub-classes (§3 invariants b/c/d) before persisting it.
func (e *Engine) CreateSubClassTarget(ctx context.Context, user, strategyID, classTargetID string, t AssetSubClassTarget) (AssetSubClassTarget, error) {
	strategy, err := e.Store.GetStrategy(ctx, user, strategyID)
	if err != nil {
		return AssetSubClassTarget{}, err
	}
	class, ok := findClassTarget(strategy.ClassTargets, classTargetID)
	if !ok {
		return AssetSubClassTarget{}, NotFound("class_target", classTargetID)
	}
	candidate := append(append([]AssetSubClassTarget{}, class.SubClasses...), t)
	if err := ValidateSubClassTargets(class.AssetClass, candidate); err != nil {
		return AssetSubClassTarget{}, err
	}
	return e.Store.CreateSubClassTarget(ctx, user, strategyID, classTargetID, t)
}

// UpdateSubClassTarget validates a sub-class target's replacement against
// its parent class's other sub-classes before persisting.
func (e *Engine) UpdateSubClassTarget(ctx context.Context, user, strategyID, classTargetID string, t AssetSubClassTarget) (AssetSubClassTarget, error) {
	strategy, err := e.Store.GetStrategy(ctx, user, strategyID)
	if err != nil {
		return AssetSubClassTarget{}, err
	}
	class, ok := findClassTarget(strategy.ClassTargets, classTargetID)
	if !ok {
		return AssetSubClassTarget{}, NotFound("class_target", classTargetID)
	}
	candidate := replaceSubClassTarget(class.SubClasses, t)
	if err := ValidateSubClassTargets(class.AssetClass, candidate); err != nil {
		return AssetSubClassTarget{}, err
	}
	return e.Store.UpdateSubClassTarget(ctx, user, strategyID, classTargetID, t)
}

// DeleteSubClassTarget removes a single sub-class target.
func (e *Engine) DeleteSubClassTarget(ctx context.Context, user, strategyID, classTargetID, targetID string) error {
	return e.Store.DeleteSubClassTarget(ctx, user, strategyID, classTargetID, targetID)
}

// ListExclusions returns a strategy's exclusions. Exclusions have no
// sum/uniqueness invariant of their own (§3), so no validation precedes
// any of the three exclusion operations below.
func (e *Engine) ListExclusions(ctx context.Context, user, strategyID string) ([]Exclusion, error) {
	return e.Store.ListExclusions(ctx, user, strategyID)
}

// UpsertExclusion creates or replaces a single exclusion.
func (e *Engine) UpsertExclusion(ctx context.Context, user, strategyID string, ex Exclusion) (Exclusion, error) {
	return e.Store.UpsertExclusion(ctx, user, strategyID, ex)
}

// DeleteExclusion removes a single exclusion.
func (e *Engine) DeleteExclusion(ctx context.Context, user, strategyID, exclusionID string) error {
	return e.Store.DeleteExclusion(ctx, user, strategyID, exclusionID)
}

// findClassTarget locates a class target by ID within a strategy's tree.
func findClassTarget(targets []AssetClassTarget, id string) (AssetClassTarget, bool) {
	for _, t := range targets {
		if t.ID == id {
			return t, true
		}
	}
	return AssetClassTarget{}, false
}

// replaceClassTarget returns targets with the entry matching t.ID replaced
// by t, or t appended if no entry matches (a not-yet-assigned ID).
func replaceClassTarget(targets []AssetClassTarget, t AssetClassTarget) []AssetClassTarget {
	out := make([]AssetClassTarget, 0, len(targets)+1)
	replaced := false
	for _, existing := range targets {
		if existing.ID == t.ID {
			out = append(out, t)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, t)
	}
	return out
}

// replaceSubClassTarget is replaceClassTarget's sub-class-level counterpart.
func replaceSubClassTarget(subs []AssetSubClassTarget, t AssetSubClassTarget) []AssetSubClassTarget {
	out := make([]AssetSubClassTarget, 0, len(subs)+1)
	replaced := false
	for _, existing := range subs {
		if existing.ID == t.ID {
			out = append(out, t)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, t)
	}
	return out
}
