package engine

import "context"

// PersistenceStore is the read/write contract the engine consumes for
// user-scoped storage of strategies, targets and exclusions (§1, §6). The
// engine never implements this itself; see the store package for a
// concrete sqlite-backed implementation.
type PersistenceStore interface {
	ListStrategies(ctx context.Context, user string) ([]Strategy, error)
	GetStrategy(ctx context.Context, user, id string) (Strategy, error)
	GetActiveStrategy(ctx context.Context, user string) (Strategy, bool, error)
	CreateStrategy(ctx context.Context, user string, s Strategy) (Strategy, error)
	UpdateStrategy(ctx context.Context, user string, s Strategy) (Strategy, error)
	DeleteStrategy(ctx context.Context, user, id string) error
	ActivateStrategy(ctx context.Context, user, id string) error // atomically ensures at most one active strategy

	CreateClassTarget(ctx context.Context, user, strategyID string, t AssetClassTarget) (AssetClassTarget, error)
	UpdateClassTarget(ctx context.Context, user, strategyID string, t AssetClassTarget) (AssetClassTarget, error)
	DeleteClassTarget(ctx context.Context, user, strategyID, targetID string) error

	CreateSubClassTarget(ctx context.Context, user, strategyID, classTargetID string, t AssetSubClassTarget) (AssetSubClassTarget, error)
	UpdateSubClassTarget(ctx context.Context, user, strategyID, classTargetID string, t AssetSubClassTarget) (AssetSubClassTarget, error)
	DeleteSubClassTarget(ctx context.Context, user, strategyID, classTargetID, targetID string) error

	ListExclusions(ctx context.Context, user, strategyID string) ([]Exclusion, error)
	UpsertExclusion(ctx context.Context, user, strategyID string, e Exclusion) (Exclusion, error)
	DeleteExclusion(ctx context.Context, user, strategyID, exclusionID string) error
}

// PortfolioSnapshot is what the portfolio collaborator returns for a user (§6).
type PortfolioSnapshot struct {
	Holdings     []HoldingData
	BaseCurrency string
}

// PortfolioProvider is the read-only collaborator supplying pre-computed
// per-holding market values (§1, §6). The engine treats it as a pure read
// and never caches or mutates what it returns.
type PortfolioProvider interface {
	Snapshot(ctx context.Context, user string) (PortfolioSnapshot, error)
}
