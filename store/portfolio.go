package store

import (
	"context"
	"sync"

	engine "github.com/kalmanoharan/rebalance-engine"
)

// StaticPortfolioProvider is a concrete engine.PortfolioProvider backed by
// an in-memory snapshot per user. It exists because the engine itself never
// sources market values (§1): something upstream (a pricing service, an
// importer, a test fixture) has to own that. This is the simplest such
// collaborator, good enough to run the engine end to end without a live
// market-data feed.
type StaticPortfolioProvider struct {
	mu        sync.RWMutex
	snapshots map[string]engine.PortfolioSnapshot
}

// NewStaticPortfolioProvider constructs an empty provider.
func NewStaticPortfolioProvider() *StaticPortfolioProvider {
	return &StaticPortfolioProvider{snapshots: make(map[string]engine.PortfolioSnapshot)}
}

// SetSnapshot replaces the holdings returned for user. Callers are
// responsible for keeping this current, typically from a scheduled refresh.
func (p *StaticPortfolioProvider) SetSnapshot(user string, snapshot engine.PortfolioSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots[user] = snapshot
}

// Snapshot implements engine.PortfolioProvider.
func (p *StaticPortfolioProvider) Snapshot(_ context.Context, user string) (engine.PortfolioSnapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshots[user], nil
}
