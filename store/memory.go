package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	engine "github.com/kalmanoharan/rebalance-engine"
)

// MemoryStore is an in-process engine.PersistenceStore, useful for tests and
// for running the engine without a database.
type MemoryStore struct {
	mu     sync.Mutex
	byUser map[string]map[string]engine.Strategy // user -> strategy ID -> strategy
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string]map[string]engine.Strategy)}
}

func (m *MemoryStore) strategies(user string) map[string]engine.Strategy {
	if m.byUser[user] == nil {
		m.byUser[user] = make(map[string]engine.Strategy)
	}
	return m.byUser[user]
}

func (m *MemoryStore) ListStrategies(_ context.Context, user string) ([]engine.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []engine.Strategy
	for _, s := range m.strategies(user) {
		out = append(out, s)
	}
	return out, nil
}

func (m *MemoryStore) GetStrategy(_ context.Context, user, id string) (engine.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[id]
	if !ok {
		return engine.Strategy{}, engine.NotFound("strategy", id)
	}
	return s, nil
}

func (m *MemoryStore) GetActiveStrategy(_ context.Context, user string) (engine.Strategy, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.strategies(user) {
		if s.IsActive {
			return s, true, nil
		}
	}
	return engine.Strategy{}, false, nil
}

func (m *MemoryStore) CreateStrategy(_ context.Context, user string, s engine.Strategy) (engine.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	assignIDs(&s)
	m.strategies(user)[s.ID] = s
	return s, nil
}

func (m *MemoryStore) UpdateStrategy(_ context.Context, user string, s engine.Strategy) (engine.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.strategies(user)[s.ID]; !ok {
		return engine.Strategy{}, engine.NotFound("strategy", s.ID)
	}
	assignIDs(&s)
	m.strategies(user)[s.ID] = s
	return s, nil
}

func (m *MemoryStore) DeleteStrategy(_ context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.strategies(user)[id]; !ok {
		return engine.NotFound("strategy", id)
	}
	delete(m.strategies(user), id)
	return nil
}

func (m *MemoryStore) ActivateStrategy(_ context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	strategies := m.strategies(user)
	s, ok := strategies[id]
	if !ok {
		return engine.NotFound("strategy", id)
	}
	for k, other := range strategies {
		other.IsActive = k == id
		strategies[k] = other
	}
	s.IsActive = true
	strategies[id] = s
	return nil
}

func (m *MemoryStore) CreateClassTarget(_ context.Context, user, strategyID string, t engine.AssetClassTarget) (engine.AssetClassTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return engine.AssetClassTarget{}, engine.NotFound("strategy", strategyID)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.ClassTargets = append(s.ClassTargets, t)
	m.strategies(user)[strategyID] = s
	return t, nil
}

func (m *MemoryStore) UpdateClassTarget(_ context.Context, user, strategyID string, t engine.AssetClassTarget) (engine.AssetClassTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return engine.AssetClassTarget{}, engine.NotFound("strategy", strategyID)
	}
	for i := range s.ClassTargets {
		if s.ClassTargets[i].ID == t.ID {
			s.ClassTargets[i] = t
			m.strategies(user)[strategyID] = s
			return t, nil
		}
	}
	return engine.AssetClassTarget{}, engine.NotFound("class_target", t.ID)
}

func (m *MemoryStore) DeleteClassTarget(_ context.Context, user, strategyID, targetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return engine.NotFound("strategy", strategyID)
	}
	for i, t := range s.ClassTargets {
		if t.ID == targetID {
			s.ClassTargets = append(s.ClassTargets[:i], s.ClassTargets[i+1:]...)
			m.strategies(user)[strategyID] = s
			return nil
		}
	}
	return engine.NotFound("class_target", targetID)
}

func (m *MemoryStore) CreateSubClassTarget(_ context.Context, user, strategyID, classTargetID string, t engine.AssetSubClassTarget) (engine.AssetSubClassTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return engine.AssetSubClassTarget{}, engine.NotFound("strategy", strategyID)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for i := range s.ClassTargets {
		if s.ClassTargets[i].ID == classTargetID {
			s.ClassTargets[i].SubClasses = append(s.ClassTargets[i].SubClasses, t)
			m.strategies(user)[strategyID] = s
			return t, nil
		}
	}
	return engine.AssetSubClassTarget{}, engine.NotFound("class_target", classTargetID)
}

func (m *MemoryStore) UpdateSubClassTarget(_ context.Context, user, strategyID, classTargetID string, t engine.AssetSubClassTarget) (engine.AssetSubClassTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return engine.AssetSubClassTarget{}, engine.NotFound("strategy", strategyID)
	}
	for i := range s.ClassTargets {
		if s.ClassTargets[i].ID != classTargetID {
			continue
		}
		for j := range s.ClassTargets[i].SubClasses {
			if s.ClassTargets[i].SubClasses[j].ID == t.ID {
				s.ClassTargets[i].SubClasses[j] = t
				m.strategies(user)[strategyID] = s
				return t, nil
			}
		}
	}
	return engine.AssetSubClassTarget{}, engine.NotFound("sub_class_target", t.ID)
}

func (m *MemoryStore) DeleteSubClassTarget(_ context.Context, user, strategyID, classTargetID, targetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return engine.NotFound("strategy", strategyID)
	}
	for i := range s.ClassTargets {
		if s.ClassTargets[i].ID != classTargetID {
			continue
		}
		subs := s.ClassTargets[i].SubClasses
		for j, sub := range subs {
			if sub.ID == targetID {
				s.ClassTargets[i].SubClasses = append(subs[:j], subs[j+1:]...)
				m.strategies(user)[strategyID] = s
				return nil
			}
		}
	}
	return engine.NotFound("sub_class_target", targetID)
}

func (m *MemoryStore) ListExclusions(_ context.Context, user, strategyID string) ([]engine.Exclusion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return nil, engine.NotFound("strategy", strategyID)
	}
	return s.Exclusions, nil
}

func (m *MemoryStore) UpsertExclusion(_ context.Context, user, strategyID string, e engine.Exclusion) (engine.Exclusion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return engine.Exclusion{}, engine.NotFound("strategy", strategyID)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	for i, ex := range s.Exclusions {
		if ex.ID == e.ID {
			s.Exclusions[i] = e
			m.strategies(user)[strategyID] = s
			return e, nil
		}
	}
	s.Exclusions = append(s.Exclusions, e)
	m.strategies(user)[strategyID] = s
	return e, nil
}

func (m *MemoryStore) DeleteExclusion(_ context.Context, user, strategyID, exclusionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies(user)[strategyID]
	if !ok {
		return engine.NotFound("strategy", strategyID)
	}
	for i, ex := range s.Exclusions {
		if ex.ID == exclusionID {
			s.Exclusions = append(s.Exclusions[:i], s.Exclusions[i+1:]...)
			m.strategies(user)[strategyID] = s
			return nil
		}
	}
	return engine.NotFound("exclusion", exclusionID)
}

// assignIDs fills in any blank IDs in a strategy's target tree before storage.
func assignIDs(s *engine.Strategy) {
	for i := range s.ClassTargets {
		if s.ClassTargets[i].ID == "" {
			s.ClassTargets[i].ID = uuid.NewString()
		}
		for j := range s.ClassTargets[i].SubClasses {
			if s.ClassTargets[i].SubClasses[j].ID == "" {
				s.ClassTargets[i].SubClasses[j].ID = uuid.NewString()
			}
		}
	}
	for i := range s.Exclusions {
		if s.Exclusions[i].ID == "" {
			s.Exclusions[i].ID = uuid.NewString()
		}
	}
}
