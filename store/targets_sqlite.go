package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	engine "github.com/kalmanoharan/rebalance-engine"
)

// CreateClassTarget inserts one class target under strategyID.
func (s *SQLiteStore) CreateClassTarget(ctx context.Context, user, strategyID string, t engine.AssetClassTarget) (engine.AssetClassTarget, error) {
	if _, err := s.GetStrategy(ctx, user, strategyID); err != nil {
		return engine.AssetClassTarget{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO class_targets (id, strategy_id, asset_class, target_percent) VALUES (?, ?, ?, ?)`,
		t.ID, strategyID, string(t.AssetClass), float64(t.TargetPercent)); err != nil {
		return engine.AssetClassTarget{}, fmt.Errorf("create class target: %w", err)
	}
	return t, nil
}

// UpdateClassTarget updates a class target's percent and asset class.
func (s *SQLiteStore) UpdateClassTarget(ctx context.Context, user, strategyID string, t engine.AssetClassTarget) (engine.AssetClassTarget, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE class_targets SET asset_class = ?, target_percent = ? WHERE id = ? AND strategy_id = ?`,
		string(t.AssetClass), float64(t.TargetPercent), t.ID, strategyID)
	if err != nil {
		return engine.AssetClassTarget{}, fmt.Errorf("update class target: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.AssetClassTarget{}, engine.NotFound("class_target", t.ID)
	}
	return t, nil
}

// DeleteClassTarget removes a class target and cascades to its sub-class targets.
func (s *SQLiteStore) DeleteClassTarget(ctx context.Context, user, strategyID, targetID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM class_targets WHERE id = ? AND strategy_id = ?`, targetID, strategyID)
	if err != nil {
		return fmt.Errorf("delete class target: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("class_target", targetID)
	}
	return nil
}

// CreateSubClassTarget inserts one sub-class target under classTargetID.
func (s *SQLiteStore) CreateSubClassTarget(ctx context.Context, user, strategyID, classTargetID string, t engine.AssetSubClassTarget) (engine.AssetSubClassTarget, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sub_class_targets (id, class_target_id, asset_sub_class, target_percent) VALUES (?, ?, ?, ?)`,
		t.ID, classTargetID, string(t.AssetSubClass), float64(t.TargetPercent)); err != nil {
		return engine.AssetSubClassTarget{}, fmt.Errorf("create sub-class target: %w", err)
	}
	return t, nil
}

// UpdateSubClassTarget updates a sub-class target's percent and sub-class.
func (s *SQLiteStore) UpdateSubClassTarget(ctx context.Context, user, strategyID, classTargetID string, t engine.AssetSubClassTarget) (engine.AssetSubClassTarget, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sub_class_targets SET asset_sub_class = ?, target_percent = ? WHERE id = ? AND class_target_id = ?`,
		string(t.AssetSubClass), float64(t.TargetPercent), t.ID, classTargetID)
	if err != nil {
		return engine.AssetSubClassTarget{}, fmt.Errorf("update sub-class target: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.AssetSubClassTarget{}, engine.NotFound("sub_class_target", t.ID)
	}
	return t, nil
}

// DeleteSubClassTarget removes a single sub-class target.
func (s *SQLiteStore) DeleteSubClassTarget(ctx context.Context, user, strategyID, classTargetID, targetID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sub_class_targets WHERE id = ? AND class_target_id = ?`, targetID, classTargetID)
	if err != nil {
		return fmt.Errorf("delete sub-class target: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("sub_class_target", targetID)
	}
	return nil
}

// ListExclusions returns every exclusion under strategyID.
func (s *SQLiteStore) ListExclusions(ctx context.Context, user, strategyID string) ([]engine.Exclusion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol_profile_id, exclude_from_calculation, never_sell, reason FROM exclusions WHERE strategy_id = ? ORDER BY symbol_profile_id`,
		strategyID)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	defer rows.Close()

	var out []engine.Exclusion
	for rows.Next() {
		var e engine.Exclusion
		if err := rows.Scan(&e.ID, &e.SymbolProfileID, &e.ExcludeFromCalculation, &e.NeverSell, &e.Reason); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertExclusion inserts a new exclusion or, when e.ID matches an existing
// row, updates that row's exclude_from_calculation, never_sell and reason.
func (s *SQLiteStore) UpsertExclusion(ctx context.Context, user, strategyID string, e engine.Exclusion) (engine.Exclusion, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exclusions (id, strategy_id, symbol_profile_id, exclude_from_calculation, never_sell, reason)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET exclude_from_calculation = excluded.exclude_from_calculation,
		 	never_sell = excluded.never_sell, reason = excluded.reason`,
		e.ID, strategyID, e.SymbolProfileID, e.ExcludeFromCalculation, e.NeverSell, e.Reason)
	if err != nil {
		return engine.Exclusion{}, fmt.Errorf("upsert exclusion: %w", err)
	}
	return e, nil
}

// DeleteExclusion removes one exclusion.
func (s *SQLiteStore) DeleteExclusion(ctx context.Context, user, strategyID, exclusionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exclusions WHERE id = ? AND strategy_id = ?`, exclusionID, strategyID)
	if err != nil {
		return fmt.Errorf("delete exclusion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("exclusion", exclusionID)
	}
	return nil
}
