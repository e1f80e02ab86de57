package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	engine "github.com/kalmanoharan/rebalance-engine"
)

// ListStrategies returns every strategy belonging to user, ordered by name.
func (s *SQLiteStore) ListStrategies(ctx context.Context, user string) ([]engine.Strategy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, is_active, drift_threshold FROM strategies WHERE user_id = ? ORDER BY name`, user)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	defer rows.Close()

	var out []engine.Strategy
	var ids []string
	for rows.Next() {
		var st engine.Strategy
		var threshold float64
		if err := rows.Scan(&st.ID, &st.Name, &st.IsActive, &threshold); err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		st.DriftThreshold = engine.Percent(threshold)
		out = append(out, st)
		ids = append(ids, st.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := s.loadStrategyTree(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetStrategy returns a single strategy by ID, scoped to user.
func (s *SQLiteStore) GetStrategy(ctx context.Context, user, id string) (engine.Strategy, error) {
	var st engine.Strategy
	var threshold float64
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_active, drift_threshold FROM strategies WHERE user_id = ? AND id = ?`, user, id)
	if err := row.Scan(&st.ID, &st.Name, &st.IsActive, &threshold); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return engine.Strategy{}, engine.NotFound("strategy", id)
		}
		return engine.Strategy{}, fmt.Errorf("get strategy: %w", err)
	}
	st.DriftThreshold = engine.Percent(threshold)
	if err := s.loadStrategyTree(ctx, &st); err != nil {
		return engine.Strategy{}, err
	}
	return st, nil
}

// GetActiveStrategy returns the user's single active strategy, if any (§3 invariant: at most one).
func (s *SQLiteStore) GetActiveStrategy(ctx context.Context, user string) (engine.Strategy, bool, error) {
	var id string
	row := s.db.QueryRowContext(ctx, `SELECT id FROM strategies WHERE user_id = ? AND is_active = 1`, user)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return engine.Strategy{}, false, nil
		}
		return engine.Strategy{}, false, fmt.Errorf("get active strategy: %w", err)
	}
	st, err := s.GetStrategy(ctx, user, id)
	if err != nil {
		return engine.Strategy{}, false, err
	}
	return st, true, nil
}

// CreateStrategy inserts a new strategy and its full target/exclusion tree.
func (s *SQLiteStore) CreateStrategy(ctx context.Context, user string, st engine.Strategy) (engine.Strategy, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.Strategy{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO strategies (id, user_id, name, is_active, drift_threshold) VALUES (?, ?, ?, ?, ?)`,
		st.ID, user, st.Name, st.IsActive, float64(st.DriftThreshold)); err != nil {
		return engine.Strategy{}, fmt.Errorf("insert strategy: %w", err)
	}

	if err := insertClassTargets(ctx, tx, st.ID, st.ClassTargets); err != nil {
		return engine.Strategy{}, err
	}
	if err := insertExclusions(ctx, tx, st.ID, st.Exclusions); err != nil {
		return engine.Strategy{}, err
	}

	if err := tx.Commit(); err != nil {
		return engine.Strategy{}, err
	}
	return s.GetStrategy(ctx, user, st.ID)
}

// UpdateStrategy replaces a strategy's scalar fields and its whole target/exclusion tree.
func (s *SQLiteStore) UpdateStrategy(ctx context.Context, user string, st engine.Strategy) (engine.Strategy, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.Strategy{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE strategies SET name = ?, drift_threshold = ? WHERE id = ? AND user_id = ?`,
		st.Name, float64(st.DriftThreshold), st.ID, user)
	if err != nil {
		return engine.Strategy{}, fmt.Errorf("update strategy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.Strategy{}, engine.NotFound("strategy", st.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_targets WHERE strategy_id = ?`, st.ID); err != nil {
		return engine.Strategy{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exclusions WHERE strategy_id = ?`, st.ID); err != nil {
		return engine.Strategy{}, err
	}
	if err := insertClassTargets(ctx, tx, st.ID, st.ClassTargets); err != nil {
		return engine.Strategy{}, err
	}
	if err := insertExclusions(ctx, tx, st.ID, st.Exclusions); err != nil {
		return engine.Strategy{}, err
	}

	if err := tx.Commit(); err != nil {
		return engine.Strategy{}, err
	}
	return s.GetStrategy(ctx, user, st.ID)
}

// DeleteStrategy removes a strategy and cascades to its targets and exclusions.
func (s *SQLiteStore) DeleteStrategy(ctx context.Context, user, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM strategies WHERE id = ? AND user_id = ?`, id, user)
	if err != nil {
		return fmt.Errorf("delete strategy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("strategy", id)
	}
	return nil
}

// ActivateStrategy marks id active and deactivates every other strategy of
// user in the same transaction, preserving the at-most-one-active invariant (§3).
func (s *SQLiteStore) ActivateStrategy(ctx context.Context, user, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE strategies SET is_active = 0 WHERE user_id = ?`, user); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE strategies SET is_active = 1 WHERE id = ? AND user_id = ?`, id, user)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("strategy", id)
	}
	return tx.Commit()
}

func insertClassTargets(ctx context.Context, tx *sql.Tx, strategyID string, targets []engine.AssetClassTarget) error {
	for i := range targets {
		t := &targets[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO class_targets (id, strategy_id, asset_class, target_percent) VALUES (?, ?, ?, ?)`,
			t.ID, strategyID, string(t.AssetClass), float64(t.TargetPercent)); err != nil {
			return fmt.Errorf("insert class target: %w", err)
		}
		for j := range t.SubClasses {
			sub := &t.SubClasses[j]
			if sub.ID == "" {
				sub.ID = uuid.NewString()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sub_class_targets (id, class_target_id, asset_sub_class, target_percent) VALUES (?, ?, ?, ?)`,
				sub.ID, t.ID, string(sub.AssetSubClass), float64(sub.TargetPercent)); err != nil {
				return fmt.Errorf("insert sub-class target: %w", err)
			}
		}
	}
	return nil
}

func insertExclusions(ctx context.Context, tx *sql.Tx, strategyID string, exclusions []engine.Exclusion) error {
	for i := range exclusions {
		e := &exclusions[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exclusions (id, strategy_id, symbol_profile_id, exclude_from_calculation, never_sell, reason) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, strategyID, e.SymbolProfileID, e.ExcludeFromCalculation, e.NeverSell, e.Reason); err != nil {
			return fmt.Errorf("insert exclusion: %w", err)
		}
	}
	return nil
}

// loadStrategyTree populates st.ClassTargets and st.Exclusions from the database.
func (s *SQLiteStore) loadStrategyTree(ctx context.Context, st *engine.Strategy) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, asset_class, target_percent FROM class_targets WHERE strategy_id = ? ORDER BY asset_class`, st.ID)
	if err != nil {
		return fmt.Errorf("load class targets: %w", err)
	}
	st.ClassTargets = nil
	for rows.Next() {
		var t engine.AssetClassTarget
		var class string
		var pct float64
		if err := rows.Scan(&t.ID, &class, &pct); err != nil {
			rows.Close()
			return err
		}
		t.AssetClass = engine.AssetClass(class)
		t.TargetPercent = engine.Percent(pct)
		st.ClassTargets = append(st.ClassTargets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range st.ClassTargets {
		subRows, err := s.db.QueryContext(ctx,
			`SELECT id, asset_sub_class, target_percent FROM sub_class_targets WHERE class_target_id = ? ORDER BY asset_sub_class`,
			st.ClassTargets[i].ID)
		if err != nil {
			return fmt.Errorf("load sub-class targets: %w", err)
		}
		for subRows.Next() {
			var sub engine.AssetSubClassTarget
			var subClass string
			var pct float64
			if err := subRows.Scan(&sub.ID, &subClass, &pct); err != nil {
				subRows.Close()
				return err
			}
			sub.AssetSubClass = engine.AssetSubClass(subClass)
			sub.TargetPercent = engine.Percent(pct)
			st.ClassTargets[i].SubClasses = append(st.ClassTargets[i].SubClasses, sub)
		}
		subRows.Close()
		if err := subRows.Err(); err != nil {
			return err
		}
	}

	exRows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol_profile_id, exclude_from_calculation, never_sell, reason FROM exclusions WHERE strategy_id = ? ORDER BY symbol_profile_id`,
		st.ID)
	if err != nil {
		return fmt.Errorf("load exclusions: %w", err)
	}
	defer exRows.Close()
	st.Exclusions = nil
	for exRows.Next() {
		var e engine.Exclusion
		if err := exRows.Scan(&e.ID, &e.SymbolProfileID, &e.ExcludeFromCalculation, &e.NeverSell, &e.Reason); err != nil {
			return err
		}
		st.Exclusions = append(st.Exclusions, e)
	}
	return exRows.Err()
}
