package engine

import "errors"

// ErrNoActiveStrategy is returned by operations that require an active
// strategy when the user has none (§6, §7 error kind 2).
var ErrNoActiveStrategy = errors.New("NO_ACTIVE_STRATEGY: user has no active strategy")

// NotFoundError reports a missing strategy, target or exclusion (§6, §7
// error kind 2), distinct from an empty result.
type NotFoundError struct {
	Kind string // "strategy", "class_target", "sub_class_target", "exclusion"
	ID   string
}

func (e *NotFoundError) Error() string {
	return "NOT_FOUND: " + e.Kind + " " + e.ID
}

// NotFound constructs a NotFoundError.
func NotFound(kind, id string) error { return &NotFoundError{Kind: kind, ID: id} }
