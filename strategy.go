package engine

import "fmt"

// AssetSubClassTarget is a leaf of the two-level allocation tree (§3):
// target percent expressed within the parent class (0-100).
type AssetSubClassTarget struct {
	ID            string
	AssetSubClass AssetSubClass
	TargetPercent Percent // percent of the parent class, not of the total portfolio
}

// AssetClassTarget is the class-level node of the allocation tree (§3).
type AssetClassTarget struct {
	ID            string
	AssetClass    AssetClass
	TargetPercent Percent // percent of the total portfolio
	SubClasses    []AssetSubClassTarget
}

// Exclusion is a per-strategy opt-out for a specific symbol (§3).
type Exclusion struct {
	ID                     string
	SymbolProfileID        string
	ExcludeFromCalculation bool
	NeverSell              bool
	Reason                 string
}

// Strategy is the top-level allocation policy for a user (§3).
type Strategy struct {
	ID             string
	Name           string
	IsActive       bool
	DriftThreshold Percent // 1-50
	ClassTargets   []AssetClassTarget
	Exclusions     []Exclusion
}

// ValidationError reports a rejected mutation (§4.4.4, §7 error kind 1).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidateDriftThreshold enforces the 1-50 percent range of §3.
func ValidateDriftThreshold(p Percent) error {
	if p < 1 || p > 50 {
		return validationErr("drift_threshold", "must be between 1 and 50, got %v", float64(p))
	}
	return nil
}

// ValidateClassTargets enforces §3 invariants (a) and (d) at the strategy
// scope: the sum of class targets must not exceed 100, and a class may
// appear at most once.
func ValidateClassTargets(targets []AssetClassTarget) error {
	seen := make(map[AssetClass]bool)
	var sum Percent
	for _, t := range targets {
		if seen[t.AssetClass] {
			return validationErr("asset_class", "class %q appears more than once in this strategy", t.AssetClass)
		}
		seen[t.AssetClass] = true
		sum += t.TargetPercent
		if err := ValidateSubClassTargets(t.AssetClass, t.SubClasses); err != nil {
			return err
		}
	}
	if sum > 100 {
		return validationErr("target_percent", "sum of class targets %v exceeds 100", float64(sum))
	}
	return nil
}

// ValidateSubClassTargets enforces §3 invariants (b), (c) and (d) within one
// class target: sum of sub-class targets <= 100, each sub-class valid for
// the parent class (§6 mapping), and each sub-class appears at most once.
func ValidateSubClassTargets(class AssetClass, subs []AssetSubClassTarget) error {
	seen := make(map[AssetSubClass]bool)
	var sum Percent
	for _, s := range subs {
		if !ValidSubClass(class, s.AssetSubClass) {
			return validationErr("asset_sub_class", "%q is not a valid sub-class of %q", s.AssetSubClass, class)
		}
		if seen[s.AssetSubClass] {
			return validationErr("asset_sub_class", "sub-class %q appears more than once under %q", s.AssetSubClass, class)
		}
		seen[s.AssetSubClass] = true
		sum += s.TargetPercent
	}
	if sum > 100 {
		return validationErr("target_percent", "sum of sub-class targets under %q is %v, exceeds 100", class, float64(sum))
	}
	return nil
}

// ValidateStrategy runs every mutation-time check (§4.4.4) against a
// strategy as a whole, the entry point callers should use before persisting.
func ValidateStrategy(s Strategy) error {
	if err := ValidateDriftThreshold(s.DriftThreshold); err != nil {
		return err
	}
	return ValidateClassTargets(s.ClassTargets)
}
