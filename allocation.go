package engine

// HoldingData is the per-holding input the portfolio collaborator supplies
// (§4.4.1, §6): pre-computed market value and quantity for one position.
type HoldingData struct {
	Symbol      string
	DataSource  string
	AssetClass  AssetClass
	SubClass    AssetSubClass
	Value       Money
	Quantity    Quantity
	MarketPrice Money
	neverSell   bool // set from the strategy's exclusions during analysis
}

// DriftStatus classifies how far a row's drift is from target (§4.4.1 step 5).
type DriftStatus string

const (
	StatusOK         DriftStatus = "OK"
	StatusWarning    DriftStatus = "WARNING"
	StatusCritical   DriftStatus = "CRITICAL"
	StatusNoStrategy DriftStatus = "NO_STRATEGY"
)

// classifyDrift applies the §4.4.1 step-5 bands to an absolute drift
// percentage against a strategy's threshold.
func classifyDrift(drift Percent, threshold Percent) DriftStatus {
	abs := drift.Abs()
	switch {
	case abs >= threshold:
		return StatusCritical
	case abs >= threshold/2:
		return StatusWarning
	default:
		return StatusOK
	}
}

// SubClassRow is one sub-class's drift figures, computed in both
// percent-of-parent and percent-of-total terms (§9 Design Notes: the two
// representations are never conflated).
type SubClassRow struct {
	SubClass              AssetSubClass
	TargetPercentOfParent Percent // as configured on the strategy
	TargetPercentOfTotal  Percent
	TargetValue           Money
	ActualValue           Money
	ActualPercentOfTotal  Percent
	ActualPercentOfParent Percent
	DriftPercent          Percent // percent-of-total actual minus percent-of-total target
	DriftValue            Money
	Status                DriftStatus
	Holdings              []HoldingData // in portfolio-collaborator iteration order, for suggestion generation
}

// ClassRow is one asset class's drift figures and its nested sub-class rows.
type ClassRow struct {
	Class         AssetClass
	TargetPercent Percent
	TargetValue   Money
	ActualValue   Money
	ActualPercent Percent
	DriftPercent  Percent
	DriftValue    Money
	Status        DriftStatus
	SubClasses    []SubClassRow
}

// AllocationAnalysis is the full two-level reconciliation output (§4.4.1).
type AllocationAnalysis struct {
	Strategy       Strategy
	PortfolioValue Money
	ExcludedValue  Money
	ClassRows      []ClassRow
	OverallStatus  DriftStatus
}

// AnalyzeAllocation reconciles actual holdings against a strategy's
// two-level target tree (§4.4.1). holdings and exclusions are consumed in
// the order the portfolio/persistence collaborators returned them; that
// order becomes the suggestion-priority order later (§5 Ordering guarantees).
func AnalyzeAllocation(strategy Strategy, holdings []HoldingData, currency string) AllocationAnalysis {
	excluded := make(map[string]bool)
	neverSell := make(map[string]bool)
	for _, ex := range strategy.Exclusions {
		if ex.ExcludeFromCalculation {
			excluded[ex.SymbolProfileID] = true
		}
		if ex.NeverSell {
			neverSell[ex.SymbolProfileID] = true
		}
	}

	var included []HoldingData
	excludedValue := M(Zero, currency)
	for _, h := range holdings {
		if excluded[h.Symbol] {
			excludedValue = excludedValue.Add(h.Value)
			continue
		}
		h.neverSell = neverSell[h.Symbol]
		included = append(included, h)
	}

	portfolioValue := M(Zero, currency)
	for _, h := range included {
		portfolioValue = portfolioValue.Add(h.Value)
	}

	analysis := AllocationAnalysis{
		Strategy:       strategy,
		PortfolioValue: portfolioValue,
		ExcludedValue:  excludedValue,
	}

	maxAbsDrift := Percent(0)
	for _, classTarget := range strategy.ClassTargets {
		row := buildClassRow(classTarget, included, portfolioValue, currency, strategy.DriftThreshold)
		if row.DriftPercent.Abs() > maxAbsDrift {
			maxAbsDrift = row.DriftPercent.Abs()
		}
		analysis.ClassRows = append(analysis.ClassRows, row)
	}
	analysis.OverallStatus = classifyDrift(maxAbsDrift, strategy.DriftThreshold)

	return analysis
}

func buildClassRow(target AssetClassTarget, included []HoldingData, portfolioValue Money, currency string, threshold Percent) ClassRow {
	actualValue := M(Zero, currency)
	var classHoldings []HoldingData
	for _, h := range included {
		if h.AssetClass == target.AssetClass {
			actualValue = actualValue.Add(h.Value)
			classHoldings = append(classHoldings, h)
		}
	}

	actualPercent := percentOf(actualValue, portfolioValue)
	targetValue := percentValue(target.TargetPercent, portfolioValue)
	driftPercent := actualPercent - target.TargetPercent
	driftValue := actualValue.Sub(targetValue)

	row := ClassRow{
		Class:         target.AssetClass,
		TargetPercent: target.TargetPercent,
		TargetValue:   targetValue,
		ActualValue:   actualValue,
		ActualPercent: actualPercent,
		DriftPercent:  driftPercent,
		DriftValue:    driftValue,
		Status:        classifyDrift(driftPercent, threshold),
	}

	for _, sub := range target.SubClasses {
		row.SubClasses = append(row.SubClasses, buildSubClassRow(target, sub, classHoldings, portfolioValue, currency, threshold))
	}
	return row
}

func buildSubClassRow(class AssetClassTarget, sub AssetSubClassTarget, classHoldings []HoldingData, portfolioValue Money, currency string, threshold Percent) SubClassRow {
	actualValue := M(Zero, currency)
	var holdings []HoldingData
	for _, h := range classHoldings {
		if h.SubClass == sub.AssetSubClass {
			actualValue = actualValue.Add(h.Value)
			holdings = append(holdings, h)
		}
	}

	classActualValue := M(Zero, currency)
	for _, h := range classHoldings {
		classActualValue = classActualValue.Add(h.Value)
	}

	targetPercentOfTotal := Percent(float64(class.TargetPercent) * float64(sub.TargetPercent) / 100)
	targetValue := percentValue(targetPercentOfTotal, portfolioValue)

	actualPercentOfTotal := percentOf(actualValue, portfolioValue)
	actualPercentOfParent := percentOf(actualValue, classActualValue)
	driftPercent := actualPercentOfTotal - targetPercentOfTotal
	driftValue := actualValue.Sub(targetValue)

	return SubClassRow{
		SubClass:              sub.AssetSubClass,
		TargetPercentOfParent: sub.TargetPercent,
		TargetPercentOfTotal:  targetPercentOfTotal,
		TargetValue:           targetValue,
		ActualValue:           actualValue,
		ActualPercentOfTotal:  actualPercentOfTotal,
		ActualPercentOfParent: actualPercentOfParent,
		DriftPercent:          driftPercent,
		DriftValue:            driftValue,
		Status:                classifyDrift(driftPercent, threshold),
		Holdings:              holdings,
	}
}

// percentOf returns 100*value/total, or 0 if total is zero (§4.4.1 step 4 "0 if denom 0").
func percentOf(value, total Money) Percent {
	if total.IsZero() {
		return 0
	}
	ratio, _ := value.Decimal().Div(total.Decimal()).Float64()
	return Percent(ratio * 100)
}

// percentValue returns pct% of total, as Money.
func percentValue(pct Percent, total Money) Money {
	return total.Mul(Q(D(float64(pct) / 100)))
}
