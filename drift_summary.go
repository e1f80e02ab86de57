package engine

// DriftCategory is one over/under-threshold class entry in a DriftSummary (§4.4.3).
type DriftCategory struct {
	Name      AssetClass
	Drift     Percent
	Direction string // "OVER" or "UNDER"
}

// DriftSummary is the compressed dashboard view of allocation drift (§4.4.3).
type DriftSummary struct {
	HasActiveStrategy     bool
	OverallStatus         DriftStatus
	MaxDrift              Percent
	DriftThreshold        Percent
	CategoriesOverThreshold []DriftCategory
}

// DefaultDriftThreshold is used for the NO_STRATEGY response, since no
// strategy means no configured threshold to report.
const DefaultDriftThreshold Percent = 5

// SummarizeDrift compresses an AllocationAnalysis into the dashboard form.
// Pass hasActiveStrategy == false to get the NO_STRATEGY response
// (§4.4.3); analysis is ignored in that case.
func SummarizeDrift(hasActiveStrategy bool, analysis AllocationAnalysis) DriftSummary {
	if !hasActiveStrategy {
		return DriftSummary{
			HasActiveStrategy: false,
			OverallStatus:     StatusNoStrategy,
			DriftThreshold:    DefaultDriftThreshold,
		}
	}

	summary := DriftSummary{
		HasActiveStrategy: true,
		OverallStatus:     analysis.OverallStatus,
		DriftThreshold:    analysis.Strategy.DriftThreshold,
	}

	for _, row := range analysis.ClassRows {
		if row.DriftPercent.Abs() > summary.MaxDrift {
			summary.MaxDrift = row.DriftPercent.Abs()
		}
		if row.Status == StatusCritical {
			direction := "UNDER"
			if row.DriftPercent > 0 {
				direction = "OVER"
			}
			summary.CategoriesOverThreshold = append(summary.CategoriesOverThreshold, DriftCategory{
				Name:      row.Class,
				Drift:     row.DriftPercent,
				Direction: direction,
			})
		}
	}

	return summary
}
