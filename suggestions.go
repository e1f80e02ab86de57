package engine

// SuggestionAction is BUY or SELL (§4.4.2).
type SuggestionAction string

const (
	ActionBuy  SuggestionAction = "BUY"
	ActionSell SuggestionAction = "SELL"
)

// Suggestion is one prioritized rebalancing recommendation (§4.4.2).
type Suggestion struct {
	Priority           int
	Action             SuggestionAction
	Class              AssetClass
	SubClass           AssetSubClass
	Symbol             string // empty for BUY: symbol choice is deferred to the user
	DataSource         string
	CurrentPosition    Quantity
	SuggestedShares    Quantity // only meaningful for SELL
	SuggestedAmount    Money
	Reason             string
	TargetPercentAfter Percent // sub_target_percent_of_total
	DriftAfter         Percent // optimistic post-trade drift, always 0
}

// GenerateSuggestions runs the two-pass suggestion generator of §4.4.2:
// sells for overweight sub-classes first, then buys for underweight
// sub-classes, assigning a monotonic priority starting at 1 in that order,
// class-major and sub-class-minor.
func GenerateSuggestions(analysis AllocationAnalysis) []Suggestion {
	var suggestions []Suggestion
	priority := 1

	// Pass 1: sells (overweight).
	for _, class := range analysis.ClassRows {
		if class.DriftPercent <= 0 {
			continue
		}
		for _, sub := range class.SubClasses {
			if sub.DriftPercent <= 0 {
				continue
			}
			sells, nextPriority := sellSuggestions(class, sub, priority)
			suggestions = append(suggestions, sells...)
			priority = nextPriority
		}
	}

	// Pass 2: buys (underweight).
	for _, class := range analysis.ClassRows {
		if class.DriftPercent >= 0 {
			continue
		}
		for _, sub := range class.SubClasses {
			if sub.DriftPercent >= 0 {
				continue
			}
			suggestions = append(suggestions, buySuggestion(class, sub, priority))
			priority++
		}
	}

	return suggestions
}

func sellSuggestions(class ClassRow, sub SubClassRow, priority int) ([]Suggestion, int) {
	amountToSell := sub.DriftValue.Decimal().Abs()
	currency := sub.DriftValue.Currency()

	var sellable []HoldingData
	totalSellable := M(Zero, currency)
	neverSell := neverSellSet(sub)
	for _, h := range sub.Holdings {
		if neverSell[h.Symbol] {
			continue
		}
		sellable = append(sellable, h)
		totalSellable = totalSellable.Add(h.Value)
	}

	var out []Suggestion
	if totalSellable.IsZero() {
		return out, priority
	}

	for _, h := range sellable {
		ratio, _ := h.Value.Decimal().Div(totalSellable.Decimal()).Float64()
		holdingSellAmount := M(amountToSell, currency).Mul(Q(D(ratio)))
		shares := holdingSellAmount.Decimal().Div(h.MarketPrice.Decimal()).Floor()
		if !shares.IsPositive() {
			continue
		}
		out = append(out, Suggestion{
			Priority:           priority,
			Action:             ActionSell,
			Class:              class.Class,
			SubClass:           sub.SubClass,
			Symbol:             h.Symbol,
			DataSource:         h.DataSource,
			CurrentPosition:    h.Quantity,
			SuggestedShares:    Q(shares),
			SuggestedAmount:    h.MarketPrice.Mul(Q(shares)),
			Reason:             "overweight " + string(class.Class) + "/" + string(sub.SubClass) + ", sell to reduce drift",
			TargetPercentAfter: sub.TargetPercentOfTotal,
			DriftAfter:         0,
		})
		priority++
	}
	return out, priority
}

func buySuggestion(class ClassRow, sub SubClassRow, priority int) Suggestion {
	return Suggestion{
		Priority:           priority,
		Action:             ActionBuy,
		Class:              class.Class,
		SubClass:           sub.SubClass,
		SuggestedAmount:    M(sub.DriftValue.Decimal().Abs(), sub.DriftValue.Currency()),
		Reason:             "underweight " + string(class.Class) + "/" + string(sub.SubClass) + ", buy to close drift",
		TargetPercentAfter: sub.TargetPercentOfTotal,
		DriftAfter:         0,
	}
}

// neverSellSet collects symbols excluded from SELL suggestions by the
// strategy's exclusions. It is derived per sub-class row call because the
// caller only threads ClassRow/SubClassRow (holdings), not the exclusion
// list itself. Analysis already dropped excluded-from-calculation symbols,
// but never_sell symbols remain in the analysis and must still be filtered
// here at suggestion time (§4.4.2 "take only holdings where never_sell = false").
func neverSellSet(sub SubClassRow) map[string]bool {
	set := make(map[string]bool)
	for _, h := range sub.Holdings {
		if h.neverSell {
			set[h.Symbol] = true
		}
	}
	return set
}
