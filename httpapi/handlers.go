package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	engine "github.com/kalmanoharan/rebalance-engine"
	"github.com/kalmanoharan/rebalance-engine/date"
)

type handler struct {
	engine *engine.Engine
}

func (h *handler) analysis(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	result, err := h.engine.Analysis(r.Context(), user)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handler) driftSummary(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	result, err := h.engine.DriftSummary(r.Context(), user)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handler) suggestions(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	result, err := h.engine.Suggestions(r.Context(), user)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// performanceRequest is the body for POST .../performance: activities and
// valuations are supplied by the caller since the engine has no activity
// store of its own (§1).
type performanceRequest struct {
	Activities []activityDTO  `json:"activities"`
	Valuations []valuationDTO `json:"valuations"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
}

type activityDTO struct {
	Date      string  `json:"date"`
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Fee       float64 `json:"fee"`
	Currency  string  `json:"currency"`
}

type valuationDTO struct {
	Date        string  `json:"date"`
	TotalValue  float64 `json:"total_value"`
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"`
	Currency    string  `json:"currency"`
}

func (h *handler) performance(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")

	var req performanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	start, err := date.Parse(req.Start)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start date", err)
		return
	}
	end, err := date.Parse(req.End)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end date", err)
		return
	}

	activities := make([]engine.Activity, 0, len(req.Activities))
	for _, a := range req.Activities {
		d, err := date.Parse(a.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid activity date", err)
			return
		}
		activities = append(activities, engine.Activity{
			Date:      d,
			Type:      engine.ActivityType(a.Type),
			Symbol:    a.Symbol,
			Quantity:  engine.QFloat(a.Quantity),
			UnitPrice: engine.MFloat(a.UnitPrice, a.Currency),
			Fee:       engine.MFloat(a.Fee, a.Currency),
		})
	}

	valuations := make([]engine.Valuation, 0, len(req.Valuations))
	for _, v := range req.Valuations {
		d, err := date.Parse(v.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid valuation date", err)
			return
		}
		valuations = append(valuations, engine.Valuation{
			Date:        d,
			TotalValue:  engine.MFloat(v.TotalValue, v.Currency),
			Deposits:    engine.MFloat(v.Deposits, v.Currency),
			Withdrawals: engine.MFloat(v.Withdrawals, v.Currency),
		})
	}

	result, err := h.engine.Performance(r.Context(), user, activities, valuations, start, end)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// performanceBreakdownRequest extends performanceRequest with the bucketing
// granularity ("daily", "weekly", "monthly", "quarterly", "yearly").
type performanceBreakdownRequest struct {
	performanceRequest
	Period string `json:"period"`
}

func (h *handler) performanceBreakdown(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")

	var req performanceBreakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	period, err := date.ParsePeriod(req.Period)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid period", err)
		return
	}
	start, err := date.Parse(req.Start)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start date", err)
		return
	}
	end, err := date.Parse(req.End)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end date", err)
		return
	}

	activities := make([]engine.Activity, 0, len(req.Activities))
	for _, a := range req.Activities {
		d, err := date.Parse(a.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid activity date", err)
			return
		}
		activities = append(activities, engine.Activity{
			Date:      d,
			Type:      engine.ActivityType(a.Type),
			Symbol:    a.Symbol,
			Quantity:  engine.QFloat(a.Quantity),
			UnitPrice: engine.MFloat(a.UnitPrice, a.Currency),
			Fee:       engine.MFloat(a.Fee, a.Currency),
		})
	}

	valuations := make([]engine.Valuation, 0, len(req.Valuations))
	for _, v := range req.Valuations {
		d, err := date.Parse(v.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid valuation date", err)
			return
		}
		valuations = append(valuations, engine.Valuation{
			Date:        d,
			TotalValue:  engine.MFloat(v.TotalValue, v.Currency),
			Deposits:    engine.MFloat(v.Deposits, v.Currency),
			Withdrawals: engine.MFloat(v.Withdrawals, v.Currency),
		})
	}

	result, err := h.engine.PerformanceBreakdown(r.Context(), user, activities, valuations, start, end, period)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handler) holdingPerformance(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	symbol := chi.URLParam(r, "symbol")

	var req performanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	end, err := date.Parse(req.End)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end date", err)
		return
	}

	activities := make([]engine.Activity, 0, len(req.Activities))
	for _, a := range req.Activities {
		d, err := date.Parse(a.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid activity date", err)
			return
		}
		activities = append(activities, engine.Activity{
			Date:      d,
			Type:      engine.ActivityType(a.Type),
			Symbol:    a.Symbol,
			Quantity:  engine.QFloat(a.Quantity),
			UnitPrice: engine.MFloat(a.UnitPrice, a.Currency),
			Fee:       engine.MFloat(a.Fee, a.Currency),
		})
	}

	result, err := h.engine.HoldingPerformance(r.Context(), user, symbol, activities, end)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handler) listStrategies(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategies, err := h.engine.Store.ListStrategies(r.Context(), user)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, strategies)
}

func (h *handler) getStrategy(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	id := chi.URLParam(r, "strategyID")
	s, err := h.engine.Store.GetStrategy(r.Context(), user, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *handler) createStrategy(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	var s engine.Strategy
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	created, err := h.engine.CreateStrategy(r.Context(), user, s)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *handler) updateStrategy(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	id := chi.URLParam(r, "strategyID")
	var s engine.Strategy
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	s.ID = id
	updated, err := h.engine.UpdateStrategy(r.Context(), user, s)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteStrategy(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	id := chi.URLParam(r, "strategyID")
	if err := h.engine.Store.DeleteStrategy(r.Context(), user, id); err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) activateStrategy(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	id := chi.URLParam(r, "strategyID")
	if err := h.engine.Store.ActivateStrategy(r.Context(), user, id); err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) createClassTarget(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	var t engine.AssetClassTarget
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	created, err := h.engine.CreateClassTarget(r.Context(), user, strategyID, t)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *handler) updateClassTarget(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	id := chi.URLParam(r, "classTargetID")
	var t engine.AssetClassTarget
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	t.ID = id
	updated, err := h.engine.UpdateClassTarget(r.Context(), user, strategyID, t)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteClassTarget(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	id := chi.URLParam(r, "classTargetID")
	if err := h.engine.DeleteClassTarget(r.Context(), user, strategyID, id); err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) createSubClassTarget(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	classTargetID := chi.URLParam(r, "classTargetID")
	var t engine.AssetSubClassTarget
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	created, err := h.engine.CreateSubClassTarget(r.Context(), user, strategyID, classTargetID, t)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *handler) updateSubClassTarget(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	classTargetID := chi.URLParam(r, "classTargetID")
	id := chi.URLParam(r, "subClassTargetID")
	var t engine.AssetSubClassTarget
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	t.ID = id
	updated, err := h.engine.UpdateSubClassTarget(r.Context(), user, strategyID, classTargetID, t)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteSubClassTarget(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	classTargetID := chi.URLParam(r, "classTargetID")
	id := chi.URLParam(r, "subClassTargetID")
	if err := h.engine.DeleteSubClassTarget(r.Context(), user, strategyID, classTargetID, id); err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) listExclusions(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	exclusions, err := h.engine.ListExclusions(r.Context(), user, strategyID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, exclusions)
}

func (h *handler) upsertExclusion(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	var ex engine.Exclusion
	if err := json.NewDecoder(r.Body).Decode(&ex); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	result, err := h.engine.UpsertExclusion(r.Context(), user, strategyID, ex)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handler) deleteExclusion(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	strategyID := chi.URLParam(r, "strategyID")
	id := chi.URLParam(r, "exclusionID")
	if err := h.engine.DeleteExclusion(r.Context(), user, strategyID, id); err != nil {
		writeEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
