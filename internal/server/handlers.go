package server

import (
	"encoding/json"
	"net/http"

	"github.com/antlab/forageshift/internal/analysis"
)

// Handlers contains the HTTP handlers for the results API
type Handlers struct {
	controller *Controller
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{controller: ctrl}
}

// summaryResponse is the JSON shape of one group summary. Interval segments
// mirror the plot-interval convention: segment two is omitted unless the
// interquartile range wraps midnight.
type summaryResponse struct {
	Site          string   `json:"site"`
	Species       string   `json:"species"`
	Chamber       string   `json:"chamber"`
	Season        string   `json:"season"`
	MeanHour      float64  `json:"mean_hour"`
	MedianHour    float64  `json:"median_hour"`
	Q05           float64  `json:"q05"`
	Q25           float64  `json:"q25"`
	Q75           float64  `json:"q75"`
	Q95           float64  `json:"q95"`
	N             int      `json:"n"`
	MeanUndefined bool     `json:"mean_undefined,omitempty"`
	Segment1      segment  `json:"segment1"`
	Segment2      *segment `json:"segment2,omitempty"`
}

type segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type shiftResponse struct {
	Site       string  `json:"site"`
	Species    string  `json:"species"`
	Chamber    string  `json:"chamber"`
	Season     string  `json:"season"`
	DeltaC     float64 `json:"delta_c"`
	ShiftHours float64 `json:"shift_hours"`
	N          int     `json:"n"`
}

type regressionResponse struct {
	RunID        string             `json:"run_id"`
	Coefficients map[string]float64 `json:"coefficients"`
	RSquared     float64            `json:"r_squared"`
	AdjRSquared  float64            `json:"adj_r_squared"`
	RMSE         float64            `json:"rmse"`
	AIC          float64            `json:"aic"`
	BIC          float64            `json:"bic"`
	SampleCount  int                `json:"sample_count"`
}

// Health handles the health check endpoint
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// Summaries serves the group summaries of the latest run
func (h *Handlers) Summaries(w http.ResponseWriter, r *http.Request) {
	store := h.controller.store

	runID, err := store.LatestRunID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	summaries, err := store.Summaries(r.Context(), runID)
	if err != nil {
		h.controller.logger.Errorf("loading summaries: %v", err)
		http.Error(w, "error loading summaries", http.StatusInternalServerError)
		return
	}

	out := make([]summaryResponse, 0, len(summaries))
	for _, gs := range summaries {
		resp := summaryResponse{
			Site:          string(gs.Key.Site),
			Species:       gs.Key.Species,
			Chamber:       gs.Key.Chamber,
			Season:        string(gs.Key.Season),
			MeanHour:      gs.Summary.MeanHour,
			MedianHour:    gs.Summary.MedianHour,
			Q05:           gs.Summary.Q05,
			Q25:           gs.Summary.Q25,
			Q75:           gs.Summary.Q75,
			Q95:           gs.Summary.Q95,
			N:             gs.Summary.N,
			MeanUndefined: gs.Summary.MeanUndefined,
			Segment1:      segment{Start: gs.Interval.First.Start, End: gs.Interval.First.End},
		}
		if gs.Interval.Second != nil {
			resp.Segment2 = &segment{Start: gs.Interval.Second.Start, End: gs.Interval.Second.End}
		}
		out = append(out, resp)
	}
	writeJSON(w, out)
}

// Shifts serves the shift records of the latest run
func (h *Handlers) Shifts(w http.ResponseWriter, r *http.Request) {
	store := h.controller.store

	runID, err := store.LatestRunID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	shifts, err := store.Shifts(r.Context(), runID)
	if err != nil {
		h.controller.logger.Errorf("loading shifts: %v", err)
		http.Error(w, "error loading shifts", http.StatusInternalServerError)
		return
	}

	out := make([]shiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		out = append(out, shiftResponse{
			Site:       string(sh.Key.Site),
			Species:    sh.Key.Species,
			Chamber:    sh.Key.Chamber,
			Season:     string(sh.Key.Season),
			DeltaC:     sh.DeltaC,
			ShiftHours: sh.ShiftHours,
			N:          sh.N,
		})
	}
	writeJSON(w, out)
}

// LatestRegression serves the most recent stored regression
func (h *Handlers) LatestRegression(w http.ResponseWriter, r *http.Request) {
	reg, runID, err := h.controller.store.LatestRegression(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	coeffs := make(map[string]float64, len(analysis.PredictorNames))
	for i, name := range analysis.PredictorNames {
		coeffs[name] = reg.Coefficients[i]
	}

	writeJSON(w, regressionResponse{
		RunID:        runID,
		Coefficients: coeffs,
		RSquared:     reg.RSquared,
		AdjRSquared:  reg.AdjustedRSquared,
		RMSE:         reg.RootMeanSquaredError,
		AIC:          reg.AIC,
		BIC:          reg.BIC,
		SampleCount:  reg.SampleCount,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "error encoding response", http.StatusInternalServerError)
	}
}
