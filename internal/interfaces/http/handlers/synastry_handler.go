package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	chartapp "github.com/cosmichub/synastry/internal/application/chart"
	synapp "github.com/cosmichub/synastry/internal/application/synastry"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
	"github.com/cosmichub/synastry/pkg/errors"
)

// SynastryHandler handles synastry computation requests.
type SynastryHandler struct {
	synastry synapp.Service
	charts   chartapp.Service
	logger   logging.Logger
}

// NewSynastryHandler creates a SynastryHandler.  The chart service may be
// nil when stored-chart endpoints are not mounted.
func NewSynastryHandler(syn synapp.Service, charts chartapp.Service, logger logging.Logger) *SynastryHandler {
	return &SynastryHandler{synastry: syn, charts: charts, logger: logger}
}

// Compute handles POST /api/v1/synastry/compute: a full reading from two
// inline charts.
func (h *SynastryHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var input synapp.ComputeInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, err)
		return
	}

	reading, err := h.synastry.Compute(r.Context(), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// Aspects handles POST /api/v1/synastry/aspects: the aspect matrix only.
func (h *SynastryHandler) Aspects(w http.ResponseWriter, r *http.Request) {
	var input synapp.ComputeInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, err)
		return
	}

	result, err := h.synastry.Aspects(r.Context(), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ComputeStored handles POST /api/v1/synastry/charts/{chartAID}/{chartBID}:
// a full reading over two stored charts.
func (h *SynastryHandler) ComputeStored(w http.ResponseWriter, r *http.Request) {
	if h.charts == nil {
		writeAppError(w, errors.New(errors.ErrCodeNotImplemented, "stored charts are not enabled"))
		return
	}

	idA, err := uuid.Parse(chi.URLParam(r, "chartAID"))
	if err != nil {
		writeAppError(w, errors.InvalidParam("invalid chart A id"))
		return
	}
	idB, err := uuid.Parse(chi.URLParam(r, "chartBID"))
	if err != nil {
		writeAppError(w, errors.InvalidParam("invalid chart B id"))
		return
	}

	ctx := r.Context()
	recA, err := h.charts.Get(ctx, idA)
	if err != nil {
		writeAppError(w, err)
		return
	}
	recB, err := h.charts.Get(ctx, idB)
	if err != nil {
		writeAppError(w, err)
		return
	}

	input := &synapp.ComputeInput{
		ChartA:  synapp.ChartInput{Name: recA.Name, Planets: recA.Planets, Cusps: recA.Cusps},
		ChartB:  synapp.ChartInput{Name: recB.Name, Planets: recB.Planets, Cusps: recB.Cusps},
		Builder: r.URL.Query().Get("builder"),
	}
	reading, err := h.synastry.Compute(ctx, input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
