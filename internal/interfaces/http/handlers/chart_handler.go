package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	chartapp "github.com/cosmichub/synastry/internal/application/chart"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
	"github.com/cosmichub/synastry/pkg/errors"
)

// ChartHandler handles stored-chart CRUD requests.
type ChartHandler struct {
	charts chartapp.Service
	logger logging.Logger
}

// NewChartHandler creates a ChartHandler.
func NewChartHandler(charts chartapp.Service, logger logging.Logger) *ChartHandler {
	return &ChartHandler{charts: charts, logger: logger}
}

// Create handles POST /api/v1/charts.
func (h *ChartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input chartapp.CreateInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, err)
		return
	}

	created, err := h.charts.Create(r.Context(), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/v1/charts/{chartID}.
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseChartID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	got, err := h.charts.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

// List handles GET /api/v1/charts.
func (h *ChartHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := h.charts.List(r.Context(), &chartapp.ListInput{Page: page, PageSize: pageSize})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Update handles PUT /api/v1/charts/{chartID}.
func (h *ChartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseChartID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	var input chartapp.UpdateInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, err)
		return
	}

	updated, err := h.charts.Update(r.Context(), id, &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/charts/{chartID}.
func (h *ChartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseChartID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := h.charts.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func parseChartID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "chartID"))
	if err != nil {
		return uuid.Nil, errors.InvalidParam("invalid chart id")
	}
	return id, nil
}
