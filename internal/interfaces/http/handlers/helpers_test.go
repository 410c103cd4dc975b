package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	chartapp "github.com/cosmichub/synastry/internal/application/chart"
	synapp "github.com/cosmichub/synastry/internal/application/synastry"
	"github.com/cosmichub/synastry/internal/domain/aspect"
	domainchart "github.com/cosmichub/synastry/internal/domain/chart"
	"github.com/cosmichub/synastry/internal/infrastructure/database/postgres/repositories"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cosmichub/synastry/pkg/errors"
)

// memRepo is an in-memory chart repository for handler tests.
type memRepo struct {
	records []*repositories.ChartRecord
}

func (r *memRepo) Insert(_ context.Context, rec *repositories.ChartRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*repositories.ChartRecord, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrCodeChartNotFound, "chart not found")
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*repositories.ChartRecord, error) {
	out := []*repositories.ChartRecord{}
	for i := offset; i < len(r.records) && len(out) < limit; i++ {
		out = append(out, r.records[i])
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, rec *repositories.ChartRecord) error {
	for i, existing := range r.records {
		if existing.ID == rec.ID {
			r.records[i] = rec
			return nil
		}
	}
	return apperrors.New(apperrors.ErrCodeChartNotFound, "chart not found")
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return apperrors.New(apperrors.ErrCodeChartNotFound, "chart not found")
}

func (r *memRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.records)), nil
}

// testEnv wires real services over in-memory persistence behind a chi
// router matching the production route shapes.
type testEnv struct {
	router   chi.Router
	chartSvc chartapp.Service
}

func newTestEnv() *testEnv {
	log := logging.NewNopLogger()
	chartSvc := chartapp.NewService(&memRepo{}, log)
	synSvc := synapp.NewService(aspect.DefaultRuleSet(), log)

	synHandler := NewSynastryHandler(synSvc, chartSvc, log)
	chartHandler := NewChartHandler(chartSvc, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/synastry", func(sr chi.Router) {
			sr.Post("/compute", synHandler.Compute)
			sr.Post("/aspects", synHandler.Aspects)
			sr.Post("/charts/{chartAID}/{chartBID}", synHandler.ComputeStored)
		})
		api.Route("/charts", func(cr chi.Router) {
			cr.Get("/", chartHandler.List)
			cr.Post("/", chartHandler.Create)
			cr.Route("/{chartID}", func(item chi.Router) {
				item.Get("/", chartHandler.Get)
				item.Put("/", chartHandler.Update)
				item.Delete("/", chartHandler.Delete)
			})
		})
	})

	return &testEnv{router: r, chartSvc: chartSvc}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func testPlanets(base float64) map[string]float64 {
	planets := make(map[string]float64, domainchart.NumBodies)
	for i, b := range domainchart.Bodies {
		planets[string(b)] = base + float64(i)*20
	}
	return planets
}

func testCusps() []float64 {
	cusps := make([]float64, domainchart.NumHouses)
	for i := range cusps {
		cusps[i] = float64(i) * 30
	}
	return cusps
}

func testChartInput(base float64) synapp.ChartInput {
	return synapp.ChartInput{Planets: testPlanets(base), Cusps: testCusps()}
}

func (e *testEnv) createChart(t *testing.T, name string, base float64) *chartapp.Chart {
	t.Helper()
	created, err := e.chartSvc.Create(context.Background(), &chartapp.CreateInput{
		Name:    name,
		Planets: testPlanets(base),
		Cusps:   testCusps(),
	})
	require.NoError(t, err)
	return created
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code apperrors.ErrorCode) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	require.Equal(t, string(code), resp.Code)
}
