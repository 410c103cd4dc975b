package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chartapp "github.com/cosmichub/synastry/internal/application/chart"
	apperrors "github.com/cosmichub/synastry/pkg/errors"
)

func TestChartCreate(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/v1/charts", &chartapp.CreateInput{
		Name:    "Alice",
		Planets: testPlanets(0),
		Cusps:   testCusps(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created chartapp.Chart
	decodeBody(t, w, &created)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Alice", created.Name)
}

func TestChartCreate_Invalid(t *testing.T) {
	env := newTestEnv()

	planets := testPlanets(0)
	planets["sun"] = -1
	w := env.do(t, http.MethodPost, "/api/v1/charts", &chartapp.CreateInput{
		Name:    "Alice",
		Planets: planets,
		Cusps:   testCusps(),
	})
	assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrCodeChartBadLongitude)
}

func TestChartGet(t *testing.T) {
	env := newTestEnv()
	created := env.createChart(t, "Alice", 0)

	w := env.do(t, http.MethodGet, "/api/v1/charts/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got chartapp.Chart
	decodeBody(t, w, &got)
	assert.Equal(t, created.ID, got.ID)
}

func TestChartGet_NotFound(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/api/v1/charts/"+uuid.NewString(), nil)
	assertErrorCode(t, w, http.StatusNotFound, apperrors.ErrCodeChartNotFound)
}

func TestChartGet_BadID(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/api/v1/charts/nope", nil)
	assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrCodeBadRequest)
}

func TestChartList(t *testing.T) {
	env := newTestEnv()
	env.createChart(t, "Alice", 0)
	env.createChart(t, "Bob", 5)
	env.createChart(t, "Carol", 10)

	w := env.do(t, http.MethodGet, "/api/v1/charts?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result chartapp.ListResult
	decodeBody(t, w, &result)
	assert.Len(t, result.Charts, 2)
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 2, result.PageSize)
}

func TestChartUpdate(t *testing.T) {
	env := newTestEnv()
	created := env.createChart(t, "Alice", 0)

	w := env.do(t, http.MethodPut, "/api/v1/charts/"+created.ID.String(), &chartapp.UpdateInput{
		Name:    "Alice v2",
		Planets: testPlanets(5),
		Cusps:   testCusps(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated chartapp.Chart
	decodeBody(t, w, &updated)
	assert.Equal(t, "Alice v2", updated.Name)
}

func TestChartDelete(t *testing.T) {
	env := newTestEnv()
	created := env.createChart(t, "Alice", 0)

	w := env.do(t, http.MethodDelete, "/api/v1/charts/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/charts/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChartDelete_NotFound(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodDelete, "/api/v1/charts/"+uuid.NewString(), nil)
	assertErrorCode(t, w, http.StatusNotFound, apperrors.ErrCodeChartNotFound)
}
