package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	synapp "github.com/cosmichub/synastry/internal/application/synastry"
	apperrors "github.com/cosmichub/synastry/pkg/errors"
)

func computeRequest() *synapp.ComputeInput {
	return &synapp.ComputeInput{
		ChartA: testChartInput(0),
		ChartB: testChartInput(0),
	}
}

func TestSynastryCompute(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/v1/synastry/compute", computeRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reading synapp.Reading
	decodeBody(t, w, &reading)
	assert.Equal(t, 100, reading.AspectCount)
	assert.Equal(t, "vectorized", reading.Builder)
	assert.Len(t, reading.Matrix, 10)
	assert.NotEmpty(t, reading.KeyAspects)
	assert.GreaterOrEqual(t, reading.Score.Overall, 0.0)
	assert.LessOrEqual(t, reading.Score.Overall, 100.0)
}

func TestSynastryCompute_BuilderFlag(t *testing.T) {
	env := newTestEnv()

	input := computeRequest()
	input.Builder = "scalar"
	w := env.do(t, http.MethodPost, "/api/v1/synastry/compute", input)
	require.Equal(t, http.StatusOK, w.Code)

	var reading synapp.Reading
	decodeBody(t, w, &reading)
	assert.Equal(t, "scalar", reading.Builder)
}

func TestSynastryCompute_UnknownBuilder(t *testing.T) {
	env := newTestEnv()

	input := computeRequest()
	input.Builder = "simd"
	w := env.do(t, http.MethodPost, "/api/v1/synastry/compute", input)
	assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrCodeSynastryBadBuilder)
}

func TestSynastryCompute_InvalidChart(t *testing.T) {
	env := newTestEnv()

	input := computeRequest()
	delete(input.ChartA.Planets, "moon")
	w := env.do(t, http.MethodPost, "/api/v1/synastry/compute", input)
	assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrCodeChartMissingBody)
}

func TestSynastryCompute_MalformedBody(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/v1/synastry/compute", "not an object")
	assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrCodeBadRequest)
}

func TestSynastryAspects(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/v1/synastry/aspects", computeRequest())
	require.Equal(t, http.StatusOK, w.Code)

	var result synapp.MatrixResult
	decodeBody(t, w, &result)
	assert.Equal(t, 100, result.AspectCount)
	assert.Len(t, result.Matrix, 10)
}

func TestSynastryComputeStored(t *testing.T) {
	env := newTestEnv()
	a := env.createChart(t, "Alice", 0)
	b := env.createChart(t, "Bob", 5)

	w := env.do(t, http.MethodPost, "/api/v1/synastry/charts/"+a.ID.String()+"/"+b.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reading synapp.Reading
	decodeBody(t, w, &reading)
	assert.Len(t, reading.Matrix, 10)
}

func TestSynastryComputeStored_BuilderQuery(t *testing.T) {
	env := newTestEnv()
	a := env.createChart(t, "Alice", 0)
	b := env.createChart(t, "Bob", 5)

	path := "/api/v1/synastry/charts/" + a.ID.String() + "/" + b.ID.String() + "?builder=scalar"
	w := env.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reading synapp.Reading
	decodeBody(t, w, &reading)
	assert.Equal(t, "scalar", reading.Builder)
}

func TestSynastryComputeStored_UnknownChart(t *testing.T) {
	env := newTestEnv()
	a := env.createChart(t, "Alice", 0)

	path := "/api/v1/synastry/charts/" + a.ID.String() + "/1b671a64-40d5-491e-99b0-da01ff1f3341"
	w := env.do(t, http.MethodPost, path, nil)
	assertErrorCode(t, w, http.StatusNotFound, apperrors.ErrCodeChartNotFound)
}

func TestSynastryComputeStored_BadID(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/v1/synastry/charts/not-a-uuid/also-bad", nil)
	assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrCodeBadRequest)
}
