package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmichub/synastry/internal/domain/chart"
)

// chartWith builds a chart whose planets all sit at the given longitudes (by
// canonical body order) over the given cusps.
func chartWith(t *testing.T, lons [chart.NumBodies]float64, cusps []float64) *chart.Chart {
	t.Helper()
	planets := make(map[chart.Body]float64, chart.NumBodies)
	for i, b := range chart.Bodies {
		planets[b] = lons[i]
	}
	c, err := chart.New(planets, cusps)
	require.NoError(t, err)
	return c
}

func equalCusps() []float64 {
	cusps := make([]float64, chart.NumHouses)
	for i := range cusps {
		cusps[i] = float64(i) * 30
	}
	return cusps
}

func TestAnalyze_EqualHouses(t *testing.T) {
	var lons [chart.NumBodies]float64
	lons[0] = 15  // sun → house 1 (0..30)
	lons[1] = 45  // moon → house 2 (30..60)
	lons[2] = 330 // mercury → house 12 (330..360)
	lons[3] = 0   // venus → house 1, on the cusp itself
	lons[4] = 29.999
	source := chartWith(t, lons, equalCusps())
	target := chartWith(t, lons, equalCusps())

	got, err := Analyze(source, target)
	require.NoError(t, err)
	assert.Equal(t, 1, got[chart.Sun])
	assert.Equal(t, 2, got[chart.Moon])
	assert.Equal(t, 12, got[chart.Mercury])
	assert.Equal(t, 1, got[chart.Venus])
	assert.Equal(t, 1, got[chart.Mars])
	assert.Len(t, got, chart.NumBodies)
}

func TestAnalyze_CuspBoundaryBelongsToNextHouse(t *testing.T) {
	var lons [chart.NumBodies]float64
	lons[0] = 30 // exactly on cusp[1] → start of house 2
	source := chartWith(t, lons, equalCusps())
	target := chartWith(t, lons, equalCusps())

	got, err := Analyze(source, target)
	require.NoError(t, err)
	assert.Equal(t, 2, got[chart.Sun])
}

func TestAnalyze_WraparoundHouse(t *testing.T) {
	// House 12 spans 350° → 20°: a planet at 5° belongs there, not in
	// house 1.
	cusps := []float64{20, 50, 80, 110, 140, 170, 200, 230, 260, 290, 320, 350}
	var lons [chart.NumBodies]float64
	lons[0] = 5   // inside the wrapped span, past 0°
	lons[1] = 355 // inside the wrapped span, before 0°
	lons[2] = 20  // exactly on cusp[0] → house 1
	lons[3] = 19.999
	source := chartWith(t, lons, equalCusps())
	target := chartWith(t, lons, cusps)

	got, err := Analyze(source, target)
	require.NoError(t, err)
	assert.Equal(t, 12, got[chart.Sun])
	assert.Equal(t, 12, got[chart.Moon])
	assert.Equal(t, 1, got[chart.Mercury])
	assert.Equal(t, 12, got[chart.Venus])
}

func TestAnalyze_BothDirectionsIndependent(t *testing.T) {
	var lonsA, lonsB [chart.NumBodies]float64
	for i := range lonsA {
		lonsA[i] = 100
		lonsB[i] = 200
	}
	a := chartWith(t, lonsA, equalCusps())
	shifted := []float64{180, 210, 240, 270, 300, 330, 0, 30, 60, 90, 120, 150}
	b := chartWith(t, lonsB, shifted)

	aInB, err := Analyze(a, b)
	require.NoError(t, err)
	bInA, err := Analyze(b, a)
	require.NoError(t, err)

	// A's planets at 100° fall into B's house starting at 90° (house 10 of
	// the shifted wheel); B's planets at 200° fall into A's house 7.
	assert.Equal(t, 10, aInB[chart.Sun])
	assert.Equal(t, 7, bInA[chart.Sun])
}

func TestAnalyze_NilChart(t *testing.T) {
	c := chartWith(t, [chart.NumBodies]float64{}, equalCusps())
	_, err := Analyze(nil, c)
	assert.Error(t, err)
	_, err = Analyze(c, nil)
	assert.Error(t, err)
}
