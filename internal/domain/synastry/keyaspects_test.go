package synastry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmichub/synastry/internal/domain/aspect"
	"github.com/cosmichub/synastry/internal/domain/chart"
)

func TestKeyAspects_Empty(t *testing.T) {
	got := KeyAspects(emptyMatrix(t))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestKeyAspects_StrengthClassification(t *testing.T) {
	// Three sun contacts at distinct orbs; everything else out of range.
	var lonsA, lonsB [chart.NumBodies]float64
	lonsA[0] = 0     // sun A
	lonsB[0] = 121   // sun B: trine, orb 1 → strong
	lonsB[1] = 122.5 // moon B: trine, orb 2.5 → moderate
	lonsB[2] = 124   // mercury B: trine, orb 4 → excluded
	lonsA[1] = 200
	lonsA[2] = 200
	for i := 3; i < chart.NumBodies; i++ {
		lonsA[i] = 200
		lonsB[i] = 245
	}
	m := buildMatrix(t, lonsA, lonsB)

	got := KeyAspects(m)
	require.Len(t, got, 2)

	assert.Equal(t, chart.Sun, got[0].BodyA)
	assert.Equal(t, chart.Sun, got[0].BodyB)
	assert.Equal(t, aspect.Trine, got[0].Aspect)
	assert.InDelta(t, 1.0, got[0].Orb, 1e-9)
	assert.Equal(t, aspect.Harmonious, got[0].Kind)
	assert.Equal(t, StrengthStrong, got[0].Strength)

	assert.Equal(t, chart.Sun, got[1].BodyA)
	assert.Equal(t, chart.Moon, got[1].BodyB)
	assert.InDelta(t, 2.5, got[1].Orb, 1e-9)
	assert.Equal(t, StrengthModerate, got[1].Strength)
}

func TestKeyAspects_BoundaryOrbs(t *testing.T) {
	// Orb exactly 1.5 is still strong; orb exactly 3.0 is still included.
	var lonsA, lonsB [chart.NumBodies]float64
	lonsA[0] = 0
	lonsB[0] = 121.5 // trine, orb 1.5
	lonsB[1] = 123   // trine, orb 3.0
	lonsA[1] = 200
	for i := 2; i < chart.NumBodies; i++ {
		lonsA[i] = 200
		lonsB[i] = 245
	}
	got := KeyAspects(buildMatrix(t, lonsA, lonsB))

	require.Len(t, got, 2)
	assert.Equal(t, StrengthStrong, got[0].Strength)
	assert.Equal(t, StrengthModerate, got[1].Strength)
}

func TestKeyAspects_RowMajorOrder(t *testing.T) {
	// Exact conjunctions everywhere: 100 key aspects in row-major body order.
	var lons [chart.NumBodies]float64
	got := KeyAspects(buildMatrix(t, lons, lons))

	require.Len(t, got, 100)
	assert.Equal(t, chart.Sun, got[0].BodyA)
	assert.Equal(t, chart.Sun, got[0].BodyB)
	assert.Equal(t, chart.Sun, got[1].BodyA)
	assert.Equal(t, chart.Moon, got[1].BodyB)
	assert.Equal(t, chart.Pluto, got[99].BodyA)
	assert.Equal(t, chart.Pluto, got[99].BodyB)
	for _, ka := range got {
		assert.Equal(t, StrengthStrong, ka.Strength)
	}
}
