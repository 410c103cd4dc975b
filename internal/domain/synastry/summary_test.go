package synastry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmichub/synastry/internal/domain/chart"
)

func TestSummarize_EmptyMatrix(t *testing.T) {
	s := Summarize(emptyMatrix(t), nil)

	// Themes, strengths and challenges are empty but never nil; the generic
	// advice is always present.
	assert.NotNil(t, s.KeyThemes)
	assert.Empty(t, s.KeyThemes)
	assert.NotNil(t, s.Strengths)
	assert.Empty(t, s.Strengths)
	assert.NotNil(t, s.Challenges)
	assert.Empty(t, s.Challenges)
	assert.Equal(t, genericAdvice, s.Advice)
}

func TestSummarize_SoulConnection(t *testing.T) {
	// Tight Sun-Moon trine; everything else out of aspect range.
	var lonsA, lonsB [chart.NumBodies]float64
	lonsA[0] = 0
	lonsB[1] = 121 // moon B trine sun A, orb 1
	lonsB[0] = 45
	for i := 2; i < chart.NumBodies; i++ {
		lonsA[i] = 45
		lonsB[i] = 90
	}
	s := Summarize(buildMatrix(t, lonsA, lonsB), nil)

	assert.Contains(t, s.KeyThemes, "Soul Connection")
	assert.NotContains(t, s.KeyThemes, "Romantic Chemistry")
	require.Len(t, s.Strengths, 1)
	assert.Contains(t, s.Strengths[0], "Sun-Moon")
}

func TestSummarize_RomanticChemistry(t *testing.T) {
	// Tight Venus-Mars conjunction only.
	var lonsA, lonsB [chart.NumBodies]float64
	for i := range lonsA {
		lonsA[i] = 45
		lonsB[i] = 90
	}
	lonsA[3] = 200   // venus A
	lonsB[4] = 200.5 // mars B conjunct, orb 0.5
	s := Summarize(buildMatrix(t, lonsA, lonsB), nil)

	assert.Contains(t, s.KeyThemes, "Romantic Chemistry")
	assert.NotContains(t, s.KeyThemes, "Soul Connection")
	require.Len(t, s.Strengths, 1)
	assert.Contains(t, s.Strengths[0], "Venus-Mars")
}

func TestSummarize_LooseAspectsIgnored(t *testing.T) {
	// Sun-Moon trine at orb 5: present in the matrix but too loose to drive
	// the summary.
	var lonsA, lonsB [chart.NumBodies]float64
	lonsA[0] = 0
	lonsB[1] = 125
	lonsB[0] = 45
	for i := 2; i < chart.NumBodies; i++ {
		lonsA[i] = 45
		lonsB[i] = 90
	}
	m := buildMatrix(t, lonsA, lonsB)
	require.NotNil(t, m.AtBodies(chart.Sun, chart.Moon))

	s := Summarize(m, nil)
	assert.Empty(t, s.KeyThemes)
	assert.Empty(t, s.Strengths)
}

func TestSummarize_ChallengingMajority(t *testing.T) {
	// Every pair in exact square: 100 tight challenging cells, zero
	// harmonious ones.
	var lonsA, lonsB [chart.NumBodies]float64
	for i := range lonsB {
		lonsB[i] = 90
	}
	s := Summarize(buildMatrix(t, lonsA, lonsB), nil)

	require.Len(t, s.Challenges, 1)
	assert.Contains(t, s.Challenges[0], "friction")
	// The friction advice precedes the generic advice.
	require.Len(t, s.Advice, len(genericAdvice)+1)
	assert.Equal(t, genericAdvice, s.Advice[1:])
}

func TestSummarize_Deterministic(t *testing.T) {
	var lonsA, lonsB [chart.NumBodies]float64
	for i := range lonsA {
		lonsA[i] = float64(i) * 13
		lonsB[i] = float64(i) * 29
	}
	m := buildMatrix(t, lonsA, lonsB)
	assert.Equal(t, Summarize(m, nil), Summarize(m, nil))
}
