// Package synastry derives relationship-level results from an aspect matrix
// and house overlays: the weighted compatibility score, the qualitative
// summary, and the key-aspect extraction used by the API layer.  Every
// operation here is a pure function of its inputs.
package synastry

import (
	"github.com/cosmichub/synastry/internal/domain/aspect"
	"github.com/cosmichub/synastry/internal/domain/chart"
	"github.com/cosmichub/synastry/internal/domain/overlay"
)

// Overlays bundles the two directions of a house-overlay analysis.
type Overlays struct {
	AInB overlay.Placements `json:"a_in_b"`
	BInA overlay.Placements `json:"b_in_a"`
}

// Breakdown carries the five thematic sub-scores, each in [0, 100].
type Breakdown struct {
	Emotional     float64 `json:"emotional"`
	Communication float64 `json:"communication"`
	Physical      float64 `json:"physical"`
	Spiritual     float64 `json:"spiritual"`
	Stability     float64 `json:"stability"`
}

// Score is the weighted compatibility result.  It is derived, never
// persisted as a source of truth, and recomputed per request.
type Score struct {
	Overall        float64   `json:"overall"`
	Breakdown      Breakdown `json:"breakdown"`
	Interpretation string    `json:"interpretation"`
}

// Per-aspect base scores.  Harmonious aspects contribute positively,
// challenging ones negatively.
var baseScores = map[aspect.Name]float64{
	aspect.Conjunction: 4,
	aspect.Trine:       3,
	aspect.Sextile:     2,
	aspect.SemiSextile: 1,
	aspect.Square:      -2,
	aspect.Opposition:  -3,
	aspect.Quincunx:    -1,
}

// maxBaseScore is the largest base score; the normalization ceiling is
// derived from it.
const maxBaseScore = 4.0

// Per-planet weights.  Luminaries and personal planets carry more weight
// than the outer planets.
var planetWeights = map[chart.Body]float64{
	chart.Sun:     3,
	chart.Moon:    3,
	chart.Mercury: 2,
	chart.Venus:   3,
	chart.Mars:    3,
	chart.Jupiter: 2,
	chart.Saturn:  1.5,
	chart.Uranus:  1,
	chart.Neptune: 1,
	chart.Pluto:   1,
}

// keyHouses are the house placements that earn an overlay bonus.
var keyHouses = map[int]bool{1: true, 4: true, 5: true, 7: true, 8: true, 10: true}

// overlayBonusBodies are the placements that count toward the overlay bonus.
var overlayBonusBodies = [...]chart.Body{chart.Venus, chart.Mars, chart.Moon}

// overlayBonus is the flat contribution per qualifying overlay placement.
const overlayBonus = 5.0

// Thematic body subsets for the breakdown sub-scores.  A matrix cell counts
// toward a theme only when both of its bodies belong to the subset.
var themeBodies = map[string][]chart.Body{
	"emotional":     {chart.Sun, chart.Moon},
	"communication": {chart.Mercury, chart.Jupiter, chart.Uranus},
	"physical":      {chart.Venus, chart.Mars},
	"spiritual":     {chart.Jupiter, chart.Neptune, chart.Pluto},
	"stability":     {chart.Saturn, chart.Moon},
}

// Scorer computes compatibility scores from aspect matrices.  The rule set is
// needed to recover each aspect's orb tolerance for the orb-factor scaling.
type Scorer struct {
	rules aspect.RuleSet
}

// NewScorer constructs a Scorer over the given rule set.
func NewScorer(rules aspect.RuleSet) *Scorer {
	return &Scorer{rules: rules}
}

// cellContribution returns the weighted contribution of one populated cell:
// the average of the two planet weights, times the aspect base score, times
// an orb factor that scales linearly from 1 at exact aspect to 0 at the orb
// boundary.
func (s *Scorer) cellContribution(a, b chart.Body, cell *aspect.Cell) float64 {
	base, ok := baseScores[cell.Aspect]
	if !ok {
		return 0
	}
	maxOrb, ok := s.rules.MaxOrbFor(cell.Aspect)
	if !ok || maxOrb <= 0 {
		return 0
	}
	orbFactor := 1 - cell.Orb/maxOrb
	return (planetWeights[a] + planetWeights[b]) / 2 * base * orbFactor
}

// Compute derives the full compatibility score from a matrix and optional
// overlays.  Passing nil overlays skips the overlay bonus; the aspect-based
// scoring is unaffected.
//
// The normalization maps the raw weighted total onto [0, 100] through
// ((total + maxPossible/4) / (maxPossible/2)) * 100 with maxPossible fixed at
// planet-count² × the highest base score.  The formula is a calibrated
// heuristic carried over unchanged from the system's scoring history; do not
// re-derive it without product sign-off.
func (s *Scorer) Compute(m *aspect.Matrix, ov *Overlays) Score {
	total := 0.0
	harmonious, challenging := 0, 0
	m.ForEach(func(a, b chart.Body, cell *aspect.Cell) {
		total += s.cellContribution(a, b, cell)
		switch cell.Kind {
		case aspect.Harmonious:
			harmonious++
		case aspect.Challenging:
			challenging++
		}
	})

	if ov != nil {
		for _, placements := range []overlay.Placements{ov.AInB, ov.BInA} {
			for _, b := range overlayBonusBodies {
				if keyHouses[placements[b]] {
					total += overlayBonus
				}
			}
		}
	}

	maxPossible := float64(chart.NumBodies*chart.NumBodies) * maxBaseScore
	overall := clamp((total+maxPossible/4)/(maxPossible/2)*100, 0, 100)

	return Score{
		Overall:        overall,
		Breakdown:      s.breakdown(m),
		Interpretation: interpret(overall, harmonious, challenging),
	}
}

// breakdown recomputes the weighted aspect scoring restricted to each
// thematic body subset, re-centered at 50 and clamped to [0, 100].
func (s *Scorer) breakdown(m *aspect.Matrix) Breakdown {
	totals := make(map[string]float64, len(themeBodies))
	for theme, bodies := range themeBodies {
		member := make(map[chart.Body]bool, len(bodies))
		for _, b := range bodies {
			member[b] = true
		}
		sum := 0.0
		m.ForEach(func(a, b chart.Body, cell *aspect.Cell) {
			if member[a] && member[b] {
				sum += s.cellContribution(a, b, cell)
			}
		})
		totals[theme] = clamp(sum+50, 0, 100)
	}
	return Breakdown{
		Emotional:     totals["emotional"],
		Communication: totals["communication"],
		Physical:      totals["physical"],
		Spiritual:     totals["spiritual"],
		Stability:     totals["stability"],
	}
}

// interpret selects the interpretation text by threshold bands on the overall
// score and appends a clause noting which aspect kind dominates.
func interpret(overall float64, harmonious, challenging int) string {
	var band string
	switch {
	case overall >= 80:
		band = "Exceptional compatibility with a rare depth of mutual understanding"
	case overall >= 65:
		band = "Strong compatibility with natural ease between you"
	case overall >= 50:
		band = "Moderate compatibility with a workable foundation"
	case overall >= 35:
		band = "Some challenges that will ask for patience and conscious effort"
	default:
		band = "Significant challenges; this pairing demands real commitment to thrive"
	}

	switch {
	case harmonious > challenging:
		return band + "; harmonious aspects dominate this connection."
	case challenging > harmonious:
		return band + "; challenging aspects dominate this connection."
	default:
		return band + "; harmonious and challenging aspects are balanced."
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
