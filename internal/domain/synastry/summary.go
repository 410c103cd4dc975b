package synastry

import (
	"github.com/cosmichub/synastry/internal/domain/aspect"
	"github.com/cosmichub/synastry/internal/domain/chart"
)

// tightOrb is the orb threshold below which an aspect is considered tight
// enough to drive the qualitative summary.
const tightOrb = 2.0

// Summary is the qualitative synastry reading: rule-derived themes,
// strengths, challenges, and advice.  Deterministic given the same matrix.
type Summary struct {
	KeyThemes  []string `json:"key_themes"`
	Strengths  []string `json:"strengths"`
	Challenges []string `json:"challenges"`
	Advice     []string `json:"advice"`
}

var genericAdvice = []string{
	"Communicate openly about your differences rather than letting them accumulate.",
	"Make room for each other's individual growth alongside the relationship.",
	"Revisit what drew you together when day-to-day friction builds up.",
}

// luminaryBodies and romanticBodies define the pair memberships that trigger
// the two named themes.
var (
	luminaryBodies = map[chart.Body]bool{chart.Sun: true, chart.Moon: true}
	romanticBodies = map[chart.Body]bool{chart.Venus: true, chart.Mars: true}
)

// Summarize derives the qualitative summary from the matrix.  Only tight
// aspects (orb ≤ 2.0°) participate; looser contacts are deliberately ignored
// so the summary reflects the strongest dynamics.
func Summarize(m *aspect.Matrix, _ *Overlays) Summary {
	var (
		soulConnection    bool
		romanticChemistry bool
		harmonious        int
		challenging       int
	)

	m.ForEach(func(a, b chart.Body, cell *aspect.Cell) {
		if cell.Orb > tightOrb {
			return
		}
		if luminaryBodies[a] && luminaryBodies[b] {
			soulConnection = true
		}
		if romanticBodies[a] && romanticBodies[b] {
			romanticChemistry = true
		}
		switch cell.Kind {
		case aspect.Harmonious:
			harmonious++
		case aspect.Challenging:
			challenging++
		}
	})

	s := Summary{
		KeyThemes:  []string{},
		Strengths:  []string{},
		Challenges: []string{},
	}

	if soulConnection {
		s.KeyThemes = append(s.KeyThemes, "Soul Connection")
		s.Strengths = append(s.Strengths, "A deep emotional bond flows through your Sun-Moon contacts.")
	}
	if romanticChemistry {
		s.KeyThemes = append(s.KeyThemes, "Romantic Chemistry")
		s.Strengths = append(s.Strengths, "Strong physical attraction shows in your Venus-Mars contacts.")
	}
	if challenging > harmonious {
		s.Challenges = append(s.Challenges, "The tightest contacts between your charts create friction that requires work.")
		s.Advice = append(s.Advice, "Treat recurring conflicts as growth points rather than incompatibilities.")
	}

	s.Advice = append(s.Advice, genericAdvice...)
	return s
}
