package synastry

import (
	"github.com/cosmichub/synastry/internal/domain/aspect"
	"github.com/cosmichub/synastry/internal/domain/chart"
)

// Strength classifies how tight a key aspect is.
const (
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
)

// Orb thresholds for the key-aspect extraction used when serializing a
// matrix into an API response.
const (
	keyAspectMaxOrb    = 3.0
	keyAspectStrongOrb = 1.5
)

// KeyAspect is one serialized matrix entry tight enough to surface to
// clients.
type KeyAspect struct {
	BodyA    chart.Body  `json:"body_a"`
	BodyB    chart.Body  `json:"body_b"`
	Aspect   aspect.Name `json:"aspect"`
	Orb      float64     `json:"orb"`
	Kind     aspect.Kind `json:"type"`
	Strength string      `json:"strength"`
}

// KeyAspects extracts the cells with orb ≤ 3.0° in row-major matrix order,
// classifying each as "strong" (orb ≤ 1.5°) or "moderate".
func KeyAspects(m *aspect.Matrix) []KeyAspect {
	out := []KeyAspect{}
	m.ForEach(func(a, b chart.Body, cell *aspect.Cell) {
		if cell.Orb > keyAspectMaxOrb {
			return
		}
		strength := StrengthModerate
		if cell.Orb <= keyAspectStrongOrb {
			strength = StrengthStrong
		}
		out = append(out, KeyAspect{
			BodyA:    a,
			BodyB:    b,
			Aspect:   cell.Aspect,
			Orb:      cell.Orb,
			Kind:     cell.Kind,
			Strength: strength,
		})
	})
	return out
}
