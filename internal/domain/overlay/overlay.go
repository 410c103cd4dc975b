// Package overlay determines house overlays for synastry: which house of one
// chart each planet of the other chart falls into, using the target chart's
// cusp spans.  A full synastry reading runs the analysis in both directions.
package overlay

import (
	"github.com/cosmichub/synastry/internal/domain/chart"
	"github.com/cosmichub/synastry/pkg/errors"
)

// Placements maps each canonical body to the house number (1..12) it
// occupies in the target chart's house framework.
type Placements map[chart.Body]int

// Analyze places every planet of the source chart into the houses of the
// target chart.  House i+1 spans [cusp[i], cusp[(i+1) mod 12]); when the span
// crosses 0°/360° it covers [cusp[i], 360) ∪ [0, cusp[(i+1) mod 12]).  The
// first house whose span contains the planet wins; with twelve valid cusps
// every longitude lands somewhere, and house 1 remains the defensive
// fallback.
func Analyze(source, target *chart.Chart) (Placements, error) {
	if source == nil || target == nil {
		return nil, errors.New(errors.ErrCodeChartBadCusps, "nil chart")
	}
	cusps := target.Cusps()

	out := make(Placements, chart.NumBodies)
	for _, b := range chart.Bodies {
		lon, _ := source.Longitude(b)
		out[b] = houseOf(lon, cusps)
	}
	return out, nil
}

// houseOf scans the cusp spans in house order and returns the first house
// containing the longitude.
func houseOf(lon float64, cusps [chart.NumHouses]float64) int {
	for i := 0; i < chart.NumHouses; i++ {
		lo := cusps[i]
		hi := cusps[(i+1)%chart.NumHouses]
		if lo <= hi {
			if lon >= lo && lon < hi {
				return i + 1
			}
			continue
		}
		// Span wraps past 0°.
		if lon >= lo || lon < hi {
			return i + 1
		}
	}
	return 1
}
