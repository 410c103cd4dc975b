package aspect

import (
	"math"

	"github.com/cosmichub/synastry/internal/domain/chart"
	"github.com/cosmichub/synastry/pkg/errors"
)

// BuilderKind selects which matrix builder implementation to use.
type BuilderKind string

const (
	BuilderScalar     BuilderKind = "scalar"
	BuilderVectorized BuilderKind = "vectorized"
)

// IsValid checks if the builder kind is valid.
func (k BuilderKind) IsValid() bool {
	return k == BuilderScalar || k == BuilderVectorized
}

// ParseBuilderKind parses a string into a BuilderKind.  The empty string
// selects the vectorized builder, the production default.
func ParseBuilderKind(s string) (BuilderKind, error) {
	switch s {
	case "":
		return BuilderVectorized, nil
	case string(BuilderScalar):
		return BuilderScalar, nil
	case string(BuilderVectorized):
		return BuilderVectorized, nil
	}
	return "", errors.New(errors.ErrCodeSynastryBadBuilder,
		"unknown aspect matrix builder").WithDetail(s)
}

// Builder constructs the 10×10 aspect matrix between two charts.  Both
// implementations are pure functions of their inputs: no side effects, no
// hidden randomness, safe for concurrent use.
type Builder interface {
	Build(a, b *chart.Chart) (*Matrix, error)
	Kind() BuilderKind
}

// NewBuilder is the factory for matrix builders.
func NewBuilder(kind BuilderKind, rules RuleSet) (Builder, error) {
	switch kind {
	case BuilderScalar:
		return &ScalarBuilder{rules: rules}, nil
	case BuilderVectorized:
		return &VectorizedBuilder{rules: rules}, nil
	}
	return nil, errors.New(errors.ErrCodeSynastryBadBuilder,
		"unknown aspect matrix builder").WithDetail(string(kind))
}

// Separation returns the shortest angular arc between two ecliptic
// longitudes.  The result is always in [0, 180] and is symmetric in its
// arguments.
func Separation(lonA, lonB float64) float64 {
	sep := math.Mod(math.Abs(lonA-lonB), 360)
	if sep > 180 {
		sep = 360 - sep
	}
	return sep
}

// orbFor computes the orb of a separation against an exact aspect angle.
// The second term handles the reflex reading of the same angle; for
// separations already reduced to [0, 180] it only matters near 0°/180°.
func orbFor(sep, angle float64) float64 {
	direct := math.Abs(sep - angle)
	reflex := math.Abs(sep - (360 - angle))
	return math.Min(direct, reflex)
}

// ScalarBuilder is the reference implementation: one pair at a time, scanning
// the rule table in declaration order.  Selection is explicit: among rules
// whose orb tolerance admits the separation, the one with the minimum orb
// wins, ties broken by declaration order.  With the canonical table the orb
// windows are disjoint, so this coincides with first-match-wins; the explicit
// rule keeps the scalar/vectorized parity contract valid for custom tables
// with overlapping windows.
type ScalarBuilder struct {
	rules RuleSet
}

// NewScalarBuilder constructs a ScalarBuilder over the given rule set.
func NewScalarBuilder(rules RuleSet) *ScalarBuilder {
	return &ScalarBuilder{rules: rules}
}

// Kind returns BuilderScalar.
func (b *ScalarBuilder) Kind() BuilderKind { return BuilderScalar }

// Build computes the full matrix between chart A (rows) and chart B (columns).
func (b *ScalarBuilder) Build(a, bb *chart.Chart) (*Matrix, error) {
	if a == nil || bb == nil {
		return nil, errors.New(errors.ErrCodeSynastryBuildFailed, "nil chart")
	}
	lonsA := a.Longitudes()
	lonsB := bb.Longitudes()

	m := &Matrix{}
	for i := 0; i < chart.NumBodies; i++ {
		for j := 0; j < chart.NumBodies; j++ {
			m.cells[i][j] = b.match(Separation(lonsA[i], lonsB[j]))
		}
	}
	return m, nil
}

// match scans the rule table in order and returns the admitting rule with the
// minimum orb as a Cell, or nil when no rule matches.  A strict less-than
// comparison keeps declaration order as the tie-break.
func (b *ScalarBuilder) match(sep float64) *Cell {
	best := -1
	bestOrb := 0.0
	for idx, r := range b.rules.rules {
		orb := orbFor(sep, r.Angle)
		if orb <= r.MaxOrb && (best < 0 || orb < bestOrb) {
			best = idx
			bestOrb = orb
		}
	}
	if best < 0 {
		return nil
	}
	name := b.rules.rules[best].Name
	return &Cell{Aspect: name, Orb: bestOrb, Kind: KindOf(name)}
}
