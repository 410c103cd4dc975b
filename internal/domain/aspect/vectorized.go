package aspect

import (
	"math"

	"github.com/cosmichub/synastry/internal/domain/chart"
	"github.com/cosmichub/synastry/pkg/errors"
)

// VectorizedBuilder produces the same matrix as ScalarBuilder through flat
// array batching: one pass fills a contiguous 100-element separation array,
// a second pass evaluates every rule against every separation and selects the
// minimum-orb candidate per cell (ties broken by table index).  The layout
// keeps the hot loops branch-light and cache-friendly for batch workloads
// that score many chart pairs per request.
//
// The contract is strict parity with the scalar reference: identical aspect
// names and kinds, orbs equal to within 1e-9, for every cell.  Both builders
// share orbFor and Separation so the floating-point operations are the same
// sequence and the results are in fact bit-identical.
type VectorizedBuilder struct {
	rules RuleSet
}

// NewVectorizedBuilder constructs a VectorizedBuilder over the given rule set.
func NewVectorizedBuilder(rules RuleSet) *VectorizedBuilder {
	return &VectorizedBuilder{rules: rules}
}

// Kind returns BuilderVectorized.
func (b *VectorizedBuilder) Kind() BuilderKind { return BuilderVectorized }

// Build computes the full matrix between chart A (rows) and chart B (columns).
func (b *VectorizedBuilder) Build(a, bb *chart.Chart) (*Matrix, error) {
	if a == nil || bb == nil {
		return nil, errors.New(errors.ErrCodeSynastryBuildFailed, "nil chart")
	}
	lonsA := a.Longitudes()
	lonsB := bb.Longitudes()

	const n = chart.NumBodies

	// Pass 1: all pairwise shortest-arc separations, row-major.
	var seps [n * n]float64
	for i := 0; i < n; i++ {
		base := i * n
		la := lonsA[i]
		for j := 0; j < n; j++ {
			seps[base+j] = Separation(la, lonsB[j])
		}
	}

	// Pass 2: evaluate each rule against the whole separation array, keeping
	// the running minimum orb per cell.  bestIdx starts at -1 (no aspect);
	// the strict less-than comparison preserves table order on exact ties.
	var bestOrb [n * n]float64
	var bestIdx [n * n]int
	for k := range bestIdx {
		bestIdx[k] = -1
		bestOrb[k] = math.Inf(1)
	}
	for idx, r := range b.rules.rules {
		for k := 0; k < n*n; k++ {
			orb := orbFor(seps[k], r.Angle)
			if orb <= r.MaxOrb && orb < bestOrb[k] {
				bestOrb[k] = orb
				bestIdx[k] = idx
			}
		}
	}

	m := &Matrix{}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k := i*n + j
			if bestIdx[k] < 0 {
				continue
			}
			name := b.rules.rules[bestIdx[k]].Name
			m.cells[i][j] = &Cell{Aspect: name, Orb: bestOrb[k], Kind: KindOf(name)}
		}
	}
	return m, nil
}
