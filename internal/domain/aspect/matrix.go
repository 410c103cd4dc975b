package aspect

import (
	"fmt"

	"github.com/cosmichub/synastry/internal/domain/chart"
)

// Cell is one populated entry in an aspect matrix: the aspect formed between
// a chart-A planet and a chart-B planet, the orb (absolute deviation from the
// exact angle), and the aspect's kind.
type Cell struct {
	Aspect Name    `json:"aspect"`
	Orb    float64 `json:"orb"`
	Kind   Kind    `json:"type"`
}

func (c *Cell) String() string {
	return fmt.Sprintf("Cell{aspect=%s, orb=%.4f, type=%s}", c.Aspect, c.Orb, c.Kind)
}

// Matrix is the 10×10 grid of aspect cells between two charts.  Rows index
// chart-A bodies, columns chart-B bodies, both in canonical order.  A nil
// cell means no aspect formed within any orb, which is a normal outcome, not
// an error.  The matrix is read-only once built.
type Matrix struct {
	cells [chart.NumBodies][chart.NumBodies]*Cell
}

// At returns the cell for (chart-A body i, chart-B body j), or nil when no
// aspect formed.  Indexes outside [0, NumBodies) return nil.
func (m *Matrix) At(i, j int) *Cell {
	if i < 0 || i >= chart.NumBodies || j < 0 || j >= chart.NumBodies {
		return nil
	}
	return m.cells[i][j]
}

// AtBodies returns the cell for the named body pair, or nil when either name
// is not canonical or no aspect formed.
func (m *Matrix) AtBodies(a, b chart.Body) *Cell {
	i, ok := chart.Index(a)
	if !ok {
		return nil
	}
	j, ok := chart.Index(b)
	if !ok {
		return nil
	}
	return m.cells[i][j]
}

// Count returns the number of populated cells.
func (m *Matrix) Count() int {
	n := 0
	for i := range m.cells {
		for j := range m.cells[i] {
			if m.cells[i][j] != nil {
				n++
			}
		}
	}
	return n
}

// ForEach invokes fn for every populated cell in row-major order.
func (m *Matrix) ForEach(fn func(a, b chart.Body, cell *Cell)) {
	for i := range m.cells {
		for j := range m.cells[i] {
			if m.cells[i][j] != nil {
				fn(chart.Bodies[i], chart.Bodies[j], m.cells[i][j])
			}
		}
	}
}
