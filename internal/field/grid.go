package field

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Grid is a row-major 2D array of samples. Row 0 is the top row when drawn.
type Grid struct {
	Rows, Cols int
	Data       []float64
}

func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// GridFrom copies a slice of rows into a new Grid. All rows must have the
// same length.
func GridFrom(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return NewGrid(0, 0), nil
	}
	g := NewGrid(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.Cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, r, len(row), g.Cols)
		}
		copy(g.Data[r*g.Cols:], row)
	}
	return g, nil
}

func (g *Grid) At(r, c int) float64     { return g.Data[r*g.Cols+c] }
func (g *Grid) Set(r, c int, v float64) { g.Data[r*g.Cols+c] = v }

func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Rows == o.Rows && g.Cols == o.Cols
}

func (g *Grid) Clone() *Grid {
	c := NewGrid(g.Rows, g.Cols)
	copy(c.Data, g.Data)
	return c
}

// Range returns the smallest and largest sample. An empty grid yields 0, 0.
func (g *Grid) Range() (lo, hi float64) {
	if len(g.Data) == 0 {
		return 0, 0
	}
	return floats.Min(g.Data), floats.Max(g.Data)
}

func (g *Grid) Mean() float64 {
	if len(g.Data) == 0 {
		return 0
	}
	return floats.Sum(g.Data) / float64(len(g.Data))
}

// Map returns a new grid with fn applied to every sample.
func (g *Grid) Map(fn func(float64) float64) *Grid {
	out := NewGrid(g.Rows, g.Cols)
	for i, v := range g.Data {
		out.Data[i] = fn(v)
	}
	return out
}
