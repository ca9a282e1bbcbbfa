package field

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates grids of different dimensions in one State.
	ErrShapeMismatch = errors.New("field: grid shape mismatch")

	// ErrLayoutMismatch indicates States with different field names in one Sequence.
	ErrLayoutMismatch = errors.New("field: state layout mismatch")

	ErrUnknownField = errors.New("field: unknown field")
)

// State is one snapshot of a simulation: an ordered, named set of grids.
type State struct {
	names  []string
	fields []*Grid
}

// NewState pairs names with grids. All grids must share one shape.
func NewState(names []string, grids ...*Grid) (State, error) {
	if len(names) != len(grids) {
		return State{}, fmt.Errorf("field: %d names for %d grids", len(names), len(grids))
	}
	for i := 1; i < len(grids); i++ {
		if !grids[0].SameShape(grids[i]) {
			return State{}, fmt.Errorf("%w: %q is %dx%d, %q is %dx%d", ErrShapeMismatch,
				names[0], grids[0].Rows, grids[0].Cols, names[i], grids[i].Rows, grids[i].Cols)
		}
	}
	return State{names: append([]string(nil), names...), fields: grids}, nil
}

func (s State) Len() int          { return len(s.fields) }
func (s State) Field(i int) *Grid { return s.fields[i] }
func (s State) Name(i int) string { return s.names[i] }
func (s State) Names() []string   { return append([]string(nil), s.names...) }

func (s State) ByName(name string) (*Grid, bool) {
	for i, n := range s.names {
		if n == name {
			return s.fields[i], true
		}
	}
	return nil, false
}

// Shape returns the common grid dimensions, or 0, 0 for an empty State.
func (s State) Shape() (rows, cols int) {
	if len(s.fields) == 0 {
		return 0, 0
	}
	return s.fields[0].Rows, s.fields[0].Cols
}

// Sequence is an ordered run of States sharing one field layout.
type Sequence []State

// Validate checks that every State carries the same field names as the first.
func (seq Sequence) Validate() error {
	if len(seq) == 0 {
		return nil
	}
	ref := seq[0].names
	for i, s := range seq[1:] {
		if len(s.names) != len(ref) {
			return fmt.Errorf("%w: state %d has %d fields, want %d", ErrLayoutMismatch, i+1, len(s.names), len(ref))
		}
		for j := range ref {
			if s.names[j] != ref[j] {
				return fmt.Errorf("%w: state %d field %d is %q, want %q", ErrLayoutMismatch, i+1, j, s.names[j], ref[j])
			}
		}
	}
	return nil
}

// Select projects the sequence onto a single named field.
func (seq Sequence) Select(name string) ([]*Grid, error) {
	out := make([]*Grid, 0, len(seq))
	for i, s := range seq {
		g, ok := s.ByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q in state %d", ErrUnknownField, name, i)
		}
		out = append(out, g)
	}
	return out, nil
}

// IndexTimes returns 0..n-1 as time labels.
func IndexTimes(n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i)
	}
	return t
}
