package field

import (
	"errors"
	"testing"
)

func TestNewStateShapeMismatch(t *testing.T) {
	_, err := NewState([]string{"u", "v"}, NewGrid(4, 4), NewGrid(4, 5))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestStateByName(t *testing.T) {
	u, v := NewGrid(2, 2), NewGrid(2, 2)
	v.Set(1, 1, 3)
	s, err := NewState([]string{"u", "v"}, u, v)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 fields, got %d", s.Len())
	}
	g, ok := s.ByName("v")
	if !ok || g.At(1, 1) != 3 {
		t.Errorf("ByName(v) returned wrong grid")
	}
	if _, ok := s.ByName("w"); ok {
		t.Error("expected w to be missing")
	}
	rows, cols := s.Shape()
	if rows != 2 || cols != 2 {
		t.Errorf("expected 2x2, got %dx%d", rows, cols)
	}
}

func TestSequenceSelect(t *testing.T) {
	mk := func(val float64) State {
		g := NewGrid(1, 1)
		g.Data[0] = val
		s, _ := NewState([]string{"u"}, g)
		return s
	}
	seq := Sequence{mk(1), mk(2), mk(3)}
	if err := seq.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	frames, err := seq.Select("u")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for i, g := range frames {
		if g.Data[0] != float64(i+1) {
			t.Errorf("frame %d: got %f", i, g.Data[0])
		}
	}
	if _, err := seq.Select("w"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestSequenceValidateLayout(t *testing.T) {
	a, _ := NewState([]string{"u"}, NewGrid(1, 1))
	b, _ := NewState([]string{"v"}, NewGrid(1, 1))
	if err := (Sequence{a, b}).Validate(); !errors.Is(err, ErrLayoutMismatch) {
		t.Errorf("expected ErrLayoutMismatch, got %v", err)
	}
}
