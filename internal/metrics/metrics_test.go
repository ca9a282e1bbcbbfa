package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/fkviz/internal/dynamo"
	"github.com/san-kum/fkviz/internal/physics"
)

func TestActivationPeak(t *testing.T) {
	m := NewActivation(4, 0.5)
	// u block first, gates after it
	m.Observe(dynamo.State{0, 0, 0, 0, 1, 1, 1, 1}, 0)
	m.Observe(dynamo.State{1, 1, 1, 0, 0, 0, 0, 0}, 1)
	m.Observe(dynamo.State{1, 0, 0, 0, 0, 0, 0, 0}, 2)

	if got := m.Value(); got != 0.75 {
		t.Errorf("expected peak 0.75, got %f", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("reset did not clear peak")
	}
}

func TestMeanPotential(t *testing.T) {
	m := NewMeanPotential(2)
	if m.Value() != physics.RestingPotential {
		t.Errorf("expected resting potential before observations, got %f", m.Value())
	}
	m.Observe(dynamo.State{0, 1, 9, 9}, 0)
	expected := physics.ToMillivolts(0.5)
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected %f, got %f", expected, m.Value())
	}

	// averaged over observations, gates ignored
	m.Observe(dynamo.State{1, 1, 0, 0}, 1)
	expected = (physics.ToMillivolts(0.5) + physics.ToMillivolts(1)) / 2
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected %f after two samples, got %f", expected, m.Value())
	}

	// an empty state is skipped
	m.Observe(dynamo.State{}, 2)
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("empty state changed the mean to %f", m.Value())
	}
}

func TestStability(t *testing.T) {
	s := NewStability(2, 0.5)
	s.Observe(dynamo.State{0.2, 1.1, 5}, 0)
	s.Observe(dynamo.State{0.2, 1.7, 0}, 1)
	if got := s.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestDefault(t *testing.T) {
	ms := Default(10)
	names := map[string]bool{}
	for _, m := range ms {
		names[m.Name()] = true
	}
	for _, want := range []string{"peak_activation", "mean_potential_mv", "stability"} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}
