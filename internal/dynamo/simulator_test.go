package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type decay struct{}

func (decay) Derive(x State, t float64) State { return State{-x[0]} }
func (decay) StateDim() int                   { return 1 }

type blowup struct{}

func (blowup) Derive(x State, t float64) State { return State{math.Inf(1)} }
func (blowup) StateDim() int                   { return 1 }

type euler struct{}

func (euler) Step(dyn System, x State, t, dt float64) State {
	dx := dyn.Derive(x, t)
	return State{x[0] + dt*dx[0]}
}

type countMetric struct {
	count int
	sum   float64
}

func (m *countMetric) Name() string { return "mean" }
func (m *countMetric) Observe(x State, t float64) {
	m.count++
	m.sum += x[0]
}
func (m *countMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *countMetric) Reset() { m.count, m.sum = 0, 0 }

func TestSimulatorRun(t *testing.T) {
	sim := New(decay{}, euler{})

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}

	final := result.States[len(result.States)-1][0]
	if expected := math.Exp(-1.0); math.Abs(final-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, final)
	}
}

func TestSimulatorSampling(t *testing.T) {
	sim := New(decay{}, euler{})

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0, SampleEvery: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.States) != 3 {
		t.Fatalf("expected 3 sampled states, got %d", len(result.States))
	}
	if math.Abs(result.Times[1]-0.5) > 1e-9 || math.Abs(result.Times[2]-1.0) > 1e-9 {
		t.Errorf("unexpected sample times %v", result.Times)
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(decay{}, euler{})

	tests := []struct {
		name string
		x0   State
		cfg  Config
	}{
		{"zero dt", State{1}, Config{Dt: 0, Duration: 1.0}},
		{"negative dt", State{1}, Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", State{1}, Config{Dt: 0.1, Duration: 0}},
		{"wrong dimension", State{1, 2}, Config{Dt: 0.1, Duration: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Run(context.Background(), tt.x0, tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorInvalidState(t *testing.T) {
	sim := New(blowup{}, euler{})
	_, err := sim.Run(context.Background(), State{1}, Config{Dt: 0.1, Duration: 1.0, ValidateState: true})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var simErr *SimulationError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimulationError at step 0, got %v", err)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := New(decay{}, euler{}).Run(ctx, State{1}, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.States) != 1 {
		t.Errorf("expected only the initial state, got %d", len(result.States))
	}
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(decay{}, euler{})
	metric := &countMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, ok := result.Metrics["mean"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	seen := make([]int, 1000)
	ParallelFor(len(seen), 16, func(start, end int) {
		for i := start; i < end; i++ {
			seen[i]++
		}
	})
	for i, n := range seen {
		if n != 1 {
			t.Fatalf("index %d visited %d times", i, n)
		}
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
