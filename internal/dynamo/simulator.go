package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 for cfg.Duration. The initial state is always
// recorded; afterwards one state every cfg.SampleEvery steps is kept.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}
	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &Result{
		States:  make([]State, 0, steps/every+1),
		Times:   make([]float64, 0, steps/every+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		next := s.integrator.Step(s.dyn, x, t, cfg.Dt)
		if cfg.ValidateState && !next.IsValid() {
			return result, &SimulationError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		x = next
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++

		if (i+1)%every == 0 {
			result.States = append(result.States, x.Clone())
			result.Times = append(result.Times, t)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: state has %d entries, system expects %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	return nil
}
