package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/san-kum/fkviz/internal/config"
	"github.com/san-kum/fkviz/internal/dynamo"
	"github.com/san-kum/fkviz/internal/integrators"
	"github.com/san-kum/fkviz/internal/metrics"
	"github.com/san-kum/fkviz/internal/storage"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScenario = errors.New("automation: scenario has no runs")
	ErrEmptySweep    = errors.New("automation: sweep needs at least one step")
)

// Outcome describes one stored run.
type Outcome struct {
	RunID   string
	Frames  int
	Steps   int
	Elapsed time.Duration
	Metrics map[string]float64
}

// Runner simulates configurations and stores the sampled frames.
type Runner struct {
	Store *storage.Store
	// Logf reports progress. Nil is silent.
	Logf func(format string, args ...any)
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// Run builds cfg, simulates it and saves the result. A run cut short by ctx
// or by a diverging state is still saved when it produced frames, and the
// interruption is returned next to the outcome.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (Outcome, error) {
	fk, err := cfg.Build()
	if err != nil {
		return Outcome{}, err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return Outcome{}, err
	}
	if cfg.Integrator != "rk4" && cfg.Dt > fk.MaxStableDt() {
		r.logf("warning: dt %.4g exceeds the diffusion stability limit %.4g", cfg.Dt, fk.MaxStableDt())
	}

	sim := dynamo.New(fk, integ)
	for _, m := range metrics.Default(cfg.Rows * cfg.Cols) {
		sim.AddMetric(m)
	}

	r.logf("running %s (%s) on %dx%d for %.0fms...", cfg.Model, cfg.ParamSet, cfg.Rows, cfg.Cols, cfg.Duration)
	start := time.Now()
	result, runErr := sim.Run(ctx, fk.RestingState(), cfg.SimConfig())
	if result == nil || len(result.States) == 0 {
		return Outcome{}, runErr
	}
	if runErr != nil {
		r.logf("stopped early: %v", runErr)
	}
	elapsed := time.Since(start)

	seq, err := fk.UnpackAll(result.States)
	if err != nil {
		return Outcome{}, err
	}
	runID, err := r.Store.Save(storage.RunInfo{
		Model:       cfg.Model,
		ParamSet:    cfg.ParamSet,
		Integrator:  cfg.Integrator,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		SampleEvery: cfg.SampleEvery,
		Params:      fk.GetParams(),
	}, seq, result.Times, result.Metrics)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		RunID:   runID,
		Frames:  len(seq),
		Steps:   result.StepsTaken,
		Elapsed: elapsed,
		Metrics: result.Metrics,
	}, runErr
}

// Scenario is a scripted batch of runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset or a config file (defaults otherwise)
// and applies the non-zero overrides.
type ScenarioRun struct {
	Preset   string             `yaml:"preset"`
	Config   string             `yaml:"config"`
	ParamSet string             `yaml:"param_set"`
	Dt       float64            `yaml:"dt"`
	Duration float64            `yaml:"duration"`
	Params   map[string]float64 `yaml:"params"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Resolve returns the configuration of s. Relative config paths are taken
// from dir.
func (s ScenarioRun) Resolve(dir string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case s.Config != "":
		path := s.Config
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", s.Preset, config.ListPresets())
		}
	}

	if s.ParamSet != "" {
		cfg.ParamSet = s.ParamSet
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if len(s.Params) > 0 && cfg.Params == nil {
		cfg.Params = make(map[string]float64, len(s.Params))
	}
	for k, v := range s.Params {
		cfg.Params[k] = v
	}
	return cfg, cfg.Validate()
}

// RunScenario executes every run of sc in order and stops at the first
// failure, returning the outcomes collected so far.
func (r *Runner) RunScenario(ctx context.Context, sc *Scenario, dir string) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(sc.Runs))
	for i, run := range sc.Runs {
		r.logf("scenario %s: run %d/%d", sc.Name, i+1, len(sc.Runs))
		cfg, err := run.Resolve(dir)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		out, err := r.Run(ctx, cfg)
		if out.RunID != "" {
			outcomes = append(outcomes, out)
		}
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
	}
	return outcomes, nil
}

// Sweep varies one model parameter of Base over Steps evenly spaced values
// from Min to Max.
type Sweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	Steps    int
}

func (s Sweep) Values() []float64 {
	if s.Steps < 1 {
		return nil
	}
	if s.Steps == 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	values := make([]float64, s.Steps)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	values[s.Steps-1] = s.Max
	return values
}

type SweepResult struct {
	Value float64
	Outcome
}

// RunSweep stores one run per value. Base is left untouched.
func (r *Runner) RunSweep(ctx context.Context, s Sweep) ([]SweepResult, error) {
	values := s.Values()
	if len(values) == 0 {
		return nil, ErrEmptySweep
	}

	results := make([]SweepResult, 0, len(values))
	for i, v := range values {
		cfg := s.Base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, 1)
		}
		cfg.Params[s.Param] = v

		r.logf("sweep %d/%d: %s=%.4g", i+1, len(values), s.Param, v)
		out, err := r.Run(ctx, cfg)
		if out.RunID != "" {
			results = append(results, SweepResult{Value: v, Outcome: out})
		}
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", s.Param, v, err)
		}
	}
	return results, nil
}
