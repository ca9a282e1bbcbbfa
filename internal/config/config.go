package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/san-kum/fkviz/internal/dynamo"
	"github.com/san-kum/fkviz/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel       = "fenton_karma"
	DefaultRows        = 128
	DefaultCols        = 128
	DefaultDx          = 0.01
	DefaultDiffusivity = 0.001
	DefaultDt          = 0.05
	DefaultDuration    = 400.0
	DefaultSampleEvery = 100
	DefaultModulus     = 1.0
	DefaultPulse       = 2.0
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Model       string             `yaml:"model"`
	ParamSet    string             `yaml:"param_set"`
	Integrator  string             `yaml:"integrator"`
	Rows        int                `yaml:"rows"`
	Cols        int                `yaml:"cols"`
	Dx          float64            `yaml:"dx"`
	Diffusivity float64            `yaml:"diffusivity"`
	Dt          float64            `yaml:"dt"`
	Duration    float64            `yaml:"duration"`
	SampleEvery int                `yaml:"sample_every"`
	Params      map[string]float64 `yaml:"params,omitempty"`
	Stimuli     []StimulusConfig   `yaml:"stimuli"`
	Plot        PlotConfig         `yaml:"plot"`
}

// StimulusConfig describes one stimulus. Shape is "linear", "rectangular"
// or "circular"; the remaining fields apply to the shapes that use them.
type StimulusConfig struct {
	Shape     string  `yaml:"shape"`
	Direction string  `yaml:"direction,omitempty"`
	Coverage  float64 `yaml:"coverage,omitempty"`
	Row       int     `yaml:"row,omitempty"`
	Col       int     `yaml:"col,omitempty"`
	Height    int     `yaml:"height,omitempty"`
	Width     int     `yaml:"width,omitempty"`
	Radius    float64 `yaml:"radius,omitempty"`
	Modulus   float64 `yaml:"modulus,omitempty"`
	Start     float64 `yaml:"start"`
	Duration  float64 `yaml:"duration,omitempty"`
	Period    float64 `yaml:"period,omitempty"`
}

// PlotConfig holds figure defaults. Unset fields leave each plotting
// function's own defaults in place.
type PlotConfig struct {
	VMin     *float64 `yaml:"vmin,omitempty"`
	VMax     *float64 `yaml:"vmax,omitempty"`
	ColorMap string   `yaml:"cmap,omitempty"`
	Width    float64  `yaml:"width,omitempty"`
	Height   float64  `yaml:"height,omitempty"`
	Rows     int      `yaml:"rows,omitempty"`
	FontSize float64  `yaml:"font_size,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       DefaultModel,
		ParamSet:    physics.DefaultParamSet,
		Integrator:  "euler",
		Rows:        DefaultRows,
		Cols:        DefaultCols,
		Dx:          DefaultDx,
		Diffusivity: DefaultDiffusivity,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		Stimuli: []StimulusConfig{
			{Shape: "linear", Direction: "left", Coverage: 0.05},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Model != DefaultModel:
		return fmt.Errorf("%w: unknown model %q (available: [%s])", ErrInvalidConfig, c.Model, DefaultModel)
	case c.Rows < 1 || c.Cols < 1:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, c.Rows, c.Cols)
	case c.Dx <= 0:
		return fmt.Errorf("%w: dx must be positive", ErrInvalidConfig)
	case c.Dt <= 0 || c.Duration <= 0:
		return fmt.Errorf("%w: dt and duration must be positive", ErrInvalidConfig)
	}
	if _, err := physics.GetParamSet(c.ParamSet); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Build returns the model described by c with its stimuli attached.
func (c *Config) Build() (*physics.FentonKarma, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p, _ := physics.GetParamSet(c.ParamSet)
	fk := physics.NewFentonKarma(c.Rows, c.Cols, p)
	fk.Dx = c.Dx
	fk.Diffusivity = c.Diffusivity
	for k, v := range c.Params {
		if err := fk.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	for i, sc := range c.Stimuli {
		s, err := sc.Build(c.Rows, c.Cols)
		if err != nil {
			return nil, fmt.Errorf("stimulus %d: %w", i, err)
		}
		if err := fk.AddStimulus(s); err != nil {
			return nil, err
		}
	}
	return fk, nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Params = maps.Clone(c.Params)
	out.Stimuli = slices.Clone(c.Stimuli)
	return &out
}

// SimConfig returns the integration settings of c.
func (c *Config) SimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = c.Dt
	cfg.Duration = c.Duration
	cfg.SampleEvery = c.SampleEvery
	return cfg
}

// Build returns the stimulus for a rows x cols grid. A zero center means
// the middle of the grid.
func (s StimulusConfig) Build(rows, cols int) (physics.Stimulus, error) {
	modulus := s.Modulus
	if modulus == 0 {
		modulus = DefaultModulus
	}
	proto := physics.Protocol{Start: s.Start, Duration: s.Duration, Period: s.Period}
	if proto.Duration == 0 {
		proto.Duration = DefaultPulse
	}
	center := physics.Cell{Row: s.Row, Col: s.Col}
	if center == (physics.Cell{}) {
		center = physics.Cell{Row: rows / 2, Col: cols / 2}
	}

	switch s.Shape {
	case "linear", "":
		dir, err := physics.ParseDirection(s.Direction)
		if err != nil {
			return physics.Stimulus{}, err
		}
		coverage := s.Coverage
		if coverage == 0 {
			coverage = 0.05
		}
		return physics.Linear(rows, cols, dir, coverage, modulus, proto), nil
	case "rectangular":
		h, w := s.Height, s.Width
		if h == 0 {
			h = rows / 2
		}
		if w == 0 {
			w = cols / 2
		}
		return physics.Rectangular(rows, cols, center, h, w, modulus, proto), nil
	case "circular":
		r := s.Radius
		if r == 0 {
			r = float64(min(rows, cols)) / 20
		}
		return physics.Circular(rows, cols, center, r, modulus, proto), nil
	default:
		return physics.Stimulus{}, fmt.Errorf("%w: unknown stimulus shape %q", ErrInvalidConfig, s.Shape)
	}
}
