package config

import "sort"

var Presets = map[string]*Config{
	// A single planar wave travelling left to right.
	"planar": {
		Model: DefaultModel, ParamSet: "set3", Integrator: "euler",
		Rows: 128, Cols: 128, Dx: DefaultDx, Diffusivity: DefaultDiffusivity,
		Dt: 0.05, Duration: 400, SampleEvery: 100,
		Stimuli: []StimulusConfig{
			{Shape: "linear", Direction: "left", Coverage: 0.05, Duration: 2},
		},
	},
	// Cross-field S1-S2: the second stimulus lands on the refractory tail
	// of the first wave and curls into a spiral.
	"spiral": {
		Model: DefaultModel, ParamSet: "set3", Integrator: "euler",
		Rows: 128, Cols: 128, Dx: DefaultDx, Diffusivity: DefaultDiffusivity,
		Dt: 0.05, Duration: 1000, SampleEvery: 200,
		Stimuli: []StimulusConfig{
			{Shape: "linear", Direction: "left", Coverage: 0.05, Duration: 2},
			{Shape: "rectangular", Row: 96, Col: 32, Height: 64, Width: 64, Start: 300, Duration: 2},
		},
	},
	// A central pacemaker firing every 300 ms.
	"focal": {
		Model: DefaultModel, ParamSet: "set1", Integrator: "euler",
		Rows: 96, Cols: 96, Dx: DefaultDx, Diffusivity: DefaultDiffusivity,
		Dt: 0.05, Duration: 900, SampleEvery: 200,
		Stimuli: []StimulusConfig{
			{Shape: "circular", Radius: 5, Duration: 2, Period: 300},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
