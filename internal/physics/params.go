package physics

import (
	"fmt"
	"sort"
)

// Params are the Fenton-Karma membrane constants. Times are in ms, the
// thresholds are dimensionless potentials.
type Params struct {
	TauVPlus   float64 `yaml:"tau_v_plus"`
	TauV1Minus float64 `yaml:"tau_v1_minus"`
	TauV2Minus float64 `yaml:"tau_v2_minus"`
	TauWPlus   float64 `yaml:"tau_w_plus"`
	TauWMinus  float64 `yaml:"tau_w_minus"`
	TauD       float64 `yaml:"tau_d"`
	Tau0       float64 `yaml:"tau_0"`
	TauR       float64 `yaml:"tau_r"`
	TauSi      float64 `yaml:"tau_si"`
	K          float64 `yaml:"k"`
	UcSi       float64 `yaml:"u_csi"`
	Uc         float64 `yaml:"u_c"`
	Uv         float64 `yaml:"u_v"`
}

// Parameter sets from Fenton et al., Chaos 12 (2002).
var ParamSets = map[string]Params{
	"set1": {
		TauVPlus: 3.33, TauV1Minus: 19.6, TauV2Minus: 1000, TauWPlus: 667, TauWMinus: 11,
		TauD: 0.41, Tau0: 8.3, TauR: 50, TauSi: 45, K: 10, UcSi: 0.85, Uc: 0.13, Uv: 0.055,
	},
	"set3": {
		TauVPlus: 3.33, TauV1Minus: 19.6, TauV2Minus: 1250, TauWPlus: 870, TauWMinus: 41,
		TauD: 0.25, Tau0: 12.5, TauR: 33.33, TauSi: 29, K: 10, UcSi: 0.85, Uc: 0.13, Uv: 0.04,
	},
	"set4": {
		TauVPlus: 3.33, TauV1Minus: 15.6, TauV2Minus: 5, TauWPlus: 350, TauWMinus: 80,
		TauD: 0.407, Tau0: 9, TauR: 34, TauSi: 26.5, K: 15, UcSi: 0.45, Uc: 0.15, Uv: 0.04,
	},
}

const DefaultParamSet = "set3"

func GetParamSet(name string) (Params, error) {
	p, ok := ParamSets[name]
	if !ok {
		return Params{}, fmt.Errorf("unknown parameter set: %s (available: %v)", name, ParamSetNames())
	}
	return p, nil
}

func ParamSetNames() []string {
	names := make([]string, 0, len(ParamSets))
	for name := range ParamSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fields maps parameter names to their storage, for dynamo.Configurable.
func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"tau_v_plus":   &p.TauVPlus,
		"tau_v1_minus": &p.TauV1Minus,
		"tau_v2_minus": &p.TauV2Minus,
		"tau_w_plus":   &p.TauWPlus,
		"tau_w_minus":  &p.TauWMinus,
		"tau_d":        &p.TauD,
		"tau_0":        &p.Tau0,
		"tau_r":        &p.TauR,
		"tau_si":       &p.TauSi,
		"k":            &p.K,
		"u_csi":        &p.UcSi,
		"u_c":          &p.Uc,
		"u_v":          &p.Uv,
	}
}
