package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings taken from the environment.
type Env struct {
	DataDir string `env:"FKVIZ_DATA" envDefault:"data"`
	Backend string `env:"FKVIZ_BACKEND" envDefault:"png"`
	Theme   string `env:"FKVIZ_THEME" envDefault:"magma"`
	Config  string `env:"FKVIZ_CONFIG"`
}

func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
