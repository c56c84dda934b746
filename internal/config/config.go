package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/qfit/internal/ansatz"
	"github.com/san-kum/qfit/internal/train"
)

const (
	DefaultQubits    = 1
	DefaultVariant   = 1
	DefaultGrid      = 15
	DefaultWeight    = 10.0
	DefaultMaxIter   = 3000
	DefaultTolerance = 1e-8
	DefaultStepSize  = 0.5
)

type Config struct {
	Qubits    int             `yaml:"qubits"`
	Variant   int             `yaml:"variant"`
	Grid      int             `yaml:"grid"`
	ODE       ODEConfig       `yaml:"ode"`
	Initial   InitialConfig   `yaml:"initial"`
	Weight    float64         `yaml:"boundary_weight"`
	Seed      int64           `yaml:"seed"`
	Workers   int             `yaml:"workers"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

// ODEConfig holds the coefficients of f'' + a*f' + b*f + c = 0.
type ODEConfig struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
}

type InitialConfig struct {
	U0  float64 `yaml:"u0"`
	DU0 float64 `yaml:"du0"`
}

type OptimizerConfig struct {
	Strategy      string  `yaml:"strategy"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
	StepSize      float64 `yaml:"step_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Qubits:  DefaultQubits,
		Variant: DefaultVariant,
		Grid:    DefaultGrid,
		ODE:     ODEConfig{A: 0, B: 1, C: 0},
		Initial: InitialConfig{U0: 0.8, DU0: 0},
		Weight:  DefaultWeight,
		Optimizer: OptimizerConfig{
			Strategy:      "neldermead",
			MaxIterations: DefaultMaxIter,
			Tolerance:     DefaultTolerance,
			StepSize:      DefaultStepSize,
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
		return nil, err
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

// TrainConfig maps the file representation onto the training loop's config.
func (c *Config) TrainConfig() train.Config {
	return train.Config{
		Qubits:        c.Qubits,
		Variant:       ansatz.Variant(c.Variant),
		GridSize:      c.Grid,
		A:             c.ODE.A,
		B:             c.ODE.B,
		C:             c.ODE.C,
		U0:            c.Initial.U0,
		DU0:           c.Initial.DU0,
		Weight:        c.Weight,
		Workers:       c.Workers,
		Seed:          c.Seed,
		Optimizer:     c.Optimizer.Strategy,
		MaxIterations: c.Optimizer.MaxIterations,
		Tolerance:     c.Optimizer.Tolerance,
		StepSize:      c.Optimizer.StepSize,
	}
}
