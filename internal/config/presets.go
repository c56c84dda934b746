package config

var Presets = map[string]*Config{
	"harmonic": {
		Qubits: 1, Variant: 1, Grid: 15,
		ODE:     ODEConfig{A: 0, B: 1, C: 0},
		Initial: InitialConfig{U0: 0.8, DU0: 0},
		Weight:  10,
		Optimizer: OptimizerConfig{
			Strategy: "neldermead", MaxIterations: 3000,
			Tolerance: 1e-10, StepSize: 0.5,
		},
	},
	"damped": {
		Qubits: 1, Variant: 1, Grid: 15,
		ODE:     ODEConfig{A: 1.5, B: 1, C: 0},
		Initial: InitialConfig{U0: 0.8, DU0: 0},
		Weight:  10,
		Optimizer: OptimizerConfig{
			Strategy: "neldermead", MaxIterations: 3000,
			Tolerance: 1e-10, StepSize: 0.5,
		},
	},
	"forced": {
		Qubits: 1, Variant: 1, Grid: 15,
		ODE:     ODEConfig{A: 0, B: 1, C: 0.3},
		Initial: InitialConfig{U0: 0.5, DU0: 0},
		Weight:  10,
		Optimizer: OptimizerConfig{
			Strategy: "neldermead", MaxIterations: 3000,
			Tolerance: 1e-10, StepSize: 0.5,
		},
	},
	"entangled": {
		Qubits: 2, Variant: 2, Grid: 15,
		ODE:     ODEConfig{A: 0, B: 1, C: 0},
		Initial: InitialConfig{U0: 0.8, DU0: 0},
		Weight:  10,
		Optimizer: OptimizerConfig{
			Strategy: "neldermead", MaxIterations: 5000,
			Tolerance: 1e-10, StepSize: 0.5,
		},
	},
	"coupled": {
		Qubits: 2, Variant: 3, Grid: 15,
		ODE:     ODEConfig{A: 1.5, B: 1, C: 0},
		Initial: InitialConfig{U0: 0.8, DU0: 0},
		Weight:  10,
		Optimizer: OptimizerConfig{
			Strategy: "neldermead", MaxIterations: 5000,
			Tolerance: 1e-10, StepSize: 0.5,
		},
	},
	"time-coupled": {
		Qubits: 2, Variant: 4, Grid: 15,
		ODE:     ODEConfig{A: 1.5, B: 1, C: 0},
		Initial: InitialConfig{U0: 0.8, DU0: 0},
		Weight:  10,
		Optimizer: OptimizerConfig{
			Strategy: "trustregion", MaxIterations: 5000,
			Tolerance: 1e-10, StepSize: 0.5,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
// Callers may mutate the result freely.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
