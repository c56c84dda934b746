// Package train wires the circuit, its derivative constructs, the loss, and
// a minimizer into one run, and exposes the trained model as a closure.
package train

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/qfit/internal/ansatz"
	"github.com/san-kum/qfit/internal/expval"
	"github.com/san-kum/qfit/internal/loss"
	"github.com/san-kum/qfit/internal/optimize"
)

// Config enumerates one full training run.
type Config struct {
	Qubits  int
	Variant ansatz.Variant

	GridSize int
	A, B, C  float64
	U0, DU0  float64
	Weight   float64 // boundary penalty weight
	Workers  int

	Seed          int64
	Optimizer     string // optimize strategy name
	MaxIterations int
	Tolerance     float64
	StepSize      float64
}

func (c Config) withDefaults() Config {
	if c.GridSize == 0 {
		c.GridSize = 15
	}
	if c.Weight == 0 {
		c.Weight = 10
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 1000
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-4
	}
	if c.StepSize == 0 {
		c.StepSize = 0.5
	}
	return c
}

// Result of a run. BestX is the lowest-loss parameter vector the optimizer
// evaluated; LastX is the final point it visited, kept because resuming a
// run continues from there.
type Result struct {
	BestX       []float64
	BestLoss    float64
	LastX       []float64
	History     []float64
	Evaluations int
	Status      optimize.Status

	// Predict evaluates the trained model f(t).
	Predict func(t float64) float64
}

// Sample evaluates Predict over the given times.
func (r *Result) Sample(ts []float64) []float64 {
	out := make([]float64, len(ts))
	for i, tv := range ts {
		out[i] = r.Predict(tv)
	}
	return out
}

// Trainer owns one configured run and its observers.
type Trainer struct {
	cfg       Config
	observers []loss.Observer
}

func New(cfg Config) *Trainer {
	return &Trainer{cfg: cfg.withDefaults()}
}

// AddObserver registers a per-evaluation callback (progress displays, live
// monitors). Observers never affect the returned result.
func (tr *Trainer) AddObserver(o loss.Observer) {
	tr.observers = append(tr.observers, o)
}

// Run builds everything and minimizes. Configuration problems are returned
// as errors; non-convergence is not an error and surfaces in Result.Status.
func (tr *Trainer) Run(ctx context.Context) (*Result, error) {
	cfg := tr.cfg

	circuit, err := ansatz.Build(cfg.Qubits, cfg.Variant)
	if err != nil {
		return nil, err
	}

	base := expval.New(circuit)
	d1 := base.Differentiate()
	d2 := d1.Differentiate()

	session := loss.NewSession()
	lf, err := loss.New(base, d1, d2, loss.Config{
		A: cfg.A, B: cfg.B, C: cfg.C,
		U0: cfg.U0, DU0: cfg.DU0,
		GridSize: cfg.GridSize,
		Weight:   cfg.Weight,
		Workers:  cfg.Workers,
	}, session)
	if err != nil {
		return nil, err
	}
	for _, o := range tr.observers {
		lf.AddObserver(o)
	}

	minimizer, err := optimize.New(cfg.Optimizer, optimize.Config{
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
		StepSize:      cfg.StepSize,
	})
	if err != nil {
		return nil, err
	}

	// small random weights plus the trailing bias slot
	rng := rand.New(rand.NewSource(cfg.Seed))
	x0 := make([]float64, lf.Dim())
	for i := range x0 {
		x0[i] = rng.Float64() * 0.1
	}

	objective := func(x []float64) float64 {
		v, err := lf.Evaluate(x)
		if err != nil {
			// cannot happen for optimizer-proposed points of the right
			// dimension; poison the value rather than abort the run
			return math.Inf(1)
		}
		return v
	}

	res, err := minimizer.Minimize(ctx, objective, x0)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	return &Result{
		BestX:       res.X,
		BestLoss:    res.Loss,
		LastX:       res.LastX,
		History:     session.Losses(),
		Evaluations: res.Evaluations,
		Status:      res.Status,
		Predict:     Predictor(base, res.X),
	}, nil
}

// Predictor closes over a base construct and a full parameter vector
// (weights plus bias) to give the scalar model f(t).
func Predictor(base *expval.Construct, x []float64) func(t float64) float64 {
	weights := make([]float64, len(x)-1)
	copy(weights, x[:len(x)-1])
	bias := x[len(x)-1]
	return func(t float64) float64 {
		v, err := base.Evaluate(t, weights)
		if err != nil {
			return math.NaN()
		}
		return v + bias
	}
}
