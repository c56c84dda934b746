// Package optimize provides derivative-free minimizers that work from
// scalar objective feedback only. Strategies are interchangeable behind the
// Minimizer interface and are selected by name, mirroring how models and
// integrators are registered elsewhere in the project.
package optimize

import (
	"context"
	"fmt"
	"math"
)

// Objective maps a parameter vector to the scalar being minimized.
type Objective func(x []float64) float64

// Status describes how a minimization run ended.
type Status int

const (
	Converged Status = iota
	MaxIterations
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterations:
		return "max-iterations"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is never an error: budget exhaustion and cancellation still return
// the best point evaluated so far.
type Result struct {
	X           []float64 // lowest-loss point evaluated
	Loss        float64
	LastX       []float64 // most recent evaluation, which may be worse
	LastLoss    float64
	Iterations  int
	Evaluations int
	Status      Status
}

// Config holds the hyperparameters shared by all strategies.
type Config struct {
	MaxIterations int     // iteration budget
	Tolerance     float64 // convergence tolerance on loss improvement
	StepSize      float64 // initial trust-region radius / simplex edge
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 1000
	}
	if c.Tolerance <= 0 {
		c.Tolerance = 1e-6
	}
	if c.StepSize <= 0 {
		c.StepSize = 0.5
	}
	return c
}

// Minimizer iteratively proposes candidates and terminates on convergence,
// budget exhaustion, or context cancellation, always yielding a usable
// result.
type Minimizer interface {
	Minimize(ctx context.Context, obj Objective, x0 []float64) (*Result, error)
}

// New returns the named strategy. Known names: "neldermead", "trustregion".
func New(name string, cfg Config) (Minimizer, error) {
	switch name {
	case "", "neldermead":
		return NewNelderMead(cfg), nil
	case "trustregion":
		return NewTrustRegion(cfg), nil
	default:
		return nil, fmt.Errorf("optimize: unknown strategy %q", name)
	}
}

// tracker accumulates the best/last bookkeeping every strategy shares.
type tracker struct {
	best     []float64
	bestLoss float64
	last     []float64
	lastLoss float64
	evals    int
}

func newTracker() *tracker {
	return &tracker{bestLoss: math.Inf(1)}
}

func (tr *tracker) eval(obj Objective, x []float64) float64 {
	v := obj(x)
	tr.evals++
	tr.last = cloneVec(x)
	tr.lastLoss = v
	if v < tr.bestLoss {
		tr.best = cloneVec(x)
		tr.bestLoss = v
	}
	return v
}

func (tr *tracker) result(iters int, status Status) *Result {
	return &Result{
		X:           tr.best,
		Loss:        tr.bestLoss,
		LastX:       tr.last,
		LastLoss:    tr.lastLoss,
		Iterations:  iters,
		Evaluations: tr.evals,
		Status:      status,
	}
}

func cloneVec(x []float64) []float64 {
	c := make([]float64, len(x))
	copy(c, x)
	return c
}
