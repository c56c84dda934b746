// Package loss turns the expectation constructs into the scalar objective
// the optimizer minimizes: the residual of f'' + a*f' + b*f + c = 0 sampled
// over a time grid, plus weighted penalties pinning f and f' at t=0.
package loss

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/san-kum/qfit/internal/expval"
)

// Observer is notified once per completed loss evaluation. Display and
// progress reporting hang off this hook; the objective itself stays free of
// side effects beyond the session append.
type Observer interface {
	OnEvaluate(eval int, value float64, x []float64)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(eval int, value float64, x []float64)

func (f ObserverFunc) OnEvaluate(eval int, value float64, x []float64) {
	f(eval, value, x)
}

// Config fixes the ODE, the boundary conditions, and the sampling grid.
type Config struct {
	A, B, C  float64 // f'' + A*f' + B*f + C = 0
	U0, DU0  float64 // f(0), f'(0)
	GridSize int     // points over one period [0, 2*pi)
	Weight   float64 // boundary penalty weight, scaled by grid size
	Workers  int     // concurrent grid evaluations; <=0 means GOMAXPROCS
}

// Func evaluates the objective. The full parameter vector x is the circuit's
// trainable weights followed by one additive bias scalar.
type Func struct {
	cfg       Config
	base      *expval.Construct
	d1        *expval.Construct
	d2        *expval.Construct
	grid      []float64
	session   *Session
	observers []Observer
}

// New binds the base construct and its first and second derivative
// constructs to a fixed grid of cfg.GridSize points over [0, 2*pi).
func New(base, d1, d2 *expval.Construct, cfg Config, session *Session) (*Func, error) {
	if cfg.GridSize < 2 {
		return nil, fmt.Errorf("loss: grid size must be >= 2, got %d", cfg.GridSize)
	}
	if cfg.Weight <= 0 {
		return nil, fmt.Errorf("loss: boundary weight must be positive, got %f", cfg.Weight)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	grid := make([]float64, cfg.GridSize)
	for i := range grid {
		grid[i] = float64(i) * 2 * math.Pi / float64(cfg.GridSize)
	}

	return &Func{
		cfg:     cfg,
		base:    base,
		d1:      d1,
		d2:      d2,
		grid:    grid,
		session: session,
	}, nil
}

func (l *Func) AddObserver(o Observer) { l.observers = append(l.observers, o) }

// Dim is the expected length of x: trainable weights plus the bias.
func (l *Func) Dim() int { return l.base.Circuit().Weights + 1 }

// Session exposes the evaluation record.
func (l *Func) Session() *Session { return l.session }

// Evaluate computes the objective at x. Grid points are independent pure
// evaluations and run on a bounded worker pool; the residual sum is taken in
// grid order afterwards so the result does not depend on scheduling.
func (l *Func) Evaluate(x []float64) (float64, error) {
	if len(x) != l.Dim() {
		return 0, &expval.DimensionError{Want: l.Dim(), Got: len(x)}
	}
	weights := x[:len(x)-1]
	bias := x[len(x)-1]

	residuals := make([]float64, len(l.grid))
	errs := make([]error, len(l.grid))

	sem := make(chan struct{}, l.cfg.Workers)
	var wg sync.WaitGroup
	for i, tv := range l.grid {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, tv float64) {
			defer wg.Done()
			defer func() { <-sem }()
			residuals[i], errs[i] = l.residual(tv, weights, bias)
		}(i, tv)
	}
	wg.Wait()

	var total float64
	for i := range residuals {
		if errs[i] != nil {
			return 0, errs[i]
		}
		total += residuals[i]
	}

	f0, err := l.base.Evaluate(0, weights)
	if err != nil {
		return 0, err
	}
	df0, err := l.d1.Evaluate(0, weights)
	if err != nil {
		return 0, err
	}
	f0 += bias

	w := l.cfg.Weight * float64(len(l.grid))
	total += w * (f0 - l.cfg.U0) * (f0 - l.cfg.U0)
	total += w * (df0 - l.cfg.DU0) * (df0 - l.cfg.DU0)

	if l.session != nil {
		l.session.Append(total, x)
		n := l.session.Len()
		for _, o := range l.observers {
			o.OnEvaluate(n, total, x)
		}
	}
	return total, nil
}

// residual is |f'' + a*f' + b*f + c| at one grid point.
func (l *Func) residual(t float64, weights []float64, bias float64) (float64, error) {
	f, err := l.base.Evaluate(t, weights)
	if err != nil {
		return 0, err
	}
	df, err := l.d1.Evaluate(t, weights)
	if err != nil {
		return 0, err
	}
	ddf, err := l.d2.Evaluate(t, weights)
	if err != nil {
		return 0, err
	}
	f += bias
	return math.Abs(ddf + l.cfg.A*df + l.cfg.B*f + l.cfg.C), nil
}
