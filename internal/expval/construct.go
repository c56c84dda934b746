// Package expval evaluates expectation values of parameterized circuits and
// builds their exact time derivatives. A Construct is a linear combination
// of angle-shifted copies of one base circuit; a single evaluator interprets
// the term list, so derivative constructs evaluate through the same path as
// the base.
package expval

import (
	"fmt"
	"log"
	"math"

	"github.com/san-kum/qfit/internal/ansatz"
	"github.com/san-kum/qfit/internal/quantum"
)

// ImagTolerance bounds the imaginary residue tolerated in an expectation
// value before a diagnostic is emitted. The observable is Hermitian so any
// residue is floating-point noise; evaluation proceeds with the real part.
const ImagTolerance = 1e-5

// DimensionError reports a weight vector of the wrong length.
type DimensionError struct {
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("expval: expected %d weights, got %d", e.Want, e.Got)
}

// term is one entry of the linear combination: a constant coefficient,
// weight indices multiplied into it at evaluation time (chain-rule factors
// from differentiation), and per-gate angle offsets.
type term struct {
	coeff  float64
	thetas []int
	shifts []float64
}

// Construct is an expectation-evaluable object: the observable-weighted
// expectation of a base circuit, or any order of exact t-derivative of it.
// Building one is cheap relative to evaluation but done once; evaluation is
// pure and safe to call concurrently.
type Construct struct {
	circuit *ansatz.Circuit
	terms   []term
	order   int

	// Warn receives non-fatal numerical diagnostics. Defaults to log.Printf.
	Warn func(format string, args ...any)
}

// New wraps a circuit as the zeroth-order construct: a single unshifted term
// with unit coefficient.
func New(c *ansatz.Circuit) *Construct {
	return &Construct{
		circuit: c,
		terms:   []term{{coeff: 1, shifts: make([]float64, len(c.Gates))}},
		Warn:    log.Printf,
	}
}

// Circuit returns the underlying base circuit.
func (e *Construct) Circuit() *ansatz.Circuit { return e.circuit }

// Order is the derivative order of the construct (0 for the base).
func (e *Construct) Order() int { return e.order }

// Terms reports the size of the linear combination.
func (e *Construct) Terms() int { return len(e.terms) }

// Evaluate computes the construct's value at concrete (t, weights) by
// simulating every shifted circuit copy from |0...0> and summing the
// observable expectations in term order. The weights slice must have exactly
// the circuit's trainable length (including the observable coefficient);
// anything else is a DimensionError.
func (e *Construct) Evaluate(t float64, weights []float64) (float64, error) {
	if len(weights) != e.circuit.Weights {
		return 0, &DimensionError{Want: e.circuit.Weights, Got: len(weights)}
	}

	coefIdx := e.circuit.CoefficientIndex()
	var sum complex128
	for _, tm := range e.terms {
		factor := tm.coeff * weights[coefIdx]
		for _, wi := range tm.thetas {
			factor *= weights[wi]
		}
		if factor == 0 {
			continue
		}
		sum += complex(factor, 0) * e.expectation(t, weights, tm.shifts)
	}

	if math.Abs(imag(sum)) > ImagTolerance && e.Warn != nil {
		e.Warn("expval: discarding imaginary residue %g at t=%f (order %d)",
			imag(sum), t, e.order)
	}
	return real(sum), nil
}

// expectation simulates one shifted copy and returns <psi|Z...Z|psi>.
func (e *Construct) expectation(t float64, weights, shifts []float64) complex128 {
	s := quantum.New(e.circuit.Qubits)
	for gi, g := range e.circuit.Gates {
		angle := g.Angle.Value(t, weights) + shifts[gi]
		switch g.Kind {
		case ansatz.GateRY:
			s.RY(g.Target, angle)
		case ansatz.GateCZ:
			s.CZ(g.Control, g.Target)
		case ansatz.GateRZZ:
			s.RZZ(g.Control, g.Target, angle)
		}
	}
	return s.ExpectZString()
}
