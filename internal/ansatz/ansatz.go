// Package ansatz describes parameterized evolution circuits whose gate
// angles are affine or bilinear combinations of a time variable t and a
// trainable weight vector. The description is purely symbolic; evaluation
// against a statevector happens in expval.
package ansatz

import "fmt"

// Variant selects the two-qubit coupling topology of the circuit.
type Variant int

const (
	// VariantRotation uses per-qubit rotations only.
	VariantRotation Variant = 1
	// VariantEntangled inserts fixed CZ entanglers between neighbors.
	VariantEntangled Variant = 2
	// VariantCoupled inserts RZZ couplings with trainable constant angles.
	VariantCoupled Variant = 3
	// VariantTimeCoupled inserts RZZ couplings with angle t*weight.
	VariantTimeCoupled Variant = 4
)

func (v Variant) String() string {
	switch v {
	case VariantRotation:
		return "rotation"
	case VariantEntangled:
		return "entangled"
	case VariantCoupled:
		return "coupled"
	case VariantTimeCoupled:
		return "time-coupled"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

type GateKind int

const (
	GateRY GateKind = iota
	GateCZ
	GateRZZ
)

// Angle is an affine expression in t and the weight vector:
//
//	value = w[TWeight]*t + w[Bias] + Offset
//
// with either index optionally absent (-1). Offset is zero for freshly
// built circuits; derivative constructs use it to shift gate angles.
type Angle struct {
	TWeight int
	Bias    int
	Offset  float64
}

// Value evaluates the angle at concrete t and weights.
func (a Angle) Value(t float64, w []float64) float64 {
	v := a.Offset
	if a.TWeight >= 0 {
		v += w[a.TWeight] * t
	}
	if a.Bias >= 0 {
		v += w[a.Bias]
	}
	return v
}

// DependsOnT reports whether the angle varies with the time variable.
func (a Angle) DependsOnT() bool { return a.TWeight >= 0 }

// Gate is one elementary operation. Control is -1 for single-qubit gates.
// CZ gates carry a zero Angle.
type Gate struct {
	Kind    GateKind
	Target  int
	Control int
	Angle   Angle
}

// Circuit is an immutable gate sequence for a given (n, variant), together
// with the number of trainable weights it expects. The last weight is the
// observable coefficient and never appears in a gate angle.
type Circuit struct {
	Qubits  int
	Variant Variant
	Gates   []Gate
	Weights int
}

// CoefficientIndex is the weight slot scaling the Z-string observable.
func (c *Circuit) CoefficientIndex() int { return c.Weights - 1 }

// ConfigurationError reports an invalid circuit configuration. It is raised
// at build time, never during evaluation.
type ConfigurationError struct {
	Qubits  int
	Variant Variant
}

func (e *ConfigurationError) Error() string {
	if e.Qubits < 1 {
		return fmt.Sprintf("ansatz: qubit count must be >= 1, got %d", e.Qubits)
	}
	return fmt.Sprintf("ansatz: unsupported variant %d", int(e.Variant))
}

// WeightCount returns the trainable weight count for (n, variant), including
// the trailing observable coefficient: 2n+1 for variants 1 and 2, 3n for the
// coupled variants (2n rotation weights, n-1 coupling angles, 1 coefficient).
func WeightCount(n int, v Variant) (int, error) {
	if n < 1 || v < VariantRotation || v > VariantTimeCoupled {
		return 0, &ConfigurationError{Qubits: n, Variant: v}
	}
	switch v {
	case VariantCoupled, VariantTimeCoupled:
		return 3 * n, nil
	default:
		return 2*n + 1, nil
	}
}

// Build constructs the evolution circuit: for each qubit i an RY with angle
// w[2i]*t + w[2i+1], and between neighbors the coupling the variant calls
// for. The result is immutable once returned.
func Build(n int, v Variant) (*Circuit, error) {
	weights, err := WeightCount(n, v)
	if err != nil {
		return nil, err
	}

	gates := make([]Gate, 0, 2*n)
	for i := 0; i < n; i++ {
		gates = append(gates, Gate{
			Kind:    GateRY,
			Target:  i,
			Control: -1,
			Angle:   Angle{TWeight: 2 * i, Bias: 2*i + 1},
		})

		if i == n-1 {
			continue
		}
		switch v {
		case VariantRotation:
		case VariantEntangled:
			gates = append(gates, Gate{
				Kind:    GateCZ,
				Target:  i + 1,
				Control: i,
				Angle:   Angle{TWeight: -1, Bias: -1},
			})
		case VariantCoupled:
			gates = append(gates, Gate{
				Kind:    GateRZZ,
				Target:  i + 1,
				Control: i,
				Angle:   Angle{TWeight: -1, Bias: 2*n + i},
			})
		case VariantTimeCoupled:
			gates = append(gates, Gate{
				Kind:    GateRZZ,
				Target:  i + 1,
				Control: i,
				Angle:   Angle{TWeight: 2*n + i, Bias: -1},
			})
		}
	}

	return &Circuit{Qubits: n, Variant: v, Gates: gates, Weights: weights}, nil
}
