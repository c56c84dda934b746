package expval

import "math"

// Two-term parameter-shift rule. Every parameterized gate here is generated
// by a Pauli or a Pauli pair with a +-1 eigenvalue spectrum, so
//
//	dE/d(angle) = 1/2 * (E(angle + pi/2) - E(angle - pi/2))
//
// holds exactly for all of them.
const (
	shiftAngle = math.Pi / 2
	shiftCoeff = 0.5
)

// Differentiate returns a new construct whose evaluation equals the exact
// partial derivative of the receiver's expectation with respect to t.
//
// For each term and each gate whose angle depends on t (angle = w[k]*t + ...),
// the derivative contributes the shift-rule pair of that term with the gate
// angle offset by +-pi/2, chain-multiplied by the angle's t-coefficient w[k].
// The coefficient is a weight, constant with respect to t, so it joins the
// term's theta-factor list and the result can be differentiated again.
func (e *Construct) Differentiate() *Construct {
	var out []term
	for _, tm := range e.terms {
		for gi, g := range e.circuit.Gates {
			if !g.Angle.DependsOnT() {
				continue
			}
			for _, sign := range []float64{1, -1} {
				nt := term{
					coeff:  tm.coeff * shiftCoeff * sign,
					thetas: append(append([]int(nil), tm.thetas...), g.Angle.TWeight),
					shifts: append([]float64(nil), tm.shifts...),
				}
				nt.shifts[gi] += sign * shiftAngle
				out = append(out, nt)
			}
		}
	}

	return &Construct{
		circuit: e.circuit,
		terms:   out,
		order:   e.order + 1,
		Warn:    e.Warn,
	}
}
