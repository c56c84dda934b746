// Package reference numerically integrates the target ODE with an adaptive
// Dormand-Prince scheme. It exists for validation only: tests and the
// compare command measure the trained model against it.
package reference

import (
	"fmt"
	"math"
)

// Oscillator is the linear constant-coefficient ODE u'' + A*u' + B*u + C = 0
// written as the first-order system (u, u')' = (u', -A*u' - B*u - C).
type Oscillator struct {
	A, B, C float64
}

func (o Oscillator) derive(y [2]float64) [2]float64 {
	return [2]float64{y[1], -o.A*y[1] - o.B*y[0] - o.C}
}

// Dormand-Prince coefficients
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const (
	safety   = 0.9
	minScale = 0.2
	maxScale = 10.0
	maxSteps = 1_000_000
)

// step advances y by dt and returns the new state, the embedded error
// estimate ratio against tol, and a suggested next step size.
func step(o Oscillator, y [2]float64, dt, tol float64) (next [2]float64, errRatio, dtNew float64) {
	k1 := o.derive(y)

	var y2 [2]float64
	for i := range y {
		y2[i] = y[i] + dt*b21*k1[i]
	}
	k2 := o.derive(y2)

	var y3 [2]float64
	for i := range y {
		y3[i] = y[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := o.derive(y3)

	var y4 [2]float64
	for i := range y {
		y4[i] = y[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := o.derive(y4)

	var y5 [2]float64
	for i := range y {
		y5[i] = y[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := o.derive(y5)

	var y6 [2]float64
	for i := range y {
		y6[i] = y[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := o.derive(y6)

	for i := range y {
		next[i] = y[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	k7 := o.derive(next)

	errMax := 0.0
	for i := range y {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(y[i]) + math.Abs(dt*k1[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	errRatio = errMax / tol
	if errRatio > 1 {
		dtNew = dt * math.Max(minScale, safety*math.Pow(errRatio, -0.25))
	} else if errRatio > 0 {
		dtNew = dt * math.Min(maxScale, safety*math.Pow(errRatio, -0.2))
	} else {
		dtNew = dt * maxScale
	}
	return next, errRatio, dtNew
}

// integrate advances y from t0 to t1 with adaptive stepping.
func integrate(o Oscillator, y [2]float64, t0, t1, tol float64) ([2]float64, error) {
	if t1 <= t0 {
		return y, nil
	}
	t := t0
	dt := (t1 - t0) / 16
	for steps := 0; t < t1; steps++ {
		if steps > maxSteps {
			return y, fmt.Errorf("reference: step budget exhausted at t=%g", t)
		}
		if dt > t1-t {
			dt = t1 - t
		}
		next, errRatio, dtNew := step(o, y, dt, tol)
		if errRatio <= 1 {
			y = next
			t += dt
		}
		dt = dtNew
	}
	return y, nil
}

// Solve returns the ODE solution u(t) at the (ascending) sample times,
// starting from u(0)=u0, u'(0)=du0.
func Solve(o Oscillator, u0, du0 float64, ts []float64) ([]float64, error) {
	out := make([]float64, len(ts))
	y := [2]float64{u0, du0}
	t := 0.0
	for i, target := range ts {
		if target < t {
			return nil, fmt.Errorf("reference: sample times must be ascending, got %g after %g", target, t)
		}
		var err error
		y, err = integrate(Oscillator{o.A, o.B, o.C}, y, t, target, 1e-10)
		if err != nil {
			return nil, err
		}
		t = target
		out[i] = y[0]
	}
	return out, nil
}

// Samples returns count evenly spaced times spanning [0, tMax].
func Samples(tMax float64, count int) []float64 {
	ts := make([]float64, count)
	for i := range ts {
		ts[i] = tMax * float64(i) / float64(count-1)
	}
	return ts
}
