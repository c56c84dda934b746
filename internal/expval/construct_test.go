package expval

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qfit/internal/ansatz"
)

func build(t *testing.T, n int, v ansatz.Variant) *Construct {
	t.Helper()
	c, err := ansatz.Build(n, v)
	require.NoError(t, err)
	return New(c)
}

func TestSingleQubitClosedForm(t *testing.T) {
	// RY(w0*t + w1)|0> gives <Z> = cos(w0*t + w1), scaled by the
	// observable coefficient w2.
	e := build(t, 1, ansatz.VariantRotation)
	w := []float64{1.3, 0.4, 0.9}

	for _, tv := range []float64{0, 0.5, 1.7, -2.2, math.Pi} {
		got, err := e.Evaluate(tv, w)
		require.NoError(t, err)
		want := 0.9 * math.Cos(1.3*tv+0.4)
		assert.InDelta(t, want, got, 1e-12, "t=%f", tv)
	}
}

func TestZeroParameterInvariance(t *testing.T) {
	for _, v := range []ansatz.Variant{
		ansatz.VariantRotation,
		ansatz.VariantEntangled,
		ansatz.VariantCoupled,
		ansatz.VariantTimeCoupled,
	} {
		t.Run(v.String(), func(t *testing.T) {
			e := build(t, 3, v)
			w := make([]float64, e.Circuit().Weights)

			// all weights zero: every angle is zero and the coefficient
			// is zero, so the expectation vanishes exactly
			got, err := e.Evaluate(1.23, w)
			require.NoError(t, err)
			assert.Equal(t, 0.0, got)

			// with only the coefficient set the state stays |0...0>, the
			// Z string reads +1, and the output is the coefficient itself
			w[e.Circuit().CoefficientIndex()] = 0.7
			got, err = e.Evaluate(1.23, w)
			require.NoError(t, err)
			assert.InDelta(t, 0.7, got, 1e-12)
		})
	}
}

func TestFirstDerivativeMatchesFiniteDifference(t *testing.T) {
	const h = 1e-5
	rng := rand.New(rand.NewSource(7))

	for _, tc := range []struct {
		n       int
		variant ansatz.Variant
	}{
		{1, ansatz.VariantRotation},
		{2, ansatz.VariantRotation},
		{2, ansatz.VariantEntangled},
		{2, ansatz.VariantCoupled},
		{2, ansatz.VariantTimeCoupled},
		{3, ansatz.VariantTimeCoupled},
	} {
		t.Run(tc.variant.String(), func(t *testing.T) {
			e := build(t, tc.n, tc.variant)
			d1 := e.Differentiate()

			w := make([]float64, e.Circuit().Weights)
			for i := range w {
				w[i] = rng.Float64()*2 - 1
			}

			for trial := 0; trial < 5; trial++ {
				tv := rng.Float64() * 2 * math.Pi

				analytic, err := d1.Evaluate(tv, w)
				require.NoError(t, err)

				plus, err := e.Evaluate(tv+h, w)
				require.NoError(t, err)
				minus, err := e.Evaluate(tv-h, w)
				require.NoError(t, err)

				assert.InDelta(t, (plus-minus)/(2*h), analytic, 1e-4,
					"t=%f", tv)
			}
		})
	}
}

func TestSecondDerivativeMatchesFiniteDifference(t *testing.T) {
	const h = 1e-5
	rng := rand.New(rand.NewSource(11))

	e := build(t, 2, ansatz.VariantTimeCoupled)
	d1 := e.Differentiate()
	d2 := d1.Differentiate()

	w := make([]float64, e.Circuit().Weights)
	for i := range w {
		w[i] = rng.Float64()*2 - 1
	}

	for trial := 0; trial < 5; trial++ {
		tv := rng.Float64() * 2 * math.Pi

		analytic, err := d2.Evaluate(tv, w)
		require.NoError(t, err)

		plus, err := d1.Evaluate(tv+h, w)
		require.NoError(t, err)
		minus, err := d1.Evaluate(tv-h, w)
		require.NoError(t, err)

		assert.InDelta(t, (plus-minus)/(2*h), analytic, 1e-4, "t=%f", tv)
	}
}

func TestPeriodicity(t *testing.T) {
	// with integer t-coefficients every angle shifts by a multiple of
	// 2*pi when t advances a full period
	e := build(t, 2, ansatz.VariantTimeCoupled)
	w := []float64{1, 0.3, 2, -0.8, 1, 0.6}

	for _, tv := range []float64{0, 0.9, 2.5} {
		a, err := e.Evaluate(tv, w)
		require.NoError(t, err)
		b, err := e.Evaluate(tv+2*math.Pi, w)
		require.NoError(t, err)
		assert.InDelta(t, a, b, 1e-9, "t=%f", tv)
	}
}

func TestDimensionError(t *testing.T) {
	e := build(t, 2, ansatz.VariantRotation) // wants 5 weights

	for _, n := range []int{0, 4, 6} {
		_, err := e.Evaluate(0.5, make([]float64, n))
		var dimErr *DimensionError
		require.ErrorAs(t, err, &dimErr, "len %d", n)
		assert.Equal(t, 5, dimErr.Want)
		assert.Equal(t, n, dimErr.Got)
	}
}

func TestDifferentiateTermGrowth(t *testing.T) {
	e := build(t, 1, ansatz.VariantRotation)
	require.Equal(t, 1, e.Terms())
	require.Equal(t, 0, e.Order())

	d1 := e.Differentiate()
	assert.Equal(t, 2, d1.Terms())
	assert.Equal(t, 1, d1.Order())

	d2 := d1.Differentiate()
	assert.Equal(t, 4, d2.Terms())
	assert.Equal(t, 2, d2.Order())

	// the base construct is untouched
	assert.Equal(t, 1, e.Terms())
}

func TestDerivativeOfTimeIndependentGateIsZero(t *testing.T) {
	// a coupled (variant 3) circuit differentiates only through its
	// rotations; verify the RZZ coupling contributes no shift terms
	e2 := build(t, 2, ansatz.VariantCoupled)
	e4 := build(t, 2, ansatz.VariantTimeCoupled)

	// variant 3 has 2 t-dependent gates, variant 4 has 3
	assert.Equal(t, 4, e2.Differentiate().Terms())
	assert.Equal(t, 6, e4.Differentiate().Terms())
}

func TestEvaluateIsPure(t *testing.T) {
	e := build(t, 2, ansatz.VariantEntangled)
	d1 := e.Differentiate()
	w := []float64{0.9, 0.1, 1.4, -0.3, 0.8}

	a1, err := d1.Evaluate(1.1, w)
	require.NoError(t, err)
	a2, err := d1.Evaluate(1.1, w)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
}
