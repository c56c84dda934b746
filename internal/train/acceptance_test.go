package train_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qfit/internal/ansatz"
	"github.com/san-kum/qfit/internal/reference"
	"github.com/san-kum/qfit/internal/train"
)

// residualSS is the summed squared deviation between the trained model and
// the numerically integrated reference over the sample times.
func residualSS(res *train.Result, osc reference.Oscillator, u0, du0 float64) float64 {
	ts := reference.Samples(2*math.Pi, 100)
	truth, err := reference.Solve(osc, u0, du0, ts)
	Expect(err).NotTo(HaveOccurred())

	var rss float64
	for i, tv := range ts {
		d := res.Predict(tv) - truth[i]
		rss += d * d
	}
	return rss
}

var _ = Describe("fitting a single-qubit model to an oscillator", func() {
	newConfig := func(a, b, c float64) train.Config {
		return train.Config{
			Qubits:        1,
			Variant:       ansatz.VariantRotation,
			GridSize:      15,
			A:             a,
			B:             b,
			C:             c,
			U0:            0.8,
			DU0:           0,
			Weight:        10,
			Seed:          3,
			MaxIterations: 3000,
			Tolerance:     1e-10,
			StepSize:      0.5,
		}
	}

	Context("harmonic oscillator f'' + f = 0", func() {
		It("recovers the exact solution", func() {
			cfg := newConfig(0, 1, 0)
			res, err := train.New(cfg).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(res.BestLoss).To(BeNumerically("<", 1e-2))

			rss := residualSS(res, reference.Oscillator{A: 0, B: 1, C: 0}, 0.8, 0)
			Expect(rss).To(BeNumerically("<", 0.1))
		})
	})

	Context("damped oscillator f'' + 1.5f' + f = 0", func() {
		It("tracks the reference within the model's representable error", func() {
			cfg := newConfig(1.5, 1, 0)
			res, err := train.New(cfg).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			// the cosine-family model cannot damp, so the residual floor
			// sits near 2.1 for this configuration
			rss := residualSS(res, reference.Oscillator{A: 1.5, B: 1, C: 0}, 0.8, 0)
			Expect(rss).To(BeNumerically("<", 3.0))
		})

		It("pins the initial conditions", func() {
			cfg := newConfig(1.5, 1, 0)
			res, err := train.New(cfg).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Predict(0)).To(BeNumerically("~", 0.8, 0.05))

			h := 1e-5
			df0 := (res.Predict(h) - res.Predict(-h)) / (2 * h)
			Expect(df0).To(BeNumerically("~", 0.0, 0.05))
		})
	})
})
