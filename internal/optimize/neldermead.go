package optimize

import (
	"context"
	"math"
	"sort"
)

// NelderMead is the downhill simplex method. It needs nothing beyond scalar
// objective values, which makes it a good default for the non-smooth
// dependence of the loss on the weights.
type NelderMead struct {
	cfg Config

	// standard reflection/expansion/contraction/shrink coefficients
	alpha, gamma, rho, sigma float64
}

func NewNelderMead(cfg Config) *NelderMead {
	return &NelderMead{
		cfg:   cfg.withDefaults(),
		alpha: 1.0,
		gamma: 2.0,
		rho:   0.5,
		sigma: 0.5,
	}
}

func (nm *NelderMead) Minimize(ctx context.Context, obj Objective, x0 []float64) (*Result, error) {
	n := len(x0)
	tr := newTracker()

	simplex := make([][]float64, n+1)
	values := make([]float64, n+1)
	simplex[0] = cloneVec(x0)
	for i := 0; i < n; i++ {
		p := cloneVec(x0)
		p[i] += nm.cfg.StepSize
		simplex[i+1] = p
	}
	for i := range simplex {
		values[i] = tr.eval(obj, simplex[i])
	}

	status := MaxIterations
	iters := 0
	for ; iters < nm.cfg.MaxIterations; iters++ {
		select {
		case <-ctx.Done():
			return tr.result(iters, Cancelled), nil
		default:
		}

		order := make([]int, n+1)
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })
		sortedSimplex := make([][]float64, n+1)
		sortedValues := make([]float64, n+1)
		for i, idx := range order {
			sortedSimplex[i] = simplex[idx]
			sortedValues[i] = values[idx]
		}
		simplex, values = sortedSimplex, sortedValues

		if math.Abs(values[n]-values[0]) < nm.cfg.Tolerance {
			status = Converged
			break
		}

		// centroid of all but the worst vertex
		centroid := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				centroid[j] += simplex[i][j]
			}
		}
		for j := range centroid {
			centroid[j] /= float64(n)
		}

		reflected := blend(centroid, simplex[n], 1+nm.alpha, -nm.alpha)
		fr := tr.eval(obj, reflected)

		switch {
		case fr < values[0]:
			expanded := blend(centroid, simplex[n], 1+nm.gamma, -nm.gamma)
			fe := tr.eval(obj, expanded)
			if fe < fr {
				simplex[n], values[n] = expanded, fe
			} else {
				simplex[n], values[n] = reflected, fr
			}
		case fr < values[n-1]:
			simplex[n], values[n] = reflected, fr
		default:
			contracted := blend(centroid, simplex[n], 1-nm.rho, nm.rho)
			fc := tr.eval(obj, contracted)
			if fc < values[n] {
				simplex[n], values[n] = contracted, fc
			} else {
				for i := 1; i <= n; i++ {
					simplex[i] = blend(simplex[0], simplex[i], 1-nm.sigma, nm.sigma)
					values[i] = tr.eval(obj, simplex[i])
				}
			}
		}
	}

	return tr.result(iters, status), nil
}

// blend returns a*p + b*q element-wise.
func blend(p, q []float64, a, b float64) []float64 {
	out := make([]float64, len(p))
	for i := range out {
		out[i] = a*p[i] + b*q[i]
	}
	return out
}
