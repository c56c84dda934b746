package optimize

import "context"

// TrustRegion is a pattern search with an adaptive radius: each iteration
// probes the current point along every coordinate direction at the current
// radius, moves to the best improving probe, and grows or shrinks the radius
// on success or failure. It terminates when the radius collapses below the
// tolerance or the budget runs out.
type TrustRegion struct {
	cfg    Config
	grow   float64
	shrink float64
}

func NewTrustRegion(cfg Config) *TrustRegion {
	return &TrustRegion{cfg: cfg.withDefaults(), grow: 2.0, shrink: 0.5}
}

func (tr *TrustRegion) Minimize(ctx context.Context, obj Objective, x0 []float64) (*Result, error) {
	t := newTracker()
	x := cloneVec(x0)
	fx := t.eval(obj, x)
	radius := tr.cfg.StepSize

	status := MaxIterations
	iters := 0
	for ; iters < tr.cfg.MaxIterations; iters++ {
		select {
		case <-ctx.Done():
			return t.result(iters, Cancelled), nil
		default:
		}

		if radius < tr.cfg.Tolerance {
			status = Converged
			break
		}

		bestIdx, bestSign := -1, 0.0
		bestVal := fx
		for i := range x {
			for _, sign := range []float64{1, -1} {
				probe := cloneVec(x)
				probe[i] += sign * radius
				if v := t.eval(obj, probe); v < bestVal {
					bestVal, bestIdx, bestSign = v, i, sign
				}
			}
		}

		if bestIdx < 0 {
			radius *= tr.shrink
			continue
		}

		improvement := fx - bestVal
		x[bestIdx] += bestSign * radius
		fx = bestVal
		if improvement > radius {
			radius *= tr.grow
		}
		if improvement < tr.cfg.Tolerance {
			status = Converged
			iters++
			break
		}
	}

	return t.result(iters, status), nil
}
