package train

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/qfit/internal/ansatz"
	"github.com/san-kum/qfit/internal/expval"
	"github.com/san-kum/qfit/internal/loss"
)

func harmonicConfig() Config {
	return Config{
		Qubits:        1,
		Variant:       ansatz.VariantRotation,
		GridSize:      15,
		A:             0, B: 1, C: 0,
		U0:            0.8, DU0: 0,
		Weight:        10,
		Seed:          3,
		MaxIterations: 3000,
		Tolerance:     1e-10,
	}
}

func TestRunRecordsHistory(t *testing.T) {
	tr := New(harmonicConfig())
	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.History) != res.Evaluations {
		t.Errorf("history length %d != evaluations %d", len(res.History), res.Evaluations)
	}
	if len(res.BestX) != 4 { // 2n+1 weights + bias for n=1
		t.Errorf("expected 4 parameters, got %d", len(res.BestX))
	}
	if res.LastX == nil {
		t.Error("expected the last evaluated point to be recorded")
	}
}

func TestRunningMinimumNonIncreasing(t *testing.T) {
	tr := New(harmonicConfig())
	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	running := math.Inf(1)
	prev := math.Inf(1)
	for i, v := range res.History {
		if v < running {
			running = v
		}
		if running > prev {
			t.Fatalf("running minimum increased at evaluation %d", i)
		}
		prev = running
	}
	if running != res.BestLoss {
		t.Errorf("best loss %g is not the history minimum %g", res.BestLoss, running)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := harmonicConfig()
	cfg.Variant = ansatz.Variant(9)
	if _, err := New(cfg).Run(context.Background()); err == nil {
		t.Fatal("expected configuration error")
	}

	cfg = harmonicConfig()
	cfg.Qubits = 0
	if _, err := New(cfg).Run(context.Background()); err == nil {
		t.Fatal("expected configuration error for zero qubits")
	}
}

func TestRunCancellation(t *testing.T) {
	cfg := harmonicConfig()
	cfg.MaxIterations = 1000000
	cfg.Tolerance = 1e-300 // never converge on its own

	tr := New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	tr.AddObserver(loss.ObserverFunc(func(eval int, value float64, x []float64) {
		count++
		if count == 25 {
			cancel()
		}
	}))

	res, err := tr.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status.String() != "cancelled" {
		t.Errorf("expected cancelled status, got %v", res.Status)
	}
	if res.BestX == nil {
		t.Error("expected best point despite cancellation")
	}
}

func TestObserverSeesEveryEvaluation(t *testing.T) {
	cfg := harmonicConfig()
	cfg.MaxIterations = 50

	tr := New(cfg)
	seen := 0
	tr.AddObserver(loss.ObserverFunc(func(eval int, value float64, x []float64) {
		seen++
	}))

	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if seen != res.Evaluations {
		t.Errorf("observer saw %d evaluations, optimizer made %d", seen, res.Evaluations)
	}
}

func TestPredictMatchesClosedForm(t *testing.T) {
	c, err := ansatz.Build(1, ansatz.VariantRotation)
	if err != nil {
		t.Fatal(err)
	}

	// fixed parameters: f(t) = 0.8*cos(t) + 0.1
	predict := Predictor(expval.New(c), []float64{1, 0, 0.8, 0.1})
	for _, tv := range []float64{0, 1, 2.5, 2 * math.Pi} {
		want := 0.8*math.Cos(tv) + 0.1
		if math.Abs(predict(tv)-want) > 1e-12 {
			t.Errorf("t=%f: expected %f, got %f", tv, want, predict(tv))
		}
	}
}

func TestDeterministicGivenSeed(t *testing.T) {
	cfg := harmonicConfig()
	cfg.MaxIterations = 100

	a, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if a.BestLoss != b.BestLoss {
		t.Errorf("same seed produced different losses: %g vs %g", a.BestLoss, b.BestLoss)
	}
	for i := range a.BestX {
		if a.BestX[i] != b.BestX[i] {
			t.Errorf("same seed produced different parameters at %d", i)
		}
	}
}
