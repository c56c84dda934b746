package reference

import (
	"math"
	"testing"
)

func TestHarmonicOscillator(t *testing.T) {
	// u'' + u = 0, u(0)=0.8, u'(0)=0 has the closed form 0.8*cos(t)
	ts := Samples(2*math.Pi, 50)
	got, err := Solve(Oscillator{A: 0, B: 1, C: 0}, 0.8, 0, ts)
	if err != nil {
		t.Fatal(err)
	}

	for i, tv := range ts {
		want := 0.8 * math.Cos(tv)
		if math.Abs(got[i]-want) > 1e-7 {
			t.Errorf("t=%f: expected %f, got %f", tv, want, got[i])
		}
	}
}

func TestDampedOscillator(t *testing.T) {
	// underdamped case: u'' + 1.5u' + u = 0, u(0)=0.8, u'(0)=0
	// u(t) = exp(-0.75t) * (0.8*cos(wd*t) + (0.6/wd)*sin(wd*t)),
	// wd = sqrt(1 - 0.75^2)
	wd := math.Sqrt(1 - 0.75*0.75)
	ts := Samples(2*math.Pi, 50)
	got, err := Solve(Oscillator{A: 1.5, B: 1, C: 0}, 0.8, 0, ts)
	if err != nil {
		t.Fatal(err)
	}

	for i, tv := range ts {
		want := math.Exp(-0.75*tv) * (0.8*math.Cos(wd*tv) + (0.6/wd)*math.Sin(wd*tv))
		if math.Abs(got[i]-want) > 1e-7 {
			t.Errorf("t=%f: expected %f, got %f", tv, want, got[i])
		}
	}
}

func TestConstantForcing(t *testing.T) {
	// u'' + u + c = 0 settles oscillation around -c; check the particular
	// solution u = -c is stationary
	ts := Samples(4, 20)
	got, err := Solve(Oscillator{A: 0, B: 1, C: 0.5}, -0.5, 0, ts)
	if err != nil {
		t.Fatal(err)
	}
	for i, tv := range ts {
		if math.Abs(got[i]-(-0.5)) > 1e-8 {
			t.Errorf("t=%f: expected steady -0.5, got %f", tv, got[i])
		}
	}
}

func TestSolveRejectsUnorderedTimes(t *testing.T) {
	_, err := Solve(Oscillator{B: 1}, 1, 0, []float64{1.0, 0.5})
	if err == nil {
		t.Fatal("expected error for descending sample times")
	}
}

func TestSamplesSpanRange(t *testing.T) {
	ts := Samples(2*math.Pi, 100)
	if len(ts) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(ts))
	}
	if ts[0] != 0 || math.Abs(ts[99]-2*math.Pi) > 1e-15 {
		t.Errorf("expected span [0, 2pi], got [%f, %f]", ts[0], ts[99])
	}
}
