package truepeak

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-upmix/dsp/resample"
	"github.com/cwbudde/algo-upmix/internal/testutil"
	"github.com/cwbudde/algo-vecmath"
)

func TestEstimateFactorOneIsSamplePeak(t *testing.T) {
	got, err := Estimate([]float64{0.1, -0.8, 0.5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.8 {
		t.Fatalf("Estimate(.., 1) = %v, want 0.8", got)
	}
}

func TestEstimateFindsInterSamplePeak(t *testing.T) {
	// fs/4 sine sampled 45 degrees off its crest: every sample sits at
	// 0.5*sin(45deg) while the waveform reaches 0.5.
	const fs = 48000.0
	n := 4800
	sig := make([]float64, n)
	for i := range sig {
		sig[i] = 0.5 * math.Sin(2*math.Pi*(fs/4)*float64(i)/fs+math.Pi/4)
	}

	sample, _ := Estimate(sig, 1)
	if math.Abs(sample-0.5/math.Sqrt2) > 1e-9 {
		t.Fatalf("sample peak = %v", sample)
	}

	for _, factor := range []int{Factor2x, Factor4x} {
		got, err := Estimate(sig, factor)
		if err != nil {
			t.Fatal(err)
		}
		if got < 0.48 || got > 0.52 {
			t.Errorf("factor %d: true peak = %v, want about 0.5", factor, got)
		}
	}
}

func TestEstimateNeverBelowSamplePeak(t *testing.T) {
	sig := testutil.DeterministicNoise(1, 0.9, 2000)
	sample, _ := Estimate(sig, 1)
	for _, f := range []int{2, 3, 4, 8} {
		got, err := Estimate(sig, f)
		if err != nil {
			t.Fatal(err)
		}
		if got < sample {
			t.Errorf("factor %d: %v < sample peak %v", f, got, sample)
		}
	}
}

func TestEstimateEdgeCases(t *testing.T) {
	if _, err := Estimate([]float64{1}, 0); !errors.Is(err, ErrInvalidFactor) {
		t.Fatalf("factor 0: err = %v", err)
	}
	got, err := Estimate(nil, 4)
	if err != nil || got != 0 {
		t.Fatalf("Estimate(nil) = %v, %v", got, err)
	}
	got, err = Estimate(make([]float64, 100), 4)
	if err != nil || got != 0 {
		t.Fatalf("Estimate(zeros) = %v, %v", got, err)
	}
}

func TestEnvelope(t *testing.T) {
	env := Envelope([][]float64{
		{0.1, -0.5, 0.2},
		{-0.3, 0.4, 0.1},
		{0.05},
	})
	testutil.RequireSliceNearlyEqual(t, env, []float64{0.3, 0.5, 0.2}, 0)

	if len(Envelope(nil)) != 0 {
		t.Fatal("Envelope(nil) should be empty")
	}
}

func TestEstimateChannels(t *testing.T) {
	got, err := EstimateChannels([][]float64{{0.2, 0.1}, {-0.6, 0}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.6 {
		t.Fatalf("EstimateChannels = %v", got)
	}
	if _, err := EstimateChannels([][]float64{{1}}, -1); !errors.Is(err, ErrInvalidFactor) {
		t.Fatalf("err = %v", err)
	}
}

func quarterRateSine(n int) []float64 {
	sig := make([]float64, n)
	for i := range sig {
		sig[i] = math.Sin(math.Pi/2*float64(i) + math.Pi/4)
	}
	return sig
}

func fadeEdges(sig []float64, n int) {
	for i := range n {
		g := 0.5 - 0.5*math.Cos(math.Pi*float64(i)/float64(n))
		sig[i] *= g
		sig[len(sig)-1-i] *= g
	}
}

func TestEstimateHardEdgesRing(t *testing.T) {
	// A full-scale tone that starts and stops abruptly makes the
	// interpolator overshoot near the edges; away from them the estimate
	// tracks the analytic crest.
	const n, margin = 4800, 480
	sig := quarterRateSine(n)

	tp, err := Estimate(sig, Factor4x)
	if err != nil {
		t.Fatal(err)
	}
	if tp < 1.005 || tp > 1.03 {
		t.Fatalf("hard-edged true peak = %v, want edge overshoot in [1.005, 1.03]", tp)
	}

	up, err := resample.Poly(sig, Factor4x, 1)
	if err != nil {
		t.Fatal(err)
	}
	interior := vecmath.MaxAbs(up[Factor4x*margin : Factor4x*(n-margin)])
	if math.Abs(interior-1) > 5e-3 {
		t.Fatalf("interior peak = %v, want about 1", interior)
	}
	if tp <= interior {
		t.Fatalf("edge peak %v not above interior peak %v", tp, interior)
	}
}

func TestEstimateFadedToneHasNoEdgeOvershoot(t *testing.T) {
	sig := quarterRateSine(4800)
	fadeEdges(sig, 480)

	tp, err := Estimate(sig, Factor4x)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(tp-1) > 5e-3 {
		t.Fatalf("faded true peak = %v, want about 1", tp)
	}
}
