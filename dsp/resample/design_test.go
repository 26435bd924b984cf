package resample

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-upmix/internal/testutil"
)

func TestApproximateRatio(t *testing.T) {
	tests := []struct {
		v        float64
		maxDen   int
		num, den int
	}{
		{48000.0 / 44100, 4096, 160, 147},
		{44100.0 / 48000, 4096, 147, 160},
		{96000.0 / 48000, 4096, 2, 1},
		{0.5, 4096, 1, 2},
		{math.Pi, 7, 22, 7},
		{0, 4096, 1, 1},
		{math.NaN(), 4096, 1, 1},
	}
	for _, tc := range tests {
		num, den := approximateRatio(tc.v, tc.maxDen)
		if num != tc.num || den != tc.den {
			t.Errorf("approximateRatio(%v, %d) = %d/%d, want %d/%d", tc.v, tc.maxDen, num, den, tc.num, tc.den)
		}
	}
}

func TestDesignZeroPhaseFIR(t *testing.T) {
	cfg := polyConfig(nil)
	for _, ratio := range [][2]int{{4, 1}, {1, 2}, {160, 147}} {
		up, down := ratio[0], ratio[1]
		taps, halfLen, err := designZeroPhaseFIR(up, down, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if len(taps) != 2*halfLen+1 {
			t.Fatalf("%d/%d: len = %d, halfLen = %d", up, down, len(taps), halfLen)
		}
		if want := polyTapsPerPhase * max(up, down) / 2; halfLen != want {
			t.Errorf("%d/%d: halfLen = %d, want %d", up, down, halfLen, want)
		}
		for i := range halfLen {
			if math.Abs(taps[i]-taps[len(taps)-1-i]) > 1e-12 {
				t.Fatalf("%d/%d: taps not symmetric at %d", up, down, i)
			}
		}
		var sum float64
		for _, v := range taps {
			sum += v
		}
		if math.Abs(sum-float64(up)) > 1e-9 {
			t.Errorf("%d/%d: DC gain = %v, want %d", up, down, sum, up)
		}
	}
}

func TestCheckDesignRejectsBadConfig(t *testing.T) {
	good := polyConfig(nil)

	bad := good
	bad.tapsPerPhase = 0
	if err := checkDesign(2, 1, bad); err == nil {
		t.Error("zero taps per phase accepted")
	}

	bad = good
	bad.cutoffScale = 1.5
	if err := checkDesign(2, 1, bad); err == nil {
		t.Error("cutoff scale > 1 accepted")
	}

	if err := checkDesign(0, 1, good); err != ErrInvalidRatio {
		t.Errorf("up=0: %v", err)
	}
}

func TestKaiserWindow(t *testing.T) {
	const n = 33
	if w := kaiserWindow(n/2, n, 7.5); math.Abs(w-1) > 1e-12 {
		t.Errorf("centre = %v, want 1", w)
	}
	edge := kaiserWindow(0, n, 7.5)
	if want := 1 / i0(7.5); math.Abs(edge-want) > 1e-12 {
		t.Errorf("edge = %v, want %v", edge, want)
	}
	if w := kaiserWindow(5, n, 0); w != 1 {
		t.Errorf("beta 0 = %v, want rectangular", w)
	}
}

func TestQualityProfilesAttenuateAliases(t *testing.T) {
	tests := []struct {
		name          string
		quality       Quality
		maxPassbandDB float64
		minStopbandDB float64
	}{
		{name: "fast", quality: QualityFast, maxPassbandDB: 0.7, minStopbandDB: 20},
		{name: "balanced", quality: QualityBalanced, maxPassbandDB: 0.35, minStopbandDB: 35},
		{name: "best", quality: QualityBest, maxPassbandDB: 0.2, minStopbandDB: 50},
	}

	const n = 32768

	pass := testutil.DeterministicSine(2000, 48000, 1, n)
	stop := testutil.DeterministicSine(17000, 48000, 1, n)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			outPass, err := Poly(pass, 1, 2, WithQuality(tc.quality))
			if err != nil {
				t.Fatal(err)
			}
			outStop, err := Poly(stop, 1, 2, WithQuality(tc.quality))
			if err != nil {
				t.Fatal(err)
			}

			inRMS := testutil.RMS(pass[n/8 : 7*n/8])
			passDB := math.Abs(20 * math.Log10(testutil.RMS(outPass[n/16:7*n/16])/inRMS))
			if passDB > tc.maxPassbandDB {
				t.Errorf("passband droop %.2f dB > %.2f dB", passDB, tc.maxPassbandDB)
			}

			stopDB := -20 * math.Log10(testutil.RMS(outStop[n/16:7*n/16])/testutil.RMS(stop[n/8:7*n/8]))
			if stopDB < tc.minStopbandDB {
				t.Errorf("stopband attenuation %.2f dB < %.2f dB", stopDB, tc.minStopbandDB)
			}
		})
	}
}
