package pass

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-upmix/dsp/filter/biquad"
)

func TestButterworthSectionCount(t *testing.T) {
	sr := 48000.0
	for order := 1; order <= 8; order++ {
		want := (order + 1) / 2
		if got := ButterworthLP(1000, order, sr); len(got) != want {
			t.Fatalf("LP order %d: sections=%d, want %d", order, len(got), want)
		}
		if got := ButterworthHP(1000, order, sr); len(got) != want {
			t.Fatalf("HP order %d: sections=%d, want %d", order, len(got), want)
		}
	}
}

func TestButterworthMinus3dBAtCutoff(t *testing.T) {
	sr := 48000.0
	for _, fc := range []float64{80, 100, 150, 200, 15000} {
		for _, order := range []int{1, 2, 3, 4, 6} {
			lp := cascadeMagDB(ButterworthLP(fc, order, sr), fc, sr)
			hp := cascadeMagDB(ButterworthHP(fc, order, sr), fc, sr)
			want := -10 * math.Log10(2)
			if !almostEqual(lp, want, 1e-6) {
				t.Errorf("LP fc=%v order=%d: %.6f dB at cutoff", fc, order, lp)
			}
			if !almostEqual(hp, want, 1e-6) {
				t.Errorf("HP fc=%v order=%d: %.6f dB at cutoff", fc, order, hp)
			}
		}
	}
}

func TestButterworthPassbandAndRolloff(t *testing.T) {
	sr := 48000.0

	lp := ButterworthLP(80, 4, sr)
	if g := cascadeMagDB(lp, 10, sr); math.Abs(g) > 0.01 {
		t.Errorf("LP 80 Hz passband at 10 Hz = %.4f dB", g)
	}
	// 4th order: 24 dB/octave, so one octave above cutoff is about -24 dB.
	if g := cascadeMagDB(lp, 160, sr); g > -23 || g < -25.5 {
		t.Errorf("LP 80 Hz at 160 Hz = %.2f dB, want about -24", g)
	}

	hp := ButterworthHP(200, 4, sr)
	if g := cascadeMagDB(hp, 5000, sr); math.Abs(g) > 0.01 {
		t.Errorf("HP 200 Hz passband at 5 kHz = %.4f dB", g)
	}
	if g := cascadeMagDB(hp, 100, sr); g > -23 || g < -25.5 {
		t.Errorf("HP 200 Hz at 100 Hz = %.2f dB, want about -24", g)
	}
}

func TestButterworthUnityGainAtDCAndNyquist(t *testing.T) {
	sr := 44100.0
	for _, c := range ButterworthLP(1000, 4, sr) {
		// DC gain of each LP section: (B0+B1+B2)/(1+A1+A2).
		if g := (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2); !almostEqual(g, 1, 1e-12) {
			t.Fatalf("LP section DC gain = %v", g)
		}
	}
	for _, c := range ButterworthHP(1000, 4, sr) {
		// Nyquist gain: (B0-B1+B2)/(1-A1+A2).
		if g := (c.B0 - c.B1 + c.B2) / (1 - c.A1 + c.A2); !almostEqual(g, 1, 1e-12) {
			t.Fatalf("HP section Nyquist gain = %v", g)
		}
	}
}

func TestButterworthAllSectionsStable(t *testing.T) {
	for _, sr := range []float64{22050, 44100, 48000, 96000, 192000} {
		for _, fc := range []float64{20, 80, 1000, sr * 0.45} {
			for _, design := range [][]biquad.Coefficients{
				ButterworthLP(fc, 4, sr),
				ButterworthHP(fc, 4, sr),
			} {
				for _, s := range design {
					assertFiniteCoefficients(t, s)
					if !s.Stable() {
						t.Fatalf("sr=%v fc=%v: unstable section %#v", sr, fc, s)
					}
				}
			}
		}
	}
}

func TestButterworthInvalidInputs(t *testing.T) {
	tests := []struct {
		name  string
		freq  float64
		order int
		sr    float64
	}{
		{"negative order", 1000, -1, 48000},
		{"zero order", 1000, 0, 48000},
		{"zero cutoff", 0, 4, 48000},
		{"at nyquist", 24000, 4, 48000},
		{"above nyquist", 30000, 4, 48000},
		{"zero rate", 1000, 4, 0},
		{"nan cutoff", math.NaN(), 4, 48000},
	}
	for _, tt := range tests {
		if got := ButterworthLP(tt.freq, tt.order, tt.sr); got != nil {
			t.Errorf("%s: LP expected nil, got %d sections", tt.name, len(got))
		}
		if got := ButterworthHP(tt.freq, tt.order, tt.sr); got != nil {
			t.Errorf("%s: HP expected nil, got %d sections", tt.name, len(got))
		}
	}
}

func TestButterworthQKnownValues(t *testing.T) {
	if got := butterworthQ(2, 0); !almostEqual(got, 1/math.Sqrt2, 1e-12) {
		t.Fatalf("order 2: Q=%v", got)
	}
	// Order 4 section Qs are 0.5412 and 1.3066.
	if got := butterworthQ(4, 0); !almostEqual(got, 1.3065629648763766, 1e-12) {
		t.Fatalf("order 4 index 0: Q=%v", got)
	}
	if got := butterworthQ(4, 1); !almostEqual(got, 0.5411961001461969, 1e-12) {
		t.Fatalf("order 4 index 1: Q=%v", got)
	}
}
