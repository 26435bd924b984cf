package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// designZeroPhaseFIR designs an odd-length symmetric lowpass with
// halfLen = tapsPerPhase*max(up,down)/2 taps on each side of the centre.
func designZeroPhaseFIR(up, down int, cfg config) ([]float64, int, error) {
	if err := checkDesign(up, down, cfg); err != nil {
		return nil, 0, err
	}

	maxRate := max(up, down)
	halfLen := max(1, cfg.tapsPerPhase*maxRate/2)
	nTaps := 2*halfLen + 1
	fc := (0.5 / float64(maxRate)) * cfg.cutoffScale

	taps := make([]float64, nTaps)
	for n := range nTaps {
		t := float64(n - halfLen)
		taps[n] = 2 * fc * sinc(2*fc*t) * kaiserWindow(n, nTaps, cfg.kaiserBeta)
	}

	if err := normalizeDC(taps, up); err != nil {
		return nil, 0, err
	}

	return taps, halfLen, nil
}

func checkDesign(up, down int, cfg config) error {
	if up <= 0 || down <= 0 {
		return ErrInvalidRatio
	}

	if cfg.tapsPerPhase <= 0 {
		return errors.New("resample: taps per phase must be > 0")
	}

	if cfg.cutoffScale <= 0 || cfg.cutoffScale > 1 {
		return errors.New("resample: cutoff scale must be in (0,1]")
	}

	if fc := (0.5 / float64(max(up, down))) * cfg.cutoffScale; fc <= 0 || fc > 0.5 {
		return fmt.Errorf("resample: invalid cutoff %.6f", fc)
	}

	return nil
}

// normalizeDC scales taps to a DC gain of up, which restores unit gain
// after zero stuffing.
func normalizeDC(taps []float64, up int) error {
	sum := vecmath.Sum(taps)
	if sum == 0 {
		return errors.New("resample: designed zero-sum filter")
	}

	vecmath.ScaleBlockInPlace(taps, float64(up)/sum)

	return nil
}

// approximateRatio returns the continued-fraction convergent of v with the
// largest denominator not above maxDen, reduced to lowest terms.
func approximateRatio(v float64, maxDen int) (num, den int) {
	if maxDen <= 0 {
		maxDen = defaultMaxDenominator
	}

	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, 1
	}

	a0 := math.Floor(v)
	p0, q0 := 1.0, 0.0
	p1, q1 := a0, 1.0
	x := v

	for {
		frac := x - math.Floor(x)
		if frac == 0 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)
		p2 := a*p1 + p0

		q2 := a*q1 + q0
		if q2 > float64(maxDen) {
			break
		}

		p0, q0 = p1, q1
		p1, q1 = p2, q2
	}

	num = int(math.Round(p1))

	den = int(math.Round(q1))
	if den <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}

	if b < 0 {
		b = -b
	}

	for b != 0 {
		a, b = b, a%b
	}

	if a == 0 {
		return 1
	}

	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}

func kaiserWindow(i, n int, beta float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}

	t := 2*float64(i)/float64(n-1) - 1
	a := math.Sqrt(math.Max(0, 1-t*t))

	return i0(beta*a) / i0(beta)
}

// i0 is the zeroth-order modified Bessel function of the first kind.
func i0(x float64) float64 {
	sum := 1.0
	term := 1.0

	x2 := (x * x) / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}
