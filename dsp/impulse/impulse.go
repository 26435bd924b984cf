package impulse

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/algo-upmix/dsp/resample"
)

// Errors returned by impulse response validation and conversion.
var (
	ErrEmpty             = errors.New("impulse: empty response")
	ErrInvalidSampleRate = errors.New("impulse: sample rate must be positive")
	ErrRateMismatch      = errors.New("impulse: left and right sample rates differ")
)

// Response is a mono impulse response.
type Response struct {
	Samples    []float64
	SampleRate int
}

// Validate reports whether r is usable as a convolution kernel.
func (r Response) Validate() error {
	if len(r.Samples) == 0 {
		return ErrEmpty
	}

	if r.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, r.SampleRate)
	}

	return nil
}

// Len returns the response length in samples.
func (r Response) Len() int {
	return len(r.Samples)
}

// Duration returns the response length as a time span.
func (r Response) Duration() time.Duration {
	if r.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(len(r.Samples)) / float64(r.SampleRate) * float64(time.Second))
}

// Resampled returns r converted to rate. When the rates already match, r
// itself is returned; its samples are shared, not copied.
func (r Response) Resampled(rate int) (Response, error) {
	if err := r.Validate(); err != nil {
		return Response{}, err
	}

	if rate <= 0 {
		return Response{}, fmt.Errorf("%w: %d", ErrInvalidSampleRate, rate)
	}

	if rate == r.SampleRate {
		return r, nil
	}

	out, err := resample.ForRates(r.Samples, float64(r.SampleRate), float64(rate))
	if err != nil {
		return Response{}, fmt.Errorf("impulse: resample %d -> %d Hz: %w", r.SampleRate, rate, err)
	}

	return Response{Samples: out, SampleRate: rate}, nil
}

// Pair is a stereo impulse response.
type Pair struct {
	Left  Response
	Right Response
}

// Validate checks both responses and that they share one sample rate.
func (p Pair) Validate() error {
	if err := p.Left.Validate(); err != nil {
		return fmt.Errorf("left: %w", err)
	}

	if err := p.Right.Validate(); err != nil {
		return fmt.Errorf("right: %w", err)
	}

	if p.Left.SampleRate != p.Right.SampleRate {
		return fmt.Errorf("%w: %d vs %d", ErrRateMismatch, p.Left.SampleRate, p.Right.SampleRate)
	}

	return nil
}

// SampleRate returns the rate of the left response.
func (p Pair) SampleRate() int {
	return p.Left.SampleRate
}

// Aligned returns a pair whose right response has been converted to the
// left response's rate.
func (p Pair) Aligned() (Pair, error) {
	if err := p.Left.Validate(); err != nil {
		return Pair{}, fmt.Errorf("left: %w", err)
	}

	right, err := p.Right.Resampled(p.Left.SampleRate)
	if err != nil {
		return Pair{}, fmt.Errorf("right: %w", err)
	}

	return Pair{Left: p.Left, Right: right}, nil
}

// Resampled returns the pair converted to rate. Both responses must share a
// sample rate.
func (p Pair) Resampled(rate int) (Pair, error) {
	if err := p.Validate(); err != nil {
		return Pair{}, err
	}

	left, err := p.Left.Resampled(rate)
	if err != nil {
		return Pair{}, fmt.Errorf("left: %w", err)
	}

	right, err := p.Right.Resampled(rate)
	if err != nil {
		return Pair{}, fmt.Errorf("right: %w", err)
	}

	return Pair{Left: left, Right: right}, nil
}
