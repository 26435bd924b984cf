package bank

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-upmix/dsp/filter/biquad"
	"github.com/cwbudde/algo-upmix/dsp/filter/design/pass"
)

// DefaultOrder is the Butterworth order used by Apply.
const DefaultOrder = 4

// Errors returned by filter design and application.
var (
	ErrInvalidFilterParameter = errors.New("bank: invalid filter parameter")
	ErrInvalidOrder           = errors.New("bank: filter order must be positive")
)

// Kind selects the filter response.
type Kind int

const (
	// KindLowpass passes content below the cutoff.
	KindLowpass Kind = iota
	// KindHighpass passes content above the cutoff.
	KindHighpass
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLowpass:
		return "lowpass"
	case KindHighpass:
		return "highpass"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Bank designs and applies Butterworth filters of a fixed order.
// The zero value is not usable; construct with New.
type Bank struct {
	order int
}

// Option configures a Bank.
type Option func(*Bank)

// WithOrder sets the Butterworth order. Non-positive values are ignored.
func WithOrder(order int) Option {
	return func(b *Bank) {
		if order > 0 {
			b.order = order
		}
	}
}

// New returns a Bank with DefaultOrder unless overridden.
func New(opts ...Option) *Bank {
	b := &Bank{order: DefaultOrder}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

var defaultBank = New()

// Apply filters signal with a DefaultOrder Butterworth filter.
func Apply(signal []float64, sampleRate, cutoffHz float64, kind Kind) ([]float64, error) {
	return defaultBank.Apply(signal, sampleRate, cutoffHz, kind)
}

// Order returns the Butterworth order.
func (b *Bank) Order() int {
	return b.order
}

// Design returns the second-order sections for the requested filter.
func (b *Bank) Design(sampleRate, cutoffHz float64, kind Kind) ([]biquad.Coefficients, error) {
	if b.order <= 0 {
		return nil, ErrInvalidOrder
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate %v", ErrInvalidFilterParameter, sampleRate)
	}

	if !(cutoffHz > 0 && cutoffHz < sampleRate/2) {
		return nil, fmt.Errorf("%w: cutoff %v Hz outside (0, %v)",
			ErrInvalidFilterParameter, cutoffHz, sampleRate/2)
	}

	var sections []biquad.Coefficients

	switch kind {
	case KindLowpass:
		sections = pass.ButterworthLP(cutoffHz, b.order, sampleRate)
	case KindHighpass:
		sections = pass.ButterworthHP(cutoffHz, b.order, sampleRate)
	default:
		return nil, fmt.Errorf("%w: unknown kind %v", ErrInvalidFilterParameter, kind)
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: design failed for %v at %v Hz", ErrInvalidFilterParameter, kind, cutoffHz)
	}

	for i := range sections {
		if !sections[i].Stable() {
			return nil, fmt.Errorf("%w: unstable %v section at %v Hz", ErrInvalidFilterParameter, kind, cutoffHz)
		}
	}

	return sections, nil
}

// Apply returns signal filtered by the requested Butterworth filter. The
// output has the same length as signal; signal is not modified.
func (b *Bank) Apply(signal []float64, sampleRate, cutoffHz float64, kind Kind) ([]float64, error) {
	sections, err := b.Design(sampleRate, cutoffHz, kind)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out, nil
	}

	biquad.NewChain(sections).ProcessBlockTo(out, signal)

	return out, nil
}
