package normalize

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-upmix/measure/truepeak"
)

// Defaults.
const (
	DefaultCeiling         = 0.891
	DefaultLoudnessCeiling = 0.995
	DefaultTargetLUFS = -16.0
	DefaultOversample = truepeak.Factor4x
)

// Mode selects the normalization strategy.
type Mode int

const (
	ModePeak Mode = iota
	ModeLoudness
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePeak:
		return "peak"
	case ModeLoudness:
		return "loudness"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode resolves a mode name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "peak":
		return ModePeak, nil
	case "loudness":
		return ModeLoudness, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, name)
	}
}

// DefaultCeilingFor returns the ceiling used by mode m when none is set:
// DefaultLoudnessCeiling for ModeLoudness, DefaultCeiling otherwise.
func DefaultCeilingFor(m Mode) float64 {
	if m == ModeLoudness {
		return DefaultLoudnessCeiling
	}

	return DefaultCeiling
}

// Config holds Normalizer settings.
type Config struct {
	Mode       Mode
	Ceiling    float64
	TargetLUFS float64
	Oversample int

	ceilingSet bool
}

// DefaultConfig returns peak mode at DefaultCeiling.
func DefaultConfig() Config {
	return Config{
		Mode:       ModePeak,
		Ceiling:    DefaultCeiling,
		TargetLUFS: DefaultTargetLUFS,
		Oversample: DefaultOversample,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithMode selects the strategy.
func WithMode(m Mode) Option {
	return func(c *Config) { c.Mode = m }
}

// WithCeiling sets the linear true-peak ceiling. Without it the ceiling
// follows the mode, see DefaultCeilingFor.
func WithCeiling(ceiling float64) Option {
	return func(c *Config) {
		c.Ceiling = ceiling
		c.ceilingSet = true
	}
}

// WithTargetLUFS sets the loudness target used by ModeLoudness.
func WithTargetLUFS(lufs float64) Option {
	return func(c *Config) { c.TargetLUFS = lufs }
}

// WithOversample sets the true-peak oversampling factor.
func WithOversample(factor int) Option {
	return func(c *Config) { c.Oversample = factor }
}
