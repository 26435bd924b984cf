package resample

import "errors"

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality selects a predefined anti-aliasing filter.
type Quality int

const (
	// QualityFast uses short filters with a wide transition band.
	QualityFast Quality = iota
	// QualityBalanced trades filter length against stopband depth.
	QualityBalanced
	// QualityBest uses long filters with a narrow transition band.
	QualityBest
)

// Profile holds the filter parameters of a quality mode.
type Profile struct {
	TapsPerPhase      int
	CutoffScale       float64
	KaiserBeta        float64
	NominalStopbandDB float64
}

// QualityProfile returns the filter parameters used by quality mode q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{TapsPerPhase: 16, CutoffScale: 0.88, KaiserBeta: 5, NominalStopbandDB: 55}
	case QualityBest:
		return Profile{TapsPerPhase: 64, CutoffScale: 0.96, KaiserBeta: 9, NominalStopbandDB: 90}
	default:
		return Profile{TapsPerPhase: 32, CutoffScale: 0.92, KaiserBeta: 7.5, NominalStopbandDB: 75}
	}
}

const defaultMaxDenominator = 4096

type config struct {
	quality      Quality
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
	maxDen       int
}

// Option configures Poly and ForRates.
type Option func(*config)

// WithQuality switches the filter to the profile of q. It clears earlier
// tap, cutoff and window overrides.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
		cfg.tapsPerPhase = 0
		cfg.cutoffScale = 0
		cfg.kaiserBeta = 0
	}
}

// WithTapsPerPhase overrides the number of taps per polyphase branch.
func WithTapsPerPhase(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.tapsPerPhase = n
		}
	}
}

// WithCutoffScale scales the anti-aliasing cutoff. v must be in (0, 1];
// 1 places the cutoff at the lower of the two Nyquist frequencies.
func WithCutoffScale(v float64) Option {
	return func(cfg *config) {
		if v > 0 && v <= 1 {
			cfg.cutoffScale = v
		}
	}
}

// WithKaiserBeta overrides the Kaiser window beta.
func WithKaiserBeta(beta float64) Option {
	return func(cfg *config) {
		if beta >= 0 {
			cfg.kaiserBeta = beta
		}
	}
}

// WithMaxDenominator caps the denominator ForRates uses when it turns a
// rate ratio into up/down factors.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

// finalized fills every unset field from the quality profile.
func (c config) finalized() config {
	p := QualityProfile(c.quality)
	if c.tapsPerPhase <= 0 {
		c.tapsPerPhase = p.TapsPerPhase
	}

	if c.cutoffScale <= 0 || c.cutoffScale > 1 {
		c.cutoffScale = p.CutoffScale
	}

	if c.kaiserBeta <= 0 {
		c.kaiserBeta = p.KaiserBeta
	}

	if c.maxDen <= 0 {
		c.maxDen = defaultMaxDenominator
	}

	return c
}
