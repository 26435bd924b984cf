package loudness

// MeterConfig defines configuration for the loudness meter.
type MeterConfig struct {
	SampleRate float64
	Channels   int
	// Weights are the per-channel gains G_i applied to mean squares. Missing
	// entries default to 1.
	Weights []float64
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns sensible defaults.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		SampleRate: 48000,
		Channels:   2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) MeterOption {
	return func(cfg *MeterConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithChannels sets the number of channels (1 for mono, 2 for stereo).
func WithChannels(channels int) MeterOption {
	return func(cfg *MeterConfig) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// WithChannelWeights sets the per-channel power weights.
func WithChannelWeights(weights []float64) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Weights = append([]float64(nil), weights...)
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
