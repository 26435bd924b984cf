// Package config loads the YAML configuration shared by the upmix binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-upmix/dsp/impulse"
	"github.com/cwbudde/algo-upmix/dsp/layout"
	"github.com/cwbudde/algo-upmix/dsp/normalize"
	"github.com/cwbudde/algo-upmix/dsp/upmix"
	"github.com/cwbudde/algo-upmix/pipeline"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the file layout.
type Config struct {
	Impulse   ImpulseConfig   `yaml:"impulse"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Synth     SynthConfig     `yaml:"synth"`
	Output    OutputConfig    `yaml:"output"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// ImpulseConfig names the reverb impulse files.
type ImpulseConfig struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// NormalizeConfig mirrors the normalize options. A nil Ceiling selects the
// mode's default ceiling.
type NormalizeConfig struct {
	Mode       string   `yaml:"mode"`
	Ceiling    *float64 `yaml:"ceiling,omitempty"`
	TargetLUFS float64  `yaml:"target_lufs"`
	Oversample int      `yaml:"oversample"`
}

// SynthConfig mirrors the synthesizer options.
type SynthConfig struct {
	SwapSurroundBack bool `yaml:"swap_surround_back"`
}

// OutputConfig controls rendering and encoding.
type OutputConfig struct {
	Format   string `yaml:"format"`
	BitDepth int    `yaml:"bit_depth"`
	Tag      bool   `yaml:"tag"`
	FFmpeg   string `yaml:"ffmpeg"`
}

// ServerConfig controls the upload endpoint.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadMB    int64  `yaml:"max_upload_mb"`
	RequestTimeout string `yaml:"request_timeout"`
	AllowOrigin    string `yaml:"allow_origin"`
	TempDir        string `yaml:"temp_dir"`
}

// LogConfig selects level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Impulse: ImpulseConfig{Left: "ir_left.wav", Right: "ir_right.wav"},
		Normalize: NormalizeConfig{
			Mode:       normalize.ModePeak.String(),
			TargetLUFS: normalize.DefaultTargetLUFS,
			Oversample: normalize.DefaultOversample,
		},
		Output: OutputConfig{
			Format:   layout.Format714.String(),
			BitDepth: 24,
			FFmpeg:   "ffmpeg",
		},
		Server: ServerConfig{
			Addr:           ":8000",
			MaxUploadMB:    200,
			RequestTimeout: "5m",
			AllowOrigin:    "*",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.Impulse.Left == "" || c.Impulse.Right == "" {
		return fmt.Errorf("%w: impulse.left and impulse.right are required", ErrInvalid)
	}

	if _, err := c.NormalizeOptions(); err != nil {
		return err
	}

	switch c.Output.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: output.bit_depth %d", ErrInvalid, c.Output.BitDepth)
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: server.max_upload_mb %d", ErrInvalid, c.Server.MaxUploadMB)
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}

	return nil
}

// NormalizeOptions converts the normalize section.
func (c Config) NormalizeOptions() ([]normalize.Option, error) {
	mode, err := normalize.ParseMode(c.Normalize.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: normalize.mode: %w", ErrInvalid, err)
	}

	opts := []normalize.Option{
		normalize.WithMode(mode),
		normalize.WithTargetLUFS(c.Normalize.TargetLUFS),
		normalize.WithOversample(c.Normalize.Oversample),
	}

	if c.Normalize.Ceiling != nil {
		opts = append(opts, normalize.WithCeiling(*c.Normalize.Ceiling))
	}

	if _, err := normalize.New(opts...); err != nil {
		return nil, fmt.Errorf("%w: normalize: %w", ErrInvalid, err)
	}

	return opts, nil
}

// PipelineConfig combines the configured options with irs.
func (c Config) PipelineConfig(irs impulse.Pair) (pipeline.Config, error) {
	norm, err := c.NormalizeOptions()
	if err != nil {
		return pipeline.Config{}, err
	}

	return pipeline.Config{
		IRs:       irs,
		Synth:     []upmix.Option{upmix.WithSwapSurroundBack(c.Synth.SwapSurroundBack)},
		Normalize: norm,
	}, nil
}

// Timeout parses server.request_timeout. Zero disables the deadline.
func (c Config) Timeout() (time.Duration, error) {
	if c.Server.RequestTimeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: server.request_timeout %q", ErrInvalid, c.Server.RequestTimeout)
	}

	return d, nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// Logger returns a logger configured from the log section.
func (c Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	if c.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
