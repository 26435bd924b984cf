// Command upmix renders stereo WAV files into immersive channel beds.
//
// Usage:
//
//	upmix render song.wav --format 7.1.4
//	upmix serve --addr :8000
//	upmix formats
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-upmix/internal/cli"
	"github.com/cwbudde/algo-upmix/internal/config"
	"github.com/cwbudde/algo-upmix/internal/irload"
	"github.com/cwbudde/algo-upmix/internal/server"
	"github.com/cwbudde/algo-upmix/internal/tagger"
	"github.com/cwbudde/algo-upmix/internal/wavio"
	"github.com/cwbudde/algo-upmix/pipeline"
)

var version = "0.1.0"

const description = "Stereo to immersive bed upmixer"

// versionFlag prints the styled version and exits.
type versionFlag bool

func (versionFlag) BeforeReset(app *kong.Kong) error {
	cli.PrintVersion(app.Stdout, version)
	app.Exit(0)

	return nil
}

// CLI defines the command-line interface.
type CLI struct {
	Config  string      `short:"c" type:"path" help:"Path to YAML config file (optional)."`
	Version versionFlag `short:"v" help:"Show version information."`

	Render      RenderCmd      `cmd:"" help:"Render a stereo WAV file."`
	Serve       ServeCmd       `cmd:"" help:"Run the HTTP upload endpoint."`
	Formats     FormatsCmd     `cmd:"" help:"List the output formats."`
	PrintConfig PrintConfigCmd `cmd:"" name:"print-config" help:"Print the effective configuration as YAML."`
}

// env carries what every command needs.
type env struct {
	cfg    config.Config
	log    *logrus.Logger
	stdout io.Writer
}

// RenderCmd renders one file.
type RenderCmd struct {
	In  string `arg:"" type:"existingfile" help:"Stereo WAV input."`
	Out string `arg:"" optional:"" type:"path" help:"Output WAV (default <in>_<format>.wav next to the input)."`

	Format     string   `short:"f" placeholder:"NAME" help:"Output format: 5.1, 5.1.2, 7.1, 7.1.2 or 7.1.4."`
	Mode       string   `help:"Normalization mode (peak or loudness)."`
	Ceiling    *float64 `help:"True-peak ceiling, linear (default 0.891 peak, 0.995 loudness)."`
	Target     *float64 `help:"Loudness target in LUFS."`
	Oversample *int     `help:"True-peak oversampling factor."`
	BitDepth   int      `help:"Output bit depth (16, 24 or 32)."`
	Swap       *bool    `name:"swap-surround-back" help:"Swap surround and back pairs."`
	Tag        *bool    `help:"Write the channel layout with ffmpeg."`
}

// apply overlays the flags on cfg.
func (c *RenderCmd) apply(cfg *config.Config) {
	if c.Format != "" {
		cfg.Output.Format = c.Format
	}

	if c.Mode != "" {
		cfg.Normalize.Mode = c.Mode
	}

	if c.Ceiling != nil {
		cfg.Normalize.Ceiling = c.Ceiling
	}

	if c.Target != nil {
		cfg.Normalize.TargetLUFS = *c.Target
	}

	if c.Oversample != nil {
		cfg.Normalize.Oversample = *c.Oversample
	}

	if c.BitDepth != 0 {
		cfg.Output.BitDepth = c.BitDepth
	}

	if c.Swap != nil {
		cfg.Synth.SwapSurroundBack = *c.Swap
	}

	if c.Tag != nil {
		cfg.Output.Tag = *c.Tag
	}
}

// Run renders c.In.
func (c *RenderCmd) Run(e *env) error {
	cfg := e.cfg
	c.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := newPipeline(cfg, e.log)
	if err != nil {
		return err
	}

	stereo, _, err := wavio.ReadStereoFile(c.In)
	if err != nil {
		return err
	}

	out, err := p.Run(stereo, cfg.Output.Format)
	if err != nil {
		return err
	}

	dest := c.Out
	if dest == "" {
		dest = filepath.Join(filepath.Dir(c.In), server.OutputName(filepath.Base(c.In), out.Format))
	}

	if err := wavio.WriteFile(dest, out.Buffer, cfg.Output.BitDepth); err != nil {
		return err
	}

	if err := newTagger(cfg).Tag(context.Background(), dest, out.Format); err != nil {
		return err
	}

	cli.PrintResult(e.stdout, dest, out)

	return nil
}

// ServeCmd runs the upload server.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)."`
}

// Run serves until interrupted.
func (c *ServeCmd) Run(e *env) error {
	cfg := e.cfg
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	p, err := newPipeline(cfg, e.log)
	if err != nil {
		return err
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	srv := server.New(p, server.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Timeout:        timeout,
		AllowOrigin:    cfg.Server.AllowOrigin,
		DefaultFormat:  cfg.Output.Format,
		BitDepth:       cfg.Output.BitDepth,
		TempDir:        cfg.Server.TempDir,
		Tagger:         newTagger(cfg),
		Logger:         logrus.NewEntry(e.log),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// FormatsCmd lists the formats.
type FormatsCmd struct{}

// Run prints the format table.
func (FormatsCmd) Run(e *env) error {
	cli.PrintFormats(e.stdout)
	return nil
}

// PrintConfigCmd prints the merged configuration.
type PrintConfigCmd struct{}

// Run prints YAML.
func (PrintConfigCmd) Run(e *env) error {
	data, err := e.cfg.Marshal()
	if err != nil {
		return err
	}

	_, err = e.stdout.Write(data)

	return err
}

func newPipeline(cfg config.Config, log *logrus.Logger) (*pipeline.Pipeline, error) {
	entry := logrus.NewEntry(log)

	irs, err := irload.Load(cfg.Impulse.Left, cfg.Impulse.Right, entry)
	if err != nil {
		return nil, err
	}

	pc, err := cfg.PipelineConfig(irs)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pc, pipeline.WithLogger(entry))
}

func newTagger(cfg config.Config) tagger.Tagger {
	if !cfg.Output.Tag {
		return tagger.Nop{}
	}

	return tagger.NewFFmpeg(cfg.Output.FFmpeg)
}

// run parses args and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var c CLI

	parser, err := kong.New(&c,
		kong.Name("upmix"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Help(cli.StyledHelpPrinter(description)),
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}

	logger.SetOutput(stderr)

	return ctx.Run(&env{cfg: cfg, log: logger, stdout: stdout})
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
