// Package tagger writes channel-layout metadata into rendered WAV files.
package tagger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-upmix/dsp/layout"
)

// DefaultBinary is the ffmpeg executable looked up on PATH.
const DefaultBinary = "ffmpeg"

// ErrToolFailed is returned when the external tool exits unsuccessfully.
var ErrToolFailed = errors.New("tagger: layout tool failed")

// Tagger marks the file at path with the channel layout of f.
type Tagger interface {
	Tag(ctx context.Context, path string, f layout.Format) error
}

// Nop leaves files untouched.
type Nop struct{}

// Tag implements Tagger.
func (Nop) Tag(context.Context, string, layout.Format) error { return nil }

// FFmpeg re-muxes the file through ffmpeg's channelmap filter.
type FFmpeg struct {
	// Binary is the ffmpeg executable, DefaultBinary when empty.
	Binary string
	// Codec is the output PCM codec.
	Codec string
}

// NewFFmpeg returns an FFmpeg tagger writing 24-bit PCM.
func NewFFmpeg(binary string) *FFmpeg {
	return &FFmpeg{Binary: binary, Codec: "pcm_s24le"}
}

// LayoutName returns the layout string passed to ffmpeg. The full bed
// carries the same twelve channels as 7.1.4.
func LayoutName(f layout.Format) string {
	if f == layout.FormatFull {
		return layout.Format714.String()
	}

	return f.String()
}

// Args returns the ffmpeg arguments that tag in and write out.
func (t *FFmpeg) Args(in, out string, f layout.Format) []string {
	codec := t.Codec
	if codec == "" {
		codec = "pcm_s24le"
	}

	return []string{
		"-y", "-loglevel", "error",
		"-i", in,
		"-filter_complex", "channelmap=channel_layout=" + LayoutName(f),
		"-c:a", codec,
		out,
	}
}

// Tag rewrites path in place through a temporary sibling file.
func (t *FFmpeg) Tag(ctx context.Context, path string, f layout.Format) error {
	bin := t.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	tmp := filepath.Join(filepath.Dir(path), ".tag-"+filepath.Base(path))

	log := logrus.WithFields(logrus.Fields{
		"function": "FFmpeg.Tag",
		"path":     path,
		"layout":   LayoutName(f),
	})

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, t.Args(path, tmp, f)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmp)

		log.WithError(err).Warn("Layout tagging failed")

		return fmt.Errorf("%w: %w: %s", ErrToolFailed, err, strings.TrimSpace(stderr.String()))
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("tagger: replace %s: %w", path, err)
	}

	log.Debug("Layout tagged")

	return nil
}
