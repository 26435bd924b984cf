// Package cli renders terminal output for the upmix command.
package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-upmix/dsp/layout"
	"github.com/cwbudde/algo-upmix/pipeline"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#1E6FD9")
	accentColor  = lipgloss.Color("#FFA500")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000"))

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)
)

// PrintVersion prints version information.
func PrintVersion(w io.Writer, version string) {
	fmt.Fprintln(w, TitleStyle.Render("upmix"))
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message.
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintFormats lists every selectable format with its channel labels.
func PrintFormats(w io.Writer) {
	fmt.Fprintln(w, SectionStyle.Render("Formats:"))

	for _, f := range layout.Named() {
		fmt.Fprintf(w, "  %s %s\n",
			ValueStyle.Render(fmt.Sprintf("%-6s", f.String())),
			KeyStyle.Render(strings.Join(f.Labels(), ", ")))
	}
}

// PrintResult summarizes a rendered file.
func PrintResult(w io.Writer, path string, out pipeline.Output) {
	res := out.Result

	rows := [][2]string{
		{"Output", path},
		{"Format", formatName(out)},
		{"Channels", fmt.Sprintf("%d @ %d Hz", out.Buffer.NumChannels(), out.Buffer.SampleRate)},
		{"Mode", res.Mode.String()},
		{"Gain", fmt.Sprintf("%+.2f dB", res.GainDB)},
		{"Loudness", fmt.Sprintf("%s -> %s", lufs(res.Before.LoudnessLUFS), lufs(res.After.LoudnessLUFS))},
		{"True peak", fmt.Sprintf("%.3f -> %.3f", res.Before.TruePeak, res.After.TruePeak)},
	}

	if res.Clamped {
		rows = append(rows, [2]string{"Limited", "ceiling reached"})
	}

	fmt.Fprintln(w, TitleStyle.Render("Rendered"))

	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%-10s", r[0]+":")), ValueStyle.Render(r[1]))
	}
}

func formatName(out pipeline.Output) string {
	if out.Fallback {
		return fmt.Sprintf("%s (unknown %q)", out.Format, out.Requested)
	}

	return out.Format.String()
}

func lufs(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf LUFS"
	}

	return fmt.Sprintf("%.1f LUFS", v)
}
