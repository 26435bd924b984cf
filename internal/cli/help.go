package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter renders kong help with the package styles.
func StyledHelpPrinter(description string) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		node := ctx.Selected()
		if node == nil {
			node = ctx.Model.Node
		}

		sb.WriteString(TitleStyle.Render("upmix"))
		sb.WriteString("\n")
		sb.WriteString(KeyStyle.Render(description))
		sb.WriteString("\n\n")

		sb.WriteString(SectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(node.Summary())
		sb.WriteString("\n")

		if len(node.Children) > 0 {
			sb.WriteString("\n")
			sb.WriteString(SectionStyle.Render("Commands:"))
			sb.WriteString("\n")

			for _, c := range node.Children {
				if c.Hidden {
					continue
				}

				fmt.Fprintf(&sb, "  %s  %s\n", helpArgStyle.Render(c.Name), c.Help)
			}
		}

		if len(node.Positional) > 0 {
			sb.WriteString("\n")
			sb.WriteString(SectionStyle.Render("Arguments:"))
			sb.WriteString("\n")

			for _, arg := range node.Positional {
				fmt.Fprintf(&sb, "  %s  %s\n", helpArgStyle.Render(arg.Summary()), arg.Help)
			}
		}

		flags := node.AllFlags(true)
		if len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(SectionStyle.Render("Flags:"))
			sb.WriteString("\n")

			for _, group := range flags {
				for _, f := range group {
					sb.WriteString("  ")
					sb.WriteString(helpFlagStyle.Render(f.String()))

					if f.Help != "" {
						sb.WriteString("  ")
						sb.WriteString(f.Help)
					}

					if f.Default != "" {
						sb.WriteString(" ")
						sb.WriteString(helpDefaultStyle.Render("(default: " + f.Default + ")"))
					}

					sb.WriteString("\n")
				}
			}
		}

		fmt.Fprint(ctx.Stdout, sb.String())

		return nil
	}
}
