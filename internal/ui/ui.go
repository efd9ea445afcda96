// Package ui implements the terminal surface of the shell: a styled output
// sink built on [lipgloss] and the prompters reading command lines and
// (masked) passwords.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const clearSequence = "\x1b[H\x1b[2J"

// Console is the principal implementation of the output sink. Styling is
// only emitted when the underlying writer is a terminal.
type Console struct {
	out io.Writer

	successStyle lipgloss.Style
	usageStyle   lipgloss.Style
	errorStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	cellStyle    lipgloss.Style
	borderStyle  lipgloss.Style
	userStyle    lipgloss.Style
}

// NewConsole returns a pointer to a new [Console] writing to out.
func NewConsole(out io.Writer) *Console {
	renderer := lipgloss.NewRenderer(out)

	return &Console{
		out: out,

		successStyle: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#23D18B")),

		usageStyle: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B8EEA")),

		errorStyle: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F14C4C")),

		headerStyle: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),

		cellStyle: renderer.NewStyle().
			Padding(0, 1),

		borderStyle: renderer.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")),

		userStyle: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B8EEA")),
	}
}

// PrintLine prints text followed by a newline.
func (c *Console) PrintLine(text string) {
	fmt.Fprintln(c.out, text)
}

// PrintSuccess prints text highlighted as a successful outcome.
func (c *Console) PrintSuccess(text string) {
	fmt.Fprintln(c.out, c.successStyle.Render(text))
}

// PrintUsage prints a usage line.
func (c *Console) PrintUsage(text string) {
	fmt.Fprintln(c.out, c.usageStyle.Render(text))
}

// PrintError prints a single error message.
func (c *Console) PrintError(text string) {
	fmt.Fprintln(c.out, c.errorStyle.Render(text))
}

// PrintTable prints rows under the given headers as a bordered table. Rows
// shorter than the headers are padded with empty cells.
func (c *Console) PrintTable(headers []string, rows [][]string) {
	padded := make([][]string, 0, len(rows))

	for _, row := range rows {
		if len(row) < len(headers) {
			row = append(row, make([]string, len(headers)-len(row))...)
		}

		padded = append(padded, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(c.borderStyle).
		Headers(headers...).
		Rows(padded...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return c.headerStyle
			}

			return c.cellStyle
		})

	fmt.Fprintln(c.out, t.String())
}

// Clear clears the terminal screen and moves the cursor home.
func (c *Console) Clear() {
	fmt.Fprint(c.out, clearSequence)
}

// FormatUser returns the prompt decoration for an authenticated user.
func (c *Console) FormatUser(user string) string {
	return c.userStyle.Render("<" + user + ">")
}

// PrintBanner prints the introduction shown at startup and on reset.
func (c *Console) PrintBanner(version, user string) {
	header := "gshell - Terminal Application " + c.successStyle.Render("["+version+"]")
	if user != "" {
		header += " " + c.FormatUser(user)
	}

	fmt.Fprintln(c.out, header)
	fmt.Fprintln(c.out, "Type 'help' to list the available commands.")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Join(bannerArt, "\n"))
	fmt.Fprintln(c.out)
}
