// Package display provides terminal output formatting for the human-facing
// plangate commands (status, resume, clear). Hook commands never use it;
// their only output is the JSON response.
package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Display renders plan information to the terminal.
type Display struct {
	termWidth int

	Bold   func(a ...interface{}) string
	Cyan   func(a ...interface{}) string
	Green  func(a ...interface{}) string
	Yellow func(a ...interface{}) string
	Red    func(a ...interface{}) string
}

// New creates a Display sized to the current terminal.
func New() *Display {
	return &Display{
		termWidth: getTerminalWidth(),
		Bold:      color.New(color.Bold).SprintFunc(),
		Cyan:      color.New(color.FgCyan).SprintFunc(),
		Green:     color.New(color.FgGreen).SprintFunc(),
		Yellow:    color.New(color.FgYellow).SprintFunc(),
		Red:       color.New(color.FgRed).SprintFunc(),
	}
}

// getTerminalWidth returns the terminal width, defaulting to 80
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120
	}
	return width
}

// Bar renders a progress bar like [████░░░░░░] 40%.
func (d *Display) Bar(completed, total int) string {
	if total == 0 {
		return ""
	}
	barWidth := 20
	if d.termWidth < 60 {
		barWidth = 10
	}
	progress := float64(completed) / float64(total)
	filled := int(progress * float64(barWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("[%s] %d%% (%d/%d)", bar, int(progress*100), completed, total)
}

// StatusIcon returns a glyph for a completion ratio.
func (d *Display) StatusIcon(completed, total int) string {
	switch {
	case total > 0 && completed == total:
		return d.Green("✓")
	case completed > 0:
		return d.Yellow("◐")
	default:
		return "○"
	}
}
