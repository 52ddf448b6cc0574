package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders one kind of content: colored on a color terminal,
// wrapped in prefix and suffix otherwise.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

// Column renders text left-aligned in a field of width runes. Padding is
// added outside the color codes so table columns line up either way.
func (f Formatter) Column(text string, width int) string {
	out := f.render(text)
	if n := width - len([]rune(f.prefix+text+f.suffix)); n > 0 {
		out += strings.Repeat(" ", n)
	}
	return out
}

func EnsureNewline(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

// noColor honors NO_COLOR (https://no-color.org/) and fatih/color's own
// terminal detection.
func noColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return color.NoColor
}

var (
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

var (
	// Code is a command the user can run: `foldervault vault list`.
	Code = Formatter{yellow, "`", "`"}
	Path = Formatter{yellow, "", ""}
	Flag = Formatter{yellow, "", ""}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{yellow, "", ""}
	Info    = Formatter{cyan, "", ""}

	// Highlight is a user-chosen value such as a vault title.
	Highlight = Formatter{cyan, "'", "'"}
	Muted     = Formatter{color.New(color.FgHiBlack), "(", ")"}
)

func SuccessLine(msg string) string { return Success.Sprint("✓") + " " + msg }

func ErrorLine(msg string) string { return Error.Sprint("✗") + " " + msg }

// HintLine marks a suggested next step.
func HintLine(msg string) string { return Info.Sprint("→") + " " + msg }

// ModeFormatter picks the formatter for a vault mode: Success when
// encrypted, Warning when the files are in plaintext.
func ModeFormatter(mode string) Formatter {
	if mode == "encrypted" {
		return Success
	}
	return Warning
}

func VaultMode(mode string) string {
	return ModeFormatter(mode).Sprint(mode)
}
