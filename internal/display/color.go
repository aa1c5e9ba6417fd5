// Package display renders colorized progress lines for the default
// scheduler callback, the same role color.py plays in the original: ANSI
// color only when standard output is a terminal that supports it.
package display

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/text"
	"golang.org/x/term"
)

func init() {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		text.EnableColors()
	} else {
		text.DisableColors()
	}
}

// Success renders a bracketed, bold green "[SUCCESS]" tag.
func Success() string { return text.FgGreen.Sprint(text.Bold.Sprint("[SUCCESS]")) }

// Failure renders a bracketed, bold red "[FAILURE]" tag.
func Failure() string { return text.FgRed.Sprint(text.Bold.Sprint("[FAILURE]")) }

// Progress renders the "[n]" sequence counter tag in cyan.
func Progress(n int) string { return text.FgCyan.Sprint(fmt.Sprintf("[%d]", n)) }

// Error renders an error message in bold red.
func Error(msg string) string { return text.FgRed.Sprint(text.Bold.Sprint(msg)) }

// StderrLabel renders the "Stderr: " label in red.
func StderrLabel() string { return text.FgRed.Sprint("Stderr: ") }
