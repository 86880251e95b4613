// Package ui holds the terminal output helpers of the crsheet CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

var (
	// Out receives results; Err receives status and errors.
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr

	verboseFlag bool
	quiet       bool
)

// InitUI applies the color and verbosity settings.
func InitUI(noColor, verbose bool) {
	verboseFlag = verbose
	if noColor {
		color.NoColor = true
	}
}

// SetOutput redirects output, for tests and for commands that print
// machine readable results. Spinners are suppressed while redirected.
func SetOutput(out, errOut io.Writer) {
	Out, Err = out, errOut
	quiet = true
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verboseFlag
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

// Success displays a success message.
func Success(format string, args ...interface{}) {
	green.Fprint(Out, "✓ ")
	fmt.Fprintf(Out, format+"\n", args...)
}

// Warning displays a warning message.
func Warning(format string, args ...interface{}) {
	yellow.Fprint(Err, "⚠ ")
	fmt.Fprintf(Err, format+"\n", args...)
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	red.Fprint(Err, "✗ ")
	fmt.Fprintf(Err, format+"\n", args...)
}

// Info displays an informational message.
func Info(format string, args ...interface{}) {
	cyan.Fprint(Out, "ℹ ")
	fmt.Fprintf(Out, format+"\n", args...)
}

// Section displays a section header.
func Section(title string) {
	bold.Fprintf(Out, "\n%s\n", title)
	fmt.Fprintf(Out, "%s\n\n", strings.Repeat("=", len([]rune(title))))
}

// Table displays rows under headers, aligned in columns. Cells containing
// newlines are flattened so rows stay on one line.
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))
	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(w, strings.Join(separator, "\t"))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "\n", " ")
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner with the given message. It does nothing
// when output is redirected.
func NewSpinner(message string) *Spinner {
	if quiet {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = Err
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	if s.spinner != nil {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}

// UpdateMessage updates the spinner's message.
func (s *Spinner) UpdateMessage(message string) {
	if s.spinner != nil {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}
