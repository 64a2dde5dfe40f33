package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IO handles command output with warning visibility.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
	color    bool
}

// NewIO creates a new IO instance. Diagnostic prefixes are coloured only
// when errOut is a terminal.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut, color: isTerminal(errOut)}
}

// Warn records a recoverable problem, e.g. a skipped tag index line.
//
// Warnings are printed to stderr at both the START and END of output,
// ensuring visibility regardless of truncation or piping (head/tail).
// They do not change the exit code; use --strict or --fail-fast for that.
func (o *IO) Warn(msg string) {
	o.warnings = append(o.warnings, msg)
}

// Println writes to stdout. On first call, any collected warnings
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// warnings are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Error prints err to stderr with an "error:" prefix.
func (o *IO) Error(err error) {
	o.ErrPrintln(o.paint(color.FgRed, "error:"), err)
}

// ErrWriter returns the stderr writer, for loggers.
func (o *IO) ErrWriter() io.Writer {
	return o.errOut
}

// Finish prints warnings to stderr.
func (o *IO) Finish() {
	// If no output happened but we have warnings, print them at "start" position
	o.flushWarningsStart()

	// Always print at end
	o.printWarnings()
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		o.printWarnings()
		o.started = true
	}
}

func (o *IO) printWarnings() {
	for _, w := range o.warnings {
		o.ErrPrintln(o.paint(color.FgYellow, "warning:"), w)
	}
}

func (o *IO) paint(attr color.Attribute, s string) string {
	if !o.color {
		return s
	}

	c := color.New(attr, color.Bold)
	c.EnableColor()

	return c.Sprint(s)
}

func isTerminal(w io.Writer) bool {
	if color.NoColor {
		return false
	}

	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}
