package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command ties a flag set to the function run once flags are parsed.
type Command struct {
	Flags *flag.FlagSet

	// Usage is the synopsis line, e.g. "vwplan [flags]".
	Usage string

	// Short is a one-line summary, used when Long is empty.
	Short string
	Long  string

	Exec func(ctx context.Context, o *IO, args []string) error
}

// writeHelp renders the synopsis, description and flag defaults to w.
func (c *Command) writeHelp(w io.Writer) {
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	_, _ = fmt.Fprintf(w, "Usage: %s\n\n%s\n", c.Usage, desc)

	if c.Flags == nil || !c.Flags.HasFlags() {
		return
	}

	var defaults strings.Builder
	c.Flags.SetOutput(&defaults)
	c.Flags.PrintDefaults()

	_, _ = fmt.Fprintf(w, "\nFlags:\n%s", defaults.String())
}

// Run parses args and executes the command, returning the exit code.
// Errors are printed here; --help goes to stdout, usage errors put the
// help text on stderr after the error.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			var help strings.Builder
			c.writeHelp(&help)
			o.Printf("%s", help.String())

			return 0
		}

		o.Error(err)
		o.ErrPrintln()
		c.writeHelp(o.ErrWriter())

		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.Error(err)

		return 1
	}

	return 0
}
