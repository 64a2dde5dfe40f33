// Package cli implements the vwplan command line.
package cli

import (
	"context"
	"io"
)

const minArgs = 1

// Run is the main entry point. args includes the program name.
// Returns exit code.
func Run(out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	o := NewIO(out, errOut)

	if len(args) < minArgs {
		args = []string{"vwplan"}
	}

	cmd := PlanCmd(env)
	code := cmd.Run(context.Background(), o, args[1:])

	// Warnings are reported even when the run failed.
	o.Finish()

	return code
}
