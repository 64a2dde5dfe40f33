// Package main provides vwplan, which generates a daily plan page for a
// wiki from its tag index.
package main

import (
	"os"
	"strings"

	"github.com/calvinalkan/vwplan/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	exitCode := cli.Run(os.Stdout, os.Stderr, os.Args, env)

	os.Exit(exitCode)
}
