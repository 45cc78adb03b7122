// Package main provides the entry point for the stm (System Tool Manager)
// CLI. A delegated command's exit status becomes this process's exit status.
package main

import (
	"errors"
	"os"

	"github.com/emersonmx/stm/internal/cli"
	"github.com/emersonmx/stm/internal/runner"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
