// Command qopt optimizes query plans from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/qopt/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
