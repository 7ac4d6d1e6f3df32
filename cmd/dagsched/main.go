// Command dagsched computes a memory-bounded execution order for a DAG of
// compute nodes described by an input file.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/kiyer-oss/dagsched/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
