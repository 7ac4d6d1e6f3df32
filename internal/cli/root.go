// Package cli assembles the dagsched command tree, grounded in
// picklr-io-picklr's internal/cli (one cobra.Command per verb, registered
// from an init in the owning file) and specialistvlad-burstgridgo's
// exit-code-carrying error for mapping a run's outcome onto os.Exit.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dagsched",
	Short: "Sequential memory-bounded DAG scheduler",
	Long: `dagsched computes an execution order for a DAG of compute nodes under a
hard peak-memory budget, minimizing total time subject to the budget never
being exceeded.`,
	// Exit codes are significant; main prints *ExitError itself,
	// so cobra's own usage dump and "Error: " prefix would only duplicate it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// ExitError carries the process exit code a failure should produce, the way
// burstgridgo's internal/cli.ExitError does.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}
