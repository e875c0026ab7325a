// Package cli implements devilctl, the operator tool for the dashboard:
// sample data generation, offline summaries and smoke tests.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrSmoke reports a failed smoke check.
var ErrSmoke = errors.New("smoke check failed")

// NewRootCommand builds the devilctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "devilctl",
		Short:         "Devil-match dashboard operator tool",
		Long:          "Generate sample result files, summarise result files offline and smoke-test a running dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCommand())
	root.AddCommand(newSummaryCommand())
	root.AddCommand(newSmokeCommand())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
