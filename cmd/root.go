package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "testa",
	Short: "Polyglot parallel test dispatcher and supervisor",
	Long:  "testa discovers, dispatches, and supervises independent trial-executable test cases in parallel, classifying each into pass/fail/timeout/skip and tracking durations across runs.",
}

// Execute runs the root command and exits the process with status 1
// on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
