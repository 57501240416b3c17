package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "checkline",
	Short:        "Checkline — grounded Q&A over restaurant compliance checks",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Checkline answers natural-language questions about operational compliance
records. An offline build turns tabular check exports into an embedded fact
index; online commands resolve questions against it.`,
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
