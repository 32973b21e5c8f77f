// Package cli implements the papaleguas command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "papaleguas",
	Short: "Papaléguas delivery driver simulator",
	Long: `Papaléguas simulates the day of a delivery driver: go online, receive
mission offers, ride to the store, collect the order and confirm the
drop-off with the customer's code. State is served over a local HTTP
API for the driver UI.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
