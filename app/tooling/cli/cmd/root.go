// Package cmd contains the node client commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var nodeURL string

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:5000", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Client for a proof of work blockchain node",
}

// Execute runs the command specified on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
