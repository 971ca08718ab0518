package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine the next block",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/mine", nil)
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Show the node's full chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/chain", nil)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(chainCmd)
}
