package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <address>...",
	Short: "Register peers with the node",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes := struct {
			Nodes []string `json:"nodes"`
		}{
			Nodes: args,
		}

		return call(http.MethodPost, "/nodes/register", nodes)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Ask the node to adopt the longest valid chain among its peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/nodes/resolve", nil)
	},
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List the node's known peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/nodes/list", nil)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(peersCmd)
}
