package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	sender    string
	recipient string
	amount    float64
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Submit a transaction to the node's mempool",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := struct {
			Sender    string  `json:"sender"`
			Recipient string  `json:"recipient"`
			Amount    float64 `json:"amount"`
		}{
			Sender:    sender,
			Recipient: recipient,
			Amount:    amount,
		}

		return call(http.MethodPost, "/transactions/new", tx)
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List the transactions waiting to be mined",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/transactions/pending", nil)
	},
}

func init() {
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(pendingCmd)
	txCmd.Flags().StringVarP(&sender, "sender", "s", "", "Who is sending.")
	txCmd.Flags().StringVarP(&recipient, "recipient", "r", "", "Who is receiving.")
	txCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to send.")
	txCmd.MarkFlagRequired("sender")
	txCmd.MarkFlagRequired("recipient")
	txCmd.MarkFlagRequired("amount")
}
