package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var keyPath string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a private key a node can use as its identity",
	RunE:  keygenRun,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keyPath, "key", "k", "node.ecdsa", "Path to write the private key to.")
}

func keygenRun(cmd *cobra.Command, args []string) error {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}

	if err := crypto.SaveECDSA(keyPath, privateKey); err != nil {
		return err
	}

	fmt.Printf("key: %s\nnode id: %s\n", keyPath, crypto.PubkeyToAddress(privateKey.PublicKey).Hex())

	return nil
}
