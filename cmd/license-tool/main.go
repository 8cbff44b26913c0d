package main

import (
	"fmt"
	"os"

	"go-pos-ledger/pkg/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "license-tool",
	Short: "Offline license issuing for POS Ledger",
	Long: `license-tool creates the vendor key pair, reads activation requests
produced on customer machines and signs them into license files.

The private key never leaves the vendor machine; only public-key.pem ships
with the application.`,
	SilenceUsage: true,
}

func main() {
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
