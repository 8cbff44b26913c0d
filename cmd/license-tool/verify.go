package main

import (
	"fmt"
	"os"
	"time"

	"go-pos-ledger/internal/license"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <license.json>",
	Short: "Check a license signature and expiry against a public key",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("pub", "public-key.pem", "Vendor public key")
}

func runVerify(cmd *cobra.Command, args []string) error {
	pubPath, _ := cmd.Flags().GetString("pub")

	blob, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	lic, err := license.Parse(blob)
	if err != nil {
		return err
	}
	pubPEM, err := os.ReadFile(pubPath)
	if err != nil {
		return fmt.Errorf("read public key: %w", err)
	}
	pub, err := license.ParsePublicKey(pubPEM)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}
	if err := license.Verify(lic, pub); err != nil {
		return err
	}

	fmt.Printf("Signature OK\nCustomer: %s (%s)\nFeatures: %v\nIssued:   %s\n",
		lic.CustomerName, lic.CustomerID, lic.Features, lic.IssueDate)
	if lic.ExpiresAt == "" {
		fmt.Println("Expires:  never")
		return nil
	}
	expiry, err := license.ParseTime(lic.ExpiresAt)
	if err != nil {
		return err
	}
	if time.Now().After(expiry) {
		return fmt.Errorf("license expired on %s", expiry.Format("2006-01-02"))
	}
	fmt.Printf("Expires:  %s\n", expiry.Format("2006-01-02"))
	return nil
}
