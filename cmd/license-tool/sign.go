package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go-pos-ledger/internal/license"
	"go-pos-ledger/pkg/logger"

	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign <request.json>",
	Short: "Turn an activation request into a signed license",
	Example: `  # Perpetual license with every feature
  license-tool sign request.json

  # One year, selling and reports only
  license-tool sign request.json --expires 365 --features basic,reports`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().String("key", "private-key.pem", "Vendor private key")
	signCmd.Flags().String("out", "license.json", "Output license file")
	signCmd.Flags().Int("expires", 0, "Validity in days, 0 for perpetual")
	signCmd.Flags().StringSlice("features", nil, "Granted features (default: all)")
}

func runSign(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sign")

	keyPath, _ := cmd.Flags().GetString("key")
	out, _ := cmd.Flags().GetString("out")
	expires, _ := cmd.Flags().GetInt("expires")
	features, _ := cmd.Flags().GetStringSlice("features")

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req license.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("request is not valid JSON: %w", err)
	}
	if req.MACHash == "" || req.DeviceID == "" || req.CustomerName == "" {
		return fmt.Errorf("request is missing macHash, deviceId or customerName")
	}

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("read private key: %w", err)
	}
	key, err := license.ParsePrivateKey(keyPEM)
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}

	lic, err := license.Issue(req, key, features, expires, time.Now())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(lic, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	log.Info().
		Str("customer", lic.CustomerName).
		Str("customer_id", lic.CustomerID).
		Strs("features", lic.Features).
		Str("expires_at", lic.ExpiresAt).
		Msg("license issued")
	fmt.Printf("License written to %s\n", out)
	return nil
}
