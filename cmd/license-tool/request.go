package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go-pos-ledger/internal/license"

	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Short:   "Write the activation request of this machine",
	Example: `  license-tool request --customer "Superette El Amel" --out request.json`,
	RunE:    runRequest,
}

func init() {
	rootCmd.AddCommand(requestCmd)

	requestCmd.Flags().String("customer", "", "Customer name (required)")
	requestCmd.Flags().String("out", "license-request.json", "Output file, - for stdout")
	requestCmd.Flags().String("app-version", "1.0.0", "Application version recorded in the request")
	_ = requestCmd.MarkFlagRequired("customer")
}

func runRequest(cmd *cobra.Command, args []string) error {
	customer, _ := cmd.Flags().GetString("customer")
	out, _ := cmd.Flags().GetString("out")
	version, _ := cmd.Flags().GetString("app-version")

	engine := license.NewEngine(license.Options{AppVersion: version})
	req, err := engine.GenerateRequest(customer)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return err
	}
	if out == "-" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Request written to %s\n", out)
	return nil
}
