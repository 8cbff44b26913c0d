package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go-pos-ledger/internal/license"
	"go-pos-ledger/pkg/logger"

	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the RSA key pair used to sign licenses",
	Example: `  license-tool keygen --out ./keys
  license-tool keygen --bits 4096 --force`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().String("out", ".", "Directory receiving private-key.pem and public-key.pem")
	keygenCmd.Flags().Int("bits", 2048, "RSA key size")
	keygenCmd.Flags().Bool("force", false, "Overwrite existing keys")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("keygen")

	dir, _ := cmd.Flags().GetString("out")
	bits, _ := cmd.Flags().GetInt("bits")
	force, _ := cmd.Flags().GetBool("force")

	privPath := filepath.Join(dir, "private-key.pem")
	pubPath := filepath.Join(dir, "public-key.pem")
	if !force {
		for _, p := range []string{privPath, pubPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists, use --force to replace it", p)
			}
		}
	}

	privPEM, pubPEM, err := license.GenerateKeys(bits)
	if err != nil {
		return fmt.Errorf("generate keys: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return err
	}

	log.Info().Str("private", privPath).Str("public", pubPath).Int("bits", bits).Msg("key pair written")
	fmt.Printf("Private key: %s (keep it secret)\nPublic key:  %s (ship with the app)\n", privPath, pubPath)
	return nil
}
