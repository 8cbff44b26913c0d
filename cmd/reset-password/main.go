package main

import (
	"fmt"
	"os"

	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/pkg/database"
	"go-pos-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	var (
		username    string
		newPassword string
	)

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset an operator password and end its sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. Load Env
			if err := godotenv.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "Warning: .env file not found, relying on system env")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(newPassword) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}

			// 2. Setup Database
			dsn := cfg.DBPath
			if cfg.DBDriver == database.DriverPostgres {
				dsn = cfg.PostgresDSN()
			}
			db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: dsn, Log: logger.Nop()})
			if err != nil {
				return err
			}
			defer database.Close(db)

			// 3. Find operator
			userRepo := repository.NewUserRepo(db)
			user, err := userRepo.FindByUsername(username)
			if err != nil {
				return fmt.Errorf("operator %s not found: %w", username, err)
			}

			// 4. Hash and update; a new token version logs out open sessions
			if err := user.SetPassword(newPassword); err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			if err := userRepo.UpdatePassword(user.ID, user.Password); err != nil {
				return fmt.Errorf("failed to update password: %w", err)
			}
			if err := userRepo.UpdateTokenVersion(user.ID, uuid.NewString()); err != nil {
				return fmt.Errorf("failed to revoke sessions: %w", err)
			}

			fmt.Printf("Password for %s has been reset\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", database.DefaultAdminUsername, "operator username")
	cmd.Flags().StringVarP(&newPassword, "password", "p", database.DefaultAdminPassword, "new password")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
