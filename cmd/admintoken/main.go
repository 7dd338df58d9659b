package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"referral-miniapp-backend/internal/config"
	"referral-miniapp-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		adminID int64
		expiry  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "admintoken",
		Short: "mint a bearer token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if adminID <= 0 {
				return fmt.Errorf("--admin must be a positive telegram user id")
			}
			if len(cfg.AdminUserIDs) > 0 && !slices.Contains(cfg.AdminUserIDs, adminID) {
				return fmt.Errorf("user %d is not listed in ADMIN_USER_IDS", adminID)
			}
			if expiry > 0 {
				cfg.JWTExpiry = expiry
			}

			token, err := services.NewJWTService(cfg).GenerateToken(adminID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&adminID, "admin", 0, "telegram user id of the admin")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime, defaults to JWT_EXPIRY")
	cmd.MarkFlagRequired("admin")

	return cmd
}
