package cmd

import (
	"fmt"
	"time"

	"github.com/frahmantamala/uniform-manager/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an operator bearer token",
	Long:  `Sign a bearer token for a dashboard operator with the configured JWT secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		if cfg.Security.JWTSecret == "" {
			return fmt.Errorf("security.jwt_secret is not configured")
		}

		gen := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenTTL, cfg.Security.Issuer)
		token, expiresAt, err := gen.GenerateToken(tokenSubject, tokenRole)
		if err != nil {
			return err
		}

		fmt.Println(token)
		fmt.Printf("expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "operator identifier carried in the sub claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "staff", "operator role: staff, manager or admin")
	_ = tokenCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(tokenCmd)
}
