package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-idm-impersonation/pkg/tokengenerator"
)

var (
	secret       string
	issuer       string
	audience     string
	expiry       time.Duration
	outputFormat string
	subject      tokengenerator.Subject
)

var rootCmd = &cobra.Command{
	Use:   "tokengen",
	Short: "Issue access tokens for the impersonation service",
	Long: `tokengen signs an HS256 access token whose roles and groups become the
caller's authorities once the impersonation service verifies it.`,
	Example: `  tokengen --user alice --group admins --group devs
  tokengen --user alice --role admin --format debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if subject.UserID == "" {
			return fmt.Errorf("--user is required")
		}

		tokenGen := tokengenerator.NewJwtTokenGenerator(secret, issuer, audience)
		tokenStr, expiryTime, err := tokengenerator.GenerateAccessToken(tokenGen, subject, expiry)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}

		out := cmd.OutOrStdout()
		switch outputFormat {
		case "compact":
			fmt.Fprintln(out, tokenStr)
		case "full":
			fmt.Fprintf(out, "Token: %s\nExpires: %s\n", tokenStr, expiryTime.Format(time.RFC3339))
		case "debug":
			token, err := tokenGen.ParseToken(tokenStr)
			if err != nil {
				return fmt.Errorf("failed to parse generated token: %w", err)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return fmt.Errorf("failed to get claims from token")
			}

			fmt.Fprintf(out, "=== Token Information ===\n")
			fmt.Fprintf(out, "Token: %s\n\n", tokenStr)
			fmt.Fprintf(out, "=== Token Header ===\n")
			headerJSON, _ := json.MarshalIndent(token.Header, "", "  ")
			fmt.Fprintf(out, "%s\n\n", headerJSON)
			fmt.Fprintf(out, "=== Token Claims ===\n")
			claimsJSON, _ := json.MarshalIndent(claims, "", "  ")
			fmt.Fprintf(out, "%s\n\n", claimsJSON)
			fmt.Fprintf(out, "Expires: %s\n", expiryTime.Format(time.RFC3339))
		default:
			return fmt.Errorf("unknown output format: %s", outputFormat)
		}
		return nil
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&secret, "secret", envOr("JWT_SECRET", "very-secure-jwt-secret"), "Secret key for signing the token")
	flags.StringVar(&issuer, "issuer", envOr("JWT_ISSUER", "simple-idm"), "Issuer of the token")
	flags.StringVar(&audience, "audience", os.Getenv("JWT_AUDIENCE"), "Audience of the token")
	flags.DurationVar(&expiry, "expiry", 30*time.Minute, "Token expiry duration (e.g., 30m, 1h, 24h)")
	flags.StringVar(&outputFormat, "format", "compact", "Output format: compact, full, or debug")

	flags.StringVar(&subject.UserID, "user", "", "User id the token is issued for")
	flags.StringVar(&subject.DisplayName, "display-name", "", "Display name of the user")
	flags.StringVar(&subject.Email, "email", "", "Email of the user")
	flags.StringSliceVar(&subject.Roles, "role", nil, "Role granted to the user (repeatable)")
	flags.StringSliceVar(&subject.Groups, "group", nil, "Group the user belongs to (repeatable)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
