package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fmastery/admin-console/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as an operator",
	Long:  `Sign in and store the session tokens for later commands. The password is read from stdin when --password is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			password := loginPassword
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			profile, err := d.Flow.Login(ctx, auth.LoginDTO{Email: loginEmail, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", profile.DisplayName())
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.Flow.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in operator and token expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := d.Flow.Profile()
			tw := newTable(out)
			row(tw, "Name", orNA(p.DisplayName()))
			if p != nil {
				row(tw, "Email", orNA(p.Email))
				row(tw, "Role", orNA(p.Role))
			}
			if exp, ok := tokenExpiry(d.Store.Get(ctx).AccessToken); ok {
				row(tw, "Access token expires", exp.Local().Format(time.RFC1123))
			}
			return tw.Flush()
		})
	},
}

// tokenExpiry reads exp from an access token without verifying it; the console never holds
// the signing key and only displays the value.
func tokenExpiry(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "operator email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "operator password")
	_ = loginCmd.MarkFlagRequired("email")
}
