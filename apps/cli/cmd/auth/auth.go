package auth

import "github.com/spf13/cobra"

// Command groups token helpers for local development.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Token helpers (staff dev tokens, portal member tokens)",
	}

	cmd.AddCommand(devTokenCommand())
	cmd.AddCommand(portalTokenCommand())
	return cmd
}
