package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
)

func portalTokenCommand() *cobra.Command {
	var (
		secret   string
		memberID string
		clientID string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "portaltoken",
		Short: "Sign a member portal session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("PORTAL_SESSION_SECRET")
			}
			if secret == "" {
				return errors.New("--secret or PORTAL_SESSION_SECRET is required")
			}

			member, err := uuid.Parse(memberID)
			if err != nil {
				return fmt.Errorf("invalid --member-id: %w", err)
			}
			client, err := uuid.Parse(clientID)
			if err != nil {
				return fmt.Errorf("invalid --client-id: %w", err)
			}

			issuer, err := portal.NewIssuer(secret, ttl)
			if err != nil {
				return err
			}
			token, _, err := issuer.Issue(portal.MemberAuth{MemberID: member, ClientID: client})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "signing secret; defaults to PORTAL_SESSION_SECRET")
	cmd.Flags().StringVar(&memberID, "member-id", "", "member id (sub claim)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "client id of the member's gym (cid claim)")
	cmd.Flags().DurationVar(&ttl, "ttl", portal.DefaultTTL, "token lifetime")

	_ = cmd.MarkFlagRequired("member-id")
	_ = cmd.MarkFlagRequired("client-id")

	return cmd
}
