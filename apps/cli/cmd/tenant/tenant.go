package tenantcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	staffservice "github.com/zenGate-Global/palmyra-gym/domains/staff/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
)

// Command groups tenant-related helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Tenant utilities (register a gym)",
	}

	cmd.AddCommand(createCommand())
	return cmd
}

type createOptions struct {
	Slug         string
	Name         string
	OwnerEmail   string
	OwnerName    string
	OwnerAuthUID string
}

func (o createOptions) validate() error {
	if strings.TrimSpace(o.Slug) == "" {
		return errors.New("--slug is required")
	}
	if (o.OwnerAuthUID == "") != (o.OwnerEmail == "") {
		return errors.New("--owner-auth-uid and --owner-email must be set together")
	}
	return nil
}

type tenantCreator interface {
	Create(ctx context.Context, params persistence.CreateTenantParams) (persistence.TenantRecord, error)
}

type staffCreator interface {
	Create(ctx context.Context, clientID uuid.UUID, params persistence.CreateStaffUserParams) (persistence.StaffUser, error)
}

func createCommand() *cobra.Command {
	var (
		databaseURL string
		opts        createOptions
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Register a gym and optionally its owner staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}

			ctx := cmd.Context()
			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			db := persistence.NewClientDB(pool)
			tenants, err := persistence.NewTenantStore(db)
			if err != nil {
				return fmt.Errorf("init tenant store: %w", err)
			}
			staff, err := persistence.NewStaffStore(db)
			if err != nil {
				return fmt.Errorf("init staff store: %w", err)
			}

			return runCreate(ctx, cmd.OutOrStdout(), tenants, staff, opts)
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string (defaults to DATABASE_URL)")
	c.Flags().StringVar(&opts.Slug, "slug", "", "subdomain slug, e.g. ironworks")
	c.Flags().StringVar(&opts.Name, "name", "", "display name; defaults to the slug")
	c.Flags().StringVar(&opts.OwnerEmail, "owner-email", "", "owner staff email")
	c.Flags().StringVar(&opts.OwnerName, "owner-name", "", "owner staff full name")
	c.Flags().StringVar(&opts.OwnerAuthUID, "owner-auth-uid", "", "owner identity provider uid")

	return c
}

func runCreate(ctx context.Context, out io.Writer, tenants tenantCreator, staff staffCreator, opts createOptions) error {
	rec, err := tenants.Create(ctx, persistence.CreateTenantParams{Slug: opts.Slug, DisplayName: opts.Name})
	if err != nil {
		if errors.Is(err, persistence.ErrTenantConflict) {
			return fmt.Errorf("tenant %q already exists", opts.Slug)
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	fmt.Fprintf(out, "tenant %s created (client_id=%s)\n", rec.Slug, rec.ClientID)

	if opts.OwnerAuthUID == "" {
		return nil
	}

	owner, err := staff.Create(ctx, rec.ClientID, persistence.CreateStaffUserParams{
		AuthUID:  opts.OwnerAuthUID,
		Email:    opts.OwnerEmail,
		FullName: opts.OwnerName,
		Role:     staffservice.RoleOwner,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrStaffUserConflict) {
			return fmt.Errorf("owner %q already exists for tenant %s", opts.OwnerAuthUID, rec.Slug)
		}
		return fmt.Errorf("create owner: %w", err)
	}
	fmt.Fprintf(out, "owner %s created (id=%s)\n", owner.Email, owner.UserID)
	return nil
}
