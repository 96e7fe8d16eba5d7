package migratecmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	sqlassets "github.com/zenGate-Global/palmyra-gym/database"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
)

// Command groups schema migration helpers.
func Command() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string (defaults to DATABASE_URL)")

	withPool := func(run func(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			return run(ctx, cmd, pool)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withPool(func(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool) error {
			version, err := persistence.Migrate(ctx, pool, source())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: withPool(func(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool) error {
			statuses, err := persistence.Status(ctx, pool, source())
			if err != nil {
				return err
			}
			return printStatus(cmd, statuses)
		}),
	})

	return cmd
}

func source() persistence.MigrationSource {
	return persistence.MigrationSource{FS: sqlassets.Migrations, Dir: sqlassets.MigrationsDir}
}

func printStatus(cmd *cobra.Command, statuses []persistence.MigrationStatus) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tSOURCE")
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, state, s.Source)
	}
	return w.Flush()
}
