package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	sqlassets "github.com/zenGate-Global/palmyra-gym/database"
)

// newTestClientDB starts a disposable Postgres, applies the embedded migrations and returns a ClientDB.
func newTestClientDB(t *testing.T) *ClientDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("palmyra_gym"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() { ClosePool(pool) })

	_, err = Migrate(ctx, pool, MigrationSource{FS: sqlassets.Migrations, Dir: sqlassets.MigrationsDir})
	require.NoError(t, err)

	return NewClientDB(pool)
}

// seedTenant registers a gym and returns its client id.
func seedTenant(t *testing.T, db *ClientDB, slug string) uuid.UUID {
	t.Helper()
	store, err := NewTenantStore(db)
	require.NoError(t, err)
	rec, err := store.Create(context.Background(), CreateTenantParams{Slug: slug, DisplayName: slug + " gym"})
	require.NoError(t, err)
	return rec.ClientID
}

// seedMember inserts a member row for clientID.
func seedMember(t *testing.T, db *ClientDB, clientID uuid.UUID, first, last string) uuid.UUID {
	t.Helper()
	store, err := NewMemberStore(db)
	require.NoError(t, err)
	m, err := store.Create(context.Background(), clientID, CreateMemberParams{
		Email:     fmt.Sprintf("%s.%s@example.com", first, uuid.NewString()[:8]),
		FirstName: first,
		LastName:  last,
	})
	require.NoError(t, err)
	return m.MemberID
}

// mustExec runs a raw statement used to seed tables without a write path in the stores.
func mustExec(t *testing.T, db *ClientDB, sql string, args ...any) {
	t.Helper()
	_, err := db.Pool().Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}
