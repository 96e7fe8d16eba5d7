package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ClientSettingsTable = "client_settings"

// ClientSettings holds per-gym integration configuration.
type ClientSettings struct {
	ClientID        uuid.UUID `db:"client_id"`
	StripeSecretKey *string   `db:"stripe_secret_key"`
	UpdatedAt       time.Time `db:"updated_at"`
}

var clientSettingsTable = Table[ClientSettings]{
	Name:    ClientSettingsTable,
	Columns: []string{"client_id", "stripe_secret_key", "updated_at"},
	Scan: func(row pgx.Row) (ClientSettings, error) {
		var c ClientSettings
		err := row.Scan(&c.ClientID, &c.StripeSecretKey, &c.UpdatedAt)
		return c, err
	},
}

type SettingsStore struct {
	db *ClientDB
}

func NewSettingsStore(db *ClientDB) (*SettingsStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &SettingsStore{db: db}, nil
}

// StripeSecretKey returns the admin-configured key, or nil when none is stored.
func (s *SettingsStore) StripeSecretKey(ctx context.Context, clientID uuid.UUID) (*string, error) {
	settings, err := FindUnique(ctx, s.db.Pool(), clientSettingsTable, ForClient(clientID))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if settings.StripeSecretKey == nil || strings.TrimSpace(*settings.StripeSecretKey) == "" {
		return nil, nil
	}
	return settings.StripeSecretKey, nil
}

// SetStripeSecretKey stores key for clientID; nil clears it.
func (s *SettingsStore) SetStripeSecretKey(ctx context.Context, clientID uuid.UUID, key *string) error {
	return s.db.WithClient(ctx, clientID, func(tx pgx.Tx) error {
		_, err := Upsert(ctx, tx, clientSettingsTable,
			[]string{"client_id"},
			map[string]any{"client_id": clientID, "stripe_secret_key": key},
			map[string]any{"stripe_secret_key": key, "updated_at": sq.Expr("NOW()")},
		)
		return err
	})
}
