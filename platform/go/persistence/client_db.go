package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// ClientDB wraps the shared pool. Reads go straight to the pool with client-scoped filters; writes
// run in WithClient so row level security sees the same client id.
type ClientDB struct {
	pool   *pgxpool.Pool
	txPool txBeginner
}

func NewClientDB(pool *pgxpool.Pool) *ClientDB {
	if pool == nil {
		panic("ClientDB requires pool")
	}
	return &ClientDB{pool: pool, txPool: pool}
}

// Pool returns the underlying pool for concurrent reads.
func (db *ClientDB) Pool() *pgxpool.Pool {
	return db.pool
}

// WithClient executes fn inside a transaction with app.client_id set to clientID.
func (db *ClientDB) WithClient(ctx context.Context, clientID uuid.UUID, fn func(tx pgx.Tx) error) error {
	if clientID == uuid.Nil {
		return errors.New("client id is required")
	}

	tx, err := db.txPool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT set_config('app.client_id', $1, true)`, clientID.String()); err != nil {
		return fmt.Errorf("set client scope: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
