package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const AuditLogTable = "audit_log"

// AuditLogEntry is an immutable record of a change made inside a gym.
type AuditLogEntry struct {
	AuditID    uuid.UUID `db:"audit_id" json:"id"`
	ClientID   uuid.UUID `db:"client_id" json:"-"`
	EntityType string    `db:"entity_type" json:"entityType"`
	EntityID   string    `db:"entity_id" json:"entityId"`
	Summary    string    `db:"summary" json:"summary"`
	Actor      string    `db:"actor" json:"actor"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// NewAuditEntry is appended alongside the write it describes.
type NewAuditEntry struct {
	EntityType string
	EntityID   string
	Summary    string
	Actor      string
}

// AuditLogFilter narrows a listing: exact entity type, substring of summary, inclusive
// created_at bounds.
type AuditLogFilter struct {
	EntityType  *string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

var auditLogTable = Table[AuditLogEntry]{
	Name:    AuditLogTable,
	Columns: []string{"audit_id", "client_id", "entity_type", "entity_id", "summary", "actor", "created_at"},
	Scan: func(row pgx.Row) (AuditLogEntry, error) {
		var e AuditLogEntry
		err := row.Scan(&e.AuditID, &e.ClientID, &e.EntityType, &e.EntityID, &e.Summary, &e.Actor, &e.CreatedAt)
		return e, err
	},
}

// newest first; audit_id breaks ties so paging is stable.
var auditLogOrder = []string{"created_at DESC", "audit_id DESC"}

type AuditLogStore struct {
	db *ClientDB
}

func NewAuditLogStore(db *ClientDB) (*AuditLogStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &AuditLogStore{db: db}, nil
}

func auditLogWhere(clientID uuid.UUID, filter AuditLogFilter) Filter {
	where := EqIfSet(ForClient(clientID), "entity_type", filter.EntityType)
	where = Range(where, "created_at", filter.CreatedFrom, filter.CreatedTo)
	return where.Contains("summary", filter.Search)
}

// List returns one page of entries plus the total under the same filter.
func (s *AuditLogStore) List(ctx context.Context, clientID uuid.UUID, filter AuditLogFilter, limit, offset int) (Page[AuditLogEntry], error) {
	return FindPage(ctx, s.db.Pool(), auditLogTable, auditLogWhere(clientID, filter), auditLogOrder, limit, offset)
}

// ListAll returns every matching entry, newest first. Used by the CSV export.
func (s *AuditLogStore) ListAll(ctx context.Context, clientID uuid.UUID, filter AuditLogFilter) ([]AuditLogEntry, error) {
	return FindMany(ctx, s.db.Pool(), auditLogTable, auditLogWhere(clientID, filter), FindOptions{OrderBy: auditLogOrder})
}

// Append records entry for clientID within q, normally the transaction of the write it describes.
func (s *AuditLogStore) Append(ctx context.Context, q Querier, clientID uuid.UUID, entry NewAuditEntry) error {
	return appendAudit(ctx, q, clientID, entry)
}

func appendAudit(ctx context.Context, q Querier, clientID uuid.UUID, entry NewAuditEntry) error {
	if strings.TrimSpace(entry.EntityType) == "" || strings.TrimSpace(entry.Summary) == "" {
		return errors.New("audit entry requires entity type and summary")
	}
	actor := entry.Actor
	if actor == "" {
		actor = "system"
	}

	query, args, err := psql.Insert(AuditLogTable).
		Columns("client_id", "entity_type", "entity_id", "summary", "actor").
		Values(clientID, entry.EntityType, entry.EntityID, entry.Summary, actor).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}
