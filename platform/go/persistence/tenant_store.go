package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const TenantsTable = "tenants"

// TenantRecord is one gym in the tenant registry.
type TenantRecord struct {
	ClientID    uuid.UUID `db:"client_id"`
	Slug        string    `db:"slug"`
	DisplayName string    `db:"display_name"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

// Scope converts the record into the request scope carried on the context.
func (r TenantRecord) Scope() tenant.Scope {
	return tenant.Scope{ClientID: r.ClientID, Slug: r.Slug, DisplayName: r.DisplayName}
}

var (
	// ErrTenantNotFound wraps tenant.ErrTenantNotResolved so the middleware answers 401.
	ErrTenantNotFound = fmt.Errorf("tenant not found: %w", tenant.ErrTenantNotResolved)
	ErrTenantConflict = errors.New("tenant slug already exists")
)

var tenantsTable = Table[TenantRecord]{
	Name:    TenantsTable,
	Columns: []string{"client_id", "slug", "display_name", "is_active", "created_at"},
	Scan: func(row pgx.Row) (TenantRecord, error) {
		var rec TenantRecord
		err := row.Scan(&rec.ClientID, &rec.Slug, &rec.DisplayName, &rec.IsActive, &rec.CreatedAt)
		return rec, err
	},
}

// TenantStore is the tenant registry. It implements the tenant middleware Registry.
type TenantStore struct {
	db *ClientDB
}

func NewTenantStore(db *ClientDB) (*TenantStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &TenantStore{db: db}, nil
}

// ResolveByID returns the scope of an active tenant.
func (s *TenantStore) ResolveByID(ctx context.Context, clientID uuid.UUID) (tenant.Scope, error) {
	rec, err := FindUnique(ctx, s.db.Pool(), tenantsTable, ForClient(clientID).Eq("is_active", true))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return tenant.Scope{}, ErrTenantNotFound
		}
		return tenant.Scope{}, err
	}
	return rec.Scope(), nil
}

// ResolveBySlug returns the scope of the active tenant registered under slug.
func (s *TenantStore) ResolveBySlug(ctx context.Context, slug string) (tenant.Scope, error) {
	query, args, err := psql.Select(tenantsTable.Columns...).
		From(TenantsTable).
		Where("slug = ? AND is_active", slug).
		ToSql()
	if err != nil {
		return tenant.Scope{}, fmt.Errorf("build tenant query: %w", err)
	}

	rec, err := tenantsTable.Scan(s.db.Pool().QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Scope{}, ErrTenantNotFound
		}
		return tenant.Scope{}, fmt.Errorf("query tenant: %w", err)
	}
	return rec.Scope(), nil
}

// CreateTenantParams registers a gym.
type CreateTenantParams struct {
	Slug        string
	DisplayName string
}

// Create normalizes the slug and inserts a tenant.
func (s *TenantStore) Create(ctx context.Context, params CreateTenantParams) (TenantRecord, error) {
	slug, err := NormalizeSlug(params.Slug)
	if err != nil {
		return TenantRecord{}, err
	}
	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = slug
	}

	query, args, err := psql.Insert(TenantsTable).
		Columns("slug", "display_name").
		Values(slug, displayName).
		Suffix("RETURNING " + strings.Join(tenantsTable.Columns, ", ")).
		ToSql()
	if err != nil {
		return TenantRecord{}, fmt.Errorf("build tenant insert: %w", err)
	}

	rec, err := tenantsTable.Scan(s.db.Pool().QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return TenantRecord{}, ErrTenantConflict
		}
		return TenantRecord{}, fmt.Errorf("insert tenant: %w", err)
	}
	return rec, nil
}
