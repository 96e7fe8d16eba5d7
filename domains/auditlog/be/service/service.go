package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/csvutil"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
)

const maxSearchLength = 200

// ExportHeaders is the column order of the CSV export.
var ExportHeaders = []string{"id", "createdAt", "entityType", "entityId", "actor", "summary"}

// Store is the slice of persistence.AuditLogStore the service reads from.
type Store interface {
	List(ctx context.Context, clientID uuid.UUID, filter persistence.AuditLogFilter, limit, offset int) (persistence.Page[persistence.AuditLogEntry], error)
	ListAll(ctx context.Context, clientID uuid.UUID, filter persistence.AuditLogFilter) ([]persistence.AuditLogEntry, error)
}

// Query holds the optional filters of a listing or export.
type Query struct {
	EntityType *string
	Search     *string
	From       *time.Time
	To         *time.Time
}

// Service exposes the audit log of a gym.
type Service interface {
	List(ctx context.Context, clientID uuid.UUID, query Query, page httpapi.Page) (httpapi.List[persistence.AuditLogEntry], error)
	Export(ctx context.Context, clientID uuid.UUID, query Query) (string, error)
}

type service struct {
	store Store
}

func New(store Store) Service {
	if store == nil {
		panic("audit log store is required")
	}
	return &service{store: store}
}

func (s *service) List(ctx context.Context, clientID uuid.UUID, query Query, page httpapi.Page) (httpapi.List[persistence.AuditLogEntry], error) {
	filter, err := toFilter(query)
	if err != nil {
		return httpapi.List[persistence.AuditLogEntry]{}, err
	}

	result, err := s.store.List(ctx, clientID, filter, page.Limit, page.Offset)
	if err != nil {
		return httpapi.List[persistence.AuditLogEntry]{}, err
	}
	return httpapi.NewList(result.Items, result.Total, page), nil
}

// Export renders every entry matching query, newest first.
func (s *service) Export(ctx context.Context, clientID uuid.UUID, query Query) (string, error) {
	filter, err := toFilter(query)
	if err != nil {
		return "", err
	}

	entries, err := s.store.ListAll(ctx, clientID, filter)
	if err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.AuditID.String(),
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.EntityType,
			e.EntityID,
			e.Actor,
			e.Summary,
		})
	}
	return csvutil.Encode(ExportHeaders, rows), nil
}

func toFilter(query Query) (persistence.AuditLogFilter, error) {
	var filter persistence.AuditLogFilter
	if query.EntityType != nil {
		entityType := strings.TrimSpace(*query.EntityType)
		if entityType != "" {
			filter.EntityType = &entityType
		}
	}
	if query.Search != nil {
		search := strings.TrimSpace(*query.Search)
		if utf8.RuneCountInString(search) > maxSearchLength {
			return persistence.AuditLogFilter{}, apperr.Invalid("search", "search must be at most 200 characters")
		}
		filter.Search = search
	}
	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return persistence.AuditLogFilter{}, apperr.Invalid("to", "to must not be before from")
	}
	filter.CreatedFrom = query.From
	filter.CreatedTo = query.To
	return filter, nil
}
