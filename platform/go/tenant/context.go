package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTenantNotResolved is returned when no tenant context can be derived from a request.
var ErrTenantNotResolved = errors.New("tenant not resolved")

// Scope captures the tenant a request is bound to. It is attached to the context by the
// tenant middleware and is the only source of the client id used in scoped queries.
type Scope struct {
	ClientID    uuid.UUID
	Slug        string
	DisplayName string
}

type ctxKey string

const scopeKey ctxKey = "PALMYRA_TENANT_SCOPE"

// WithScope returns a derived context carrying the tenant Scope.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// FromContext extracts the tenant Scope and a boolean indicating presence.
func FromContext(ctx context.Context) (Scope, bool) {
	v := ctx.Value(scopeKey)
	if v == nil {
		return Scope{}, false
	}

	scope, ok := v.(Scope)
	return scope, ok && scope.ClientID != uuid.Nil
}

// Require returns the Scope stored on ctx or ErrTenantNotResolved.
func Require(ctx context.Context) (Scope, error) {
	scope, ok := FromContext(ctx)
	if !ok {
		return Scope{}, ErrTenantNotResolved
	}
	return scope, nil
}
