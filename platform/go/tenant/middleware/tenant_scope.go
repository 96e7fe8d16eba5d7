package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	platformlogging "github.com/zenGate-Global/palmyra-gym/platform/go/logging"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

// DefaultSlugHeader carries the gym slug for unauthenticated public pages.
const DefaultSlugHeader = "X-Tenant-Slug"

// Registry maps tenant identifiers onto a Scope. Implementations return an error wrapping
// tenant.ErrTenantNotResolved for unknown or inactive tenants.
type Registry interface {
	ResolveByID(ctx context.Context, clientID uuid.UUID) (tenant.Scope, error)
	ResolveBySlug(ctx context.Context, slug string) (tenant.Scope, error)
}

// Config controls how the tenant is derived from a request.
type Config struct {
	// BaseDomain enables subdomain mapping: "<slug>.<BaseDomain>". Empty disables it.
	BaseDomain string
	// SlugHeader overrides DefaultSlugHeader.
	SlugHeader string
}

// Resolver derives the tenant owning a request.
type Resolver struct {
	registry Registry
	cfg      Config
}

func NewResolver(registry Registry, cfg Config) *Resolver {
	if registry == nil {
		panic("tenant middleware: registry is required")
	}
	if cfg.SlugHeader == "" {
		cfg.SlugHeader = DefaultSlugHeader
	}
	return &Resolver{registry: registry, cfg: cfg}
}

// ResolveTenant derives the tenant from, in order: the staff session's tenant claim, the portal
// session's client id, the slug header, the Host subdomain. The first source present wins and is
// never overridden by a later one; clientId values in the query string or body are not consulted.
func (rs *Resolver) ResolveTenant(r *http.Request) (tenant.Scope, error) {
	ctx := r.Context()

	if creds, ok := platformauth.UserFromContext(ctx); ok {
		if creds.TenantID == nil || strings.TrimSpace(*creds.TenantID) == "" {
			return tenant.Scope{}, tenant.ErrTenantNotResolved
		}
		claim := strings.TrimSpace(*creds.TenantID)
		if id, err := uuid.Parse(claim); err == nil {
			return rs.registry.ResolveByID(ctx, id)
		}
		return rs.resolveSlug(ctx, claim)
	}

	if member, ok := portal.MemberFromContext(ctx); ok {
		return rs.registry.ResolveByID(ctx, member.ClientID)
	}

	if header := strings.TrimSpace(r.Header.Get(rs.cfg.SlugHeader)); header != "" {
		return rs.resolveSlug(ctx, header)
	}

	if slug, ok := tenant.SlugFromHost(r.Host, rs.cfg.BaseDomain); ok {
		return rs.registry.ResolveBySlug(ctx, slug)
	}

	return tenant.Scope{}, tenant.ErrTenantNotResolved
}

func (rs *Resolver) resolveSlug(ctx context.Context, raw string) (tenant.Scope, error) {
	slug, ok := tenant.NormalizeSlug(raw)
	if !ok {
		return tenant.Scope{}, tenant.ErrTenantNotResolved
	}
	return rs.registry.ResolveBySlug(ctx, slug)
}

// WithTenantScope resolves the tenant and attaches tenant.Scope to the context. Requests without a
// derivable tenant are rejected with 401; registry failures other than "unknown tenant" are 500s.
// It must run after the session middleware of the route group.
func WithTenantScope(resolver *Resolver) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("tenant middleware: resolver is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			scope, err := resolver.ResolveTenant(r)
			if err != nil {
				httpapi.WriteError(w, r, nil, "resolveTenant", err)
				return
			}

			ctx := tenant.WithScope(r.Context(), scope)
			if logger, ok := platformlogging.FromContext(ctx); ok {
				ctx = platformlogging.WithLogger(ctx, logger.With(
					zap.String("client_id", scope.ClientID.String()),
					zap.String("tenant_slug", scope.Slug),
				))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
