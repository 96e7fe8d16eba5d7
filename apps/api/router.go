package main

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	auditloghandler "github.com/zenGate-Global/palmyra-gym/domains/auditlog/be/handler"
	billinghandler "github.com/zenGate-Global/palmyra-gym/domains/billing/be/handler"
	emailtemplateshandler "github.com/zenGate-Global/palmyra-gym/domains/emailtemplates/be/handler"
	enrollmentshandler "github.com/zenGate-Global/palmyra-gym/domains/enrollments/be/handler"
	giftcertificateshandler "github.com/zenGate-Global/palmyra-gym/domains/giftcertificates/be/handler"
	portalhandler "github.com/zenGate-Global/palmyra-gym/domains/portal/be/handler"
	programshandler "github.com/zenGate-Global/palmyra-gym/domains/programs/be/handler"
	staffhandler "github.com/zenGate-Global/palmyra-gym/domains/staff/be/handler"
	waivershandler "github.com/zenGate-Global/palmyra-gym/domains/waivers/be/handler"
	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	platformlogging "github.com/zenGate-Global/palmyra-gym/platform/go/logging"
	platformmiddleware "github.com/zenGate-Global/palmyra-gym/platform/go/middleware"
	tenantmiddleware "github.com/zenGate-Global/palmyra-gym/platform/go/tenant/middleware"
)

type handlers struct {
	Staff            *staffhandler.Handler
	AuditLog         *auditloghandler.Handler
	Billing          *billinghandler.Handler
	EmailTemplates   *emailtemplateshandler.Handler
	Enrollments      *enrollmentshandler.Handler
	GiftCertificates *giftcertificateshandler.Handler
	Programs         *programshandler.Handler
	Waivers          *waivershandler.Handler
	Portal           *portalhandler.Handler
}

type routerDeps struct {
	Logger         *zap.Logger
	RequestTimeout time.Duration
	CORSOrigins    []string
	TrustedProxies []netip.Prefix
	Metrics        *platformmiddleware.HTTPMetrics
	Gatherer       prometheus.Gatherer
	Ready          func(context.Context) error
	Spec           *openapi3.T

	StaffAuth    func(http.Handler) http.Handler
	PortalIssuer *portal.Issuer
	Tenants      *tenantmiddleware.Resolver
	Authorizer   platformauth.Authorizer

	Handlers handlers
}

func newRouter(d routerDeps) chi.Router {
	root := chi.NewRouter()
	root.Use(
		chimw.RequestID,
		httpapi.PeerAddress(d.TrustedProxies),
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(d.RequestTimeout),
		platformmiddleware.CORS(d.CORSOrigins),
		platformlogging.RequestLogger(d.Logger, "/healthz", "/readyz", "/metrics"),
		d.Metrics.Middleware,
	)

	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	root.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.Ready(r.Context()); err != nil {
			platformlogging.FromRequest(r, d.Logger).Warn("readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	root.Method(http.MethodGet, "/metrics", platformmiddleware.MetricsHandler(d.Gatherer))
	registerDocsRoutes(root, d.Spec, d.Logger)

	api := chi.NewRouter()
	api.Use(
		d.StaffAuth,
		portal.Authenticate(d.PortalIssuer),
		tenantmiddleware.WithTenantScope(d.Tenants),
		platformmiddleware.RequestTrace,
		platformmiddleware.NewSpecValidator(d.Spec),
	)

	h := d.Handlers
	perm := func(permission string) func(http.Handler) http.Handler {
		return platformauth.RequirePermission(d.Authorizer, permission)
	}

	// Tenant comes from the slug header or host.
	api.Group(func(r chi.Router) {
		h.Waivers.RegisterPublic(r)
		h.Enrollments.RegisterPublic(r)
		h.Portal.RegisterPublic(r)
	})

	api.Group(func(r chi.Router) {
		r.Use(portal.RequireMember)
		h.Portal.Register(r)
	})

	api.Group(func(r chi.Router) {
		r.Use(platformauth.RequireSession)

		h.Staff.Register(r)
		r.With(perm(platformauth.PermissionAuditRead)).Group(h.AuditLog.Register)
		r.With(perm(platformauth.PermissionBillingRead)).Group(func(r chi.Router) {
			h.Billing.Register(r)
			h.GiftCertificates.Register(r)
		})
		r.With(perm(platformauth.PermissionSettingsRead)).Group(func(r chi.Router) {
			h.EmailTemplates.RegisterReads(r)
			h.Programs.Register(r)
		})
		r.With(perm(platformauth.PermissionSettingsWrite)).Group(h.EmailTemplates.RegisterWrites)
		r.With(perm(platformauth.PermissionMembersRead)).Group(func(r chi.Router) {
			h.Waivers.Register(r)
			h.Enrollments.Register(r)
		})
	})

	api.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpapi.WriteError(w, r, d.Logger, "route", apperr.NotFound("route"))
	})

	root.Mount("/api/v1", api)
	return root
}
