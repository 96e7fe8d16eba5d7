package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	platformlogging "github.com/zenGate-Global/palmyra-gym/platform/go/logging"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

// RequestTrace populates the context with request-scoped AuditInfo so services can stamp audit entries.
// It runs after the session and tenant middleware of the route group.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())

		var audit requesttrace.AuditInfo
		if creds, ok := platformauth.UserFromContext(r.Context()); ok {
			var err error
			audit, err = requesttrace.FromStaff(creds, requestID)
			if err != nil {
				httpapi.WriteError(w, r, nil, "requestTrace", err)
				return
			}
		} else if member, ok := portal.MemberFromContext(r.Context()); ok {
			audit = requesttrace.FromMember(member, requestID)
		} else {
			audit = requesttrace.Anonymous(requestID)
		}

		if scope, ok := tenant.FromContext(r.Context()); ok {
			audit.ClientID = scope.ClientID
		}

		ctx := requesttrace.IntoContext(r.Context(), audit)
		fields := []zap.Field{zap.String("actor_kind", string(audit.ActorKind))}
		if audit.ActorID != nil {
			fields = append(fields, zap.String("actor_id", *audit.ActorID))
		}
		ctx = platformlogging.Enrich(ctx, fields...)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
