package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zenGate-Global/palmyra-gym/domains/enrollments/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

type mockService struct {
	listFn   func(ctx context.Context, clientID uuid.UUID, status *string, page httpapi.Page) (httpapi.List[service.Submission], error)
	submitFn func(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, payload []byte) (service.Submission, error)
}

func (m *mockService) List(ctx context.Context, clientID uuid.UUID, status *string, page httpapi.Page) (httpapi.List[service.Submission], error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, clientID, status, page)
}

func (m *mockService) Submit(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, payload []byte) (service.Submission, error) {
	if m.submitFn == nil {
		panic("submitFn not configured")
	}
	return m.submitFn(ctx, audit, clientID, payload)
}

func newRouter(t *testing.T, svc service.Service, scope tenant.Scope) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(tenant.WithScope(req.Context(), scope)))
		})
	})
	h := New(svc, zaptest.NewLogger(t))
	h.Register(r)
	h.RegisterPublic(r)
	return r
}

func TestList(t *testing.T) {
	t.Parallel()

	scope := tenant.Scope{ClientID: uuid.New()}
	svc := &mockService{listFn: func(_ context.Context, clientID uuid.UUID, status *string, page httpapi.Page) (httpapi.List[service.Submission], error) {
		require.Equal(t, scope.ClientID, clientID)
		require.Equal(t, "NEW", *status)
		return httpapi.NewList([]service.Submission{{ID: uuid.New(), Status: "NEW"}}, 1, page), nil
	}}

	rec := httptest.NewRecorder()
	newRouter(t, svc, scope).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enrollment-submissions?status=NEW", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total":1`)
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	scope := tenant.Scope{ClientID: uuid.New()}
	svc := &mockService{submitFn: func(_ context.Context, _ requesttrace.AuditInfo, clientID uuid.UUID, payload []byte) (service.Submission, error) {
		require.Equal(t, scope.ClientID, clientID)
		require.JSONEq(t, `{"firstName":"Kim"}`, string(payload))
		return service.Submission{ID: uuid.New(), Status: "NEW", Data: payload}, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(t, svc, scope).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/public/enrollment-submissions", strings.NewReader(`{"firstName":"Kim"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestSubmitValidationFailure(t *testing.T) {
	t.Parallel()

	svc := &mockService{submitFn: func(context.Context, requesttrace.AuditInfo, uuid.UUID, []byte) (service.Submission, error) {
		return service.Submission{}, &apperr.ValidationError{Message: "payload does not match schema", Fields: apperr.FieldErrors{"/email": {"missing"}}}
	}}

	rec := httptest.NewRecorder()
	newRouter(t, svc, tenant.Scope{ClientID: uuid.New()}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/public/enrollment-submissions", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"payload does not match schema","fields":{"/email":["missing"]}}`, rec.Body.String())
}
