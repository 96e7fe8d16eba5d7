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

	"github.com/zenGate-Global/palmyra-gym/domains/emailtemplates/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

type mockService struct {
	listFn   func(ctx context.Context, clientID uuid.UUID) ([]service.Template, error)
	updateFn func(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, key string, input service.UpdateInput) (service.Template, error)
	resetFn  func(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, key string) (service.Template, error)
}

func (m *mockService) List(ctx context.Context, clientID uuid.UUID) ([]service.Template, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, clientID)
}

func (m *mockService) Update(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, key string, input service.UpdateInput) (service.Template, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, audit, clientID, key, input)
}

func (m *mockService) Reset(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, key string) (service.Template, error) {
	if m.resetFn == nil {
		panic("resetFn not configured")
	}
	return m.resetFn(ctx, audit, clientID, key)
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
	h.RegisterReads(r)
	h.RegisterWrites(r)
	return r
}

func TestList(t *testing.T) {
	t.Parallel()

	scope := tenant.Scope{ClientID: uuid.New()}
	svc := &mockService{listFn: func(_ context.Context, clientID uuid.UUID) ([]service.Template, error) {
		require.Equal(t, scope.ClientID, clientID)
		return []service.Template{{Key: "welcome", Subject: "Hi", Body: "b"}}, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(t, svc, scope).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/email-templates", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"items":[{"key":"welcome","subject":"Hi","body":"b","isCustom":false}]}`, rec.Body.String())
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	scope := tenant.Scope{ClientID: uuid.New()}
	svc := &mockService{updateFn: func(_ context.Context, _ requesttrace.AuditInfo, clientID uuid.UUID, key string, input service.UpdateInput) (service.Template, error) {
		require.Equal(t, scope.ClientID, clientID)
		require.Equal(t, "welcome", key)
		require.Equal(t, "Hello", input.Subject)
		return service.Template{Key: key, Subject: input.Subject, Body: input.Body, IsCustom: true}, nil
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/email-templates/welcome", strings.NewReader(`{"subject":"Hello","body":"World"}`))
	newRouter(t, svc, scope).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"isCustom":true`)
}

func TestUpdateRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/email-templates/welcome", strings.NewReader(`{`))
	newRouter(t, &mockService{}, tenant.Scope{ClientID: uuid.New()}).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetUnknownKey(t *testing.T) {
	t.Parallel()

	svc := &mockService{resetFn: func(context.Context, requesttrace.AuditInfo, uuid.UUID, string) (service.Template, error) {
		return service.Template{}, service.ErrTemplateNotFound
	}}

	rec := httptest.NewRecorder()
	newRouter(t, svc, tenant.Scope{ClientID: uuid.New()}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/email-templates/birthday/reset", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"email template not found"}`, rec.Body.String())
}
