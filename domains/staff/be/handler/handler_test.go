package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zenGate-Global/palmyra-gym/domains/staff/be/service"
	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

type mockService struct {
	meFn func(ctx context.Context, clientID uuid.UUID, authUID string) (service.Profile, error)
}

func (m *mockService) Me(ctx context.Context, clientID uuid.UUID, authUID string) (service.Profile, error) {
	if m.meFn == nil {
		panic("meFn not configured")
	}
	return m.meFn(ctx, clientID, authUID)
}

func (m *mockService) Authorize(context.Context, uuid.UUID, string, string) error {
	panic("not used by the handler")
}

func serve(t *testing.T, svc service.Service, ctx context.Context) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	New(svc, zaptest.NewLogger(t)).Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil).WithContext(ctx))
	return rec
}

func TestMe(t *testing.T) {
	t.Parallel()

	scope := tenant.Scope{ClientID: uuid.New()}
	svc := &mockService{meFn: func(_ context.Context, clientID uuid.UUID, authUID string) (service.Profile, error) {
		require.Equal(t, scope.ClientID, clientID)
		require.Equal(t, "uid-1", authUID)
		return service.Profile{Email: "coach@iron.example", Role: "owner", Permissions: []string{"audit:read"}}, nil
	}}

	ctx := platformauth.WithUser(tenant.WithScope(context.Background(), scope), &platformauth.UserCredentials{Id: "uid-1"})
	rec := serve(t, svc, ctx)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "coach@iron.example", body["email"])
}

func TestMeUnknownStaffIs404(t *testing.T) {
	t.Parallel()

	svc := &mockService{meFn: func(context.Context, uuid.UUID, string) (service.Profile, error) {
		return service.Profile{}, service.ErrStaffNotFound
	}}
	ctx := platformauth.WithUser(tenant.WithScope(context.Background(), tenant.Scope{ClientID: uuid.New()}), &platformauth.UserCredentials{Id: "uid-gone"})
	require.Equal(t, http.StatusNotFound, serve(t, svc, ctx).Code)
}

func TestMeWithoutSession(t *testing.T) {
	t.Parallel()

	rec := serve(t, &mockService{}, tenant.WithScope(context.Background(), tenant.Scope{ClientID: uuid.New()}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
