package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zenGate-Global/palmyra-gym/domains/giftcertificates/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

type serviceFunc func(ctx context.Context, clientID uuid.UUID, query service.Query, page httpapi.Page) (httpapi.List[service.GiftCertificate], error)

func (f serviceFunc) List(ctx context.Context, clientID uuid.UUID, query service.Query, page httpapi.Page) (httpapi.List[service.GiftCertificate], error) {
	return f(ctx, clientID, query, page)
}

func TestList(t *testing.T) {
	t.Parallel()

	scope := tenant.Scope{ClientID: uuid.New()}
	svc := serviceFunc(func(_ context.Context, clientID uuid.UUID, query service.Query, page httpapi.Page) (httpapi.List[service.GiftCertificate], error) {
		require.Equal(t, scope.ClientID, clientID)
		require.Equal(t, "ACTIVE", *query.Status)
		require.Equal(t, "jo@example.com", *query.Search)
		require.Equal(t, 20, page.Limit)
		return httpapi.NewList([]service.GiftCertificate{{Code: "GIFT-1"}}, 1, page), nil
	})

	r := chi.NewRouter()
	New(svc, zaptest.NewLogger(t)).Register(r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gift-certificates?status=ACTIVE&search=jo@example.com&limit=20", nil)
	r.ServeHTTP(rec, req.WithContext(tenant.WithScope(req.Context(), scope)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"GIFT-1"`)
}
