package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zenGate-Global/palmyra-gym/domains/portal/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

type mockService struct {
	loginFn       func(ctx context.Context, clientID uuid.UUID, input service.LoginInput) (service.Session, error)
	setPasswordFn func(ctx context.Context, audit requesttrace.AuditInfo, clientID, memberID uuid.UUID, password string) error
	invoicesFn    func(ctx context.Context, clientID, memberID uuid.UUID) ([]service.Invoice, error)
	membershipsFn func(ctx context.Context, clientID, memberID uuid.UUID) ([]service.Membership, error)
	plansFn       func(ctx context.Context, clientID uuid.UUID) ([]service.Plan, error)
	ordersFn      func(ctx context.Context, clientID, memberID uuid.UUID) ([]service.Order, error)
	trialFn       func(ctx context.Context, clientID, memberID uuid.UUID) (*service.Trial, error)
}

func (m *mockService) Login(ctx context.Context, clientID uuid.UUID, input service.LoginInput) (service.Session, error) {
	if m.loginFn == nil {
		panic("loginFn not configured")
	}
	return m.loginFn(ctx, clientID, input)
}

func (m *mockService) SetPassword(ctx context.Context, audit requesttrace.AuditInfo, clientID, memberID uuid.UUID, password string) error {
	if m.setPasswordFn == nil {
		panic("setPasswordFn not configured")
	}
	return m.setPasswordFn(ctx, audit, clientID, memberID, password)
}

func (m *mockService) Invoices(ctx context.Context, clientID, memberID uuid.UUID) ([]service.Invoice, error) {
	if m.invoicesFn == nil {
		panic("invoicesFn not configured")
	}
	return m.invoicesFn(ctx, clientID, memberID)
}

func (m *mockService) Memberships(ctx context.Context, clientID, memberID uuid.UUID) ([]service.Membership, error) {
	if m.membershipsFn == nil {
		panic("membershipsFn not configured")
	}
	return m.membershipsFn(ctx, clientID, memberID)
}

func (m *mockService) Plans(ctx context.Context, clientID uuid.UUID) ([]service.Plan, error) {
	if m.plansFn == nil {
		panic("plansFn not configured")
	}
	return m.plansFn(ctx, clientID)
}

func (m *mockService) Orders(ctx context.Context, clientID, memberID uuid.UUID) ([]service.Order, error) {
	if m.ordersFn == nil {
		panic("ordersFn not configured")
	}
	return m.ordersFn(ctx, clientID, memberID)
}

func (m *mockService) Trial(ctx context.Context, clientID, memberID uuid.UUID) (*service.Trial, error) {
	if m.trialFn == nil {
		panic("trialFn not configured")
	}
	return m.trialFn(ctx, clientID, memberID)
}

type requestOpts struct {
	scope  *tenant.Scope
	member *portal.MemberAuth
	body   string
}

func serve(t *testing.T, svc service.Service, method, target string, opts requestOpts) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h := New(svc, zaptest.NewLogger(t))
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(portal.RequireMember)
		h.Register(r)
	})

	req := httptest.NewRequest(method, target, strings.NewReader(opts.body))
	ctx := req.Context()
	if opts.scope != nil {
		ctx = tenant.WithScope(ctx, *opts.scope)
	}
	if opts.member != nil {
		ctx = portal.WithMember(ctx, *opts.member)
		ctx = requesttrace.IntoContext(ctx, requesttrace.FromMember(*opts.member, "req-1"))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func memberFixture() (tenant.Scope, portal.MemberAuth) {
	scope := tenant.Scope{ClientID: uuid.New(), Slug: "ironworks"}
	return scope, portal.MemberAuth{MemberID: uuid.New(), ClientID: scope.ClientID}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	scope, member := memberFixture()
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := &mockService{loginFn: func(_ context.Context, clientID uuid.UUID, input service.LoginInput) (service.Session, error) {
		require.Equal(t, scope.ClientID, clientID)
		require.Equal(t, "ada@example.com", input.Email)
		require.Equal(t, "192.0.2.1", input.RemoteIP)
		return service.Session{Token: "tok", ExpiresAt: expires, MemberID: member.MemberID}, nil
	}}

	rec := serve(t, svc, http.MethodPost, "/portal/auth/login", requestOpts{
		scope: &scope,
		body:  `{"email":"ada@example.com","password":"correct horse"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "tok", body["token"])
	require.Equal(t, member.MemberID.String(), body["memberId"])
}

func TestLoginErrors(t *testing.T) {
	t.Parallel()

	scope, _ := memberFixture()
	tests := []struct {
		name     string
		scope    *tenant.Scope
		body     string
		err      error
		wantCode int
	}{
		{name: "no tenant", body: `{}`, wantCode: http.StatusUnauthorized},
		{name: "malformed body", scope: &scope, body: `{`, wantCode: http.StatusBadRequest},
		{name: "bad credentials", scope: &scope, body: `{"email":"a@b.c","password":"x"}`, err: service.ErrInvalidCredentials, wantCode: http.StatusUnauthorized},
		{name: "rate limited", scope: &scope, body: `{"email":"a@b.c","password":"x"}`, err: apperr.ErrRateLimited, wantCode: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{loginFn: func(context.Context, uuid.UUID, service.LoginInput) (service.Session, error) {
				return service.Session{}, tt.err
			}}
			rec := serve(t, svc, http.MethodPost, "/portal/auth/login", requestOpts{scope: tt.scope, body: tt.body})
			require.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestMemberRoutesRequireSession(t *testing.T) {
	t.Parallel()

	scope, _ := memberFixture()
	for _, target := range []string{"/portal/invoices", "/portal/memberships", "/portal/plans", "/portal/store/orders", "/portal/trial"} {
		rec := serve(t, &mockService{}, http.MethodGet, target, requestOpts{scope: &scope})
		require.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestMemberOfOtherTenantIsRejected(t *testing.T) {
	t.Parallel()

	_, member := memberFixture()
	other := tenant.Scope{ClientID: uuid.New()}
	rec := serve(t, &mockService{}, http.MethodGet, "/portal/invoices", requestOpts{scope: &other, member: &member})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSetPassword(t *testing.T) {
	t.Parallel()

	scope, member := memberFixture()
	svc := &mockService{setPasswordFn: func(_ context.Context, audit requesttrace.AuditInfo, clientID, memberID uuid.UUID, password string) error {
		require.Equal(t, scope.ClientID, clientID)
		require.Equal(t, member.MemberID, memberID)
		require.Equal(t, "member:"+member.MemberID.String(), audit.Actor())
		if len(password) < portal.MinPasswordLength {
			return apperr.Invalid("password", "too short")
		}
		return nil
	}}

	rec := serve(t, svc, http.MethodPost, "/portal/auth/set-password", requestOpts{scope: &scope, member: &member, body: `{"password":"long enough"}`})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, svc, http.MethodPost, "/portal/auth/set-password", requestOpts{scope: &scope, member: &member, body: `{"password":"short"}`})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"password"`)
}

func TestListsUseSessionMember(t *testing.T) {
	t.Parallel()

	scope, member := memberFixture()
	check := func(clientID, memberID uuid.UUID) {
		require.Equal(t, scope.ClientID, clientID)
		require.Equal(t, member.MemberID, memberID)
	}
	svc := &mockService{
		invoicesFn: func(_ context.Context, clientID, memberID uuid.UUID) ([]service.Invoice, error) {
			check(clientID, memberID)
			return []service.Invoice{{Number: "INV-7"}}, nil
		},
		membershipsFn: func(_ context.Context, clientID, memberID uuid.UUID) ([]service.Membership, error) {
			check(clientID, memberID)
			return []service.Membership{{PlanName: "Gold"}}, nil
		},
		plansFn: func(_ context.Context, clientID uuid.UUID) ([]service.Plan, error) {
			require.Equal(t, scope.ClientID, clientID)
			return nil, nil
		},
		ordersFn: func(_ context.Context, clientID, memberID uuid.UUID) ([]service.Order, error) {
			check(clientID, memberID)
			return []service.Order{{TotalCents: 700, Items: []service.OrderItem{{ProductName: "Chalk"}}}}, nil
		},
	}

	tests := map[string]string{
		"/portal/invoices":     `"number":"INV-7"`,
		"/portal/memberships":  `"planName":"Gold"`,
		"/portal/plans":        `{"items":[]}`,
		"/portal/store/orders": `"productName":"Chalk"`,
	}
	for target, want := range tests {
		rec := serve(t, svc, http.MethodGet, target+"?memberId="+uuid.NewString(), requestOpts{scope: &scope, member: &member})
		require.Equal(t, http.StatusOK, rec.Code, target)
		require.Contains(t, rec.Body.String(), want, target)
	}
}

func TestTrial(t *testing.T) {
	t.Parallel()

	scope, member := memberFixture()
	svc := &mockService{trialFn: func(context.Context, uuid.UUID, uuid.UUID) (*service.Trial, error) {
		return nil, nil
	}}
	rec := serve(t, svc, http.MethodGet, "/portal/trial", requestOpts{scope: &scope, member: &member})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"trial":null}`, rec.Body.String())

	svc.trialFn = func(context.Context, uuid.UUID, uuid.UUID) (*service.Trial, error) {
		return &service.Trial{Status: "ACTIVE", VisitsAllowed: 3}, nil
	}
	rec = serve(t, svc, http.MethodGet, "/portal/trial", requestOpts{scope: &scope, member: &member})
	require.Contains(t, rec.Body.String(), `"visitsAllowed":3`)
}
