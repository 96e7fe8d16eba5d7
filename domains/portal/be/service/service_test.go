package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
)

type fakeMembers struct {
	byEmail  map[string]persistence.Member
	setCalls []persistence.NewAuditEntry
	setErr   error
}

func (f *fakeMembers) FindByEmail(_ context.Context, clientID uuid.UUID, email string) (persistence.Member, error) {
	m, ok := f.byEmail[email]
	if !ok || m.ClientID != clientID {
		return persistence.Member{}, persistence.ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeMembers) SetPasswordHash(_ context.Context, _, _ uuid.UUID, hash string, audit persistence.NewAuditEntry) error {
	if f.setErr != nil {
		return f.setErr
	}
	if hash == "" {
		return errors.New("empty hash")
	}
	f.setCalls = append(f.setCalls, audit)
	return nil
}

type fakeBilling struct {
	memberships []persistence.Membership
	plans       map[uuid.UUID]persistence.Plan
	planLookups int
}

func (f *fakeBilling) InvoicesForMember(context.Context, uuid.UUID, uuid.UUID) ([]persistence.Invoice, error) {
	return []persistence.Invoice{{InvoiceID: uuid.New(), Number: "INV-1", AmountCents: 9900}}, nil
}

func (f *fakeBilling) MembershipsForMember(context.Context, uuid.UUID, uuid.UUID) ([]persistence.Membership, error) {
	return f.memberships, nil
}

func (f *fakeBilling) PlansByIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]persistence.Plan, error) {
	f.planLookups++
	out := map[uuid.UUID]persistence.Plan{}
	for _, id := range ids {
		if p, ok := f.plans[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeBilling) PublicPlans(context.Context, uuid.UUID) ([]persistence.Plan, error) {
	return []persistence.Plan{{PlanID: uuid.New(), Name: "Drop-in", PriceCents: 2000, Interval: "once"}}, nil
}

type fakeOrders struct {
	orders      []persistence.StoreOrder
	items       map[uuid.UUID][]persistence.StoreOrderItem
	itemLookups int
	lookedUp    []uuid.UUID
}

func (f *fakeOrders) OrdersForMember(context.Context, uuid.UUID, uuid.UUID) ([]persistence.StoreOrder, error) {
	return f.orders, nil
}

func (f *fakeOrders) ItemsForOrders(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID][]persistence.StoreOrderItem, error) {
	f.itemLookups++
	f.lookedUp = ids
	return f.items, nil
}

type fakeTrials struct {
	trial *persistence.TrialPass
}

func (f fakeTrials) LatestForMember(context.Context, uuid.UUID, uuid.UUID) (persistence.TrialPass, error) {
	if f.trial == nil {
		return persistence.TrialPass{}, persistence.ErrTrialPassNotFound
	}
	return *f.trial, nil
}

type fakeLimiter struct {
	allow  bool
	deny   map[string]bool
	keys   []string
	resets []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow && !f.deny[key], nil
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	f.resets = append(f.resets, key)
	return nil
}

type fixture struct {
	svc      Service
	members  *fakeMembers
	billing  *fakeBilling
	orders   *fakeOrders
	limiter  *fakeLimiter
	issuer   *portal.Issuer
	clientID uuid.UUID
	member   persistence.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher := portal.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)

	clientID := uuid.New()
	member := persistence.Member{MemberID: uuid.New(), ClientID: clientID, Email: "ada@example.com", PasswordHash: &hash}
	noPassword := persistence.Member{MemberID: uuid.New(), ClientID: clientID, Email: "new@example.com"}

	issuer, err := portal.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	f := &fixture{
		members:  &fakeMembers{byEmail: map[string]persistence.Member{member.Email: member, noPassword.Email: noPassword}},
		billing:  &fakeBilling{},
		orders:   &fakeOrders{},
		limiter:  &fakeLimiter{allow: true},
		issuer:   issuer,
		clientID: clientID,
		member:   member,
	}
	f.svc = New(Deps{
		Members: f.members,
		Billing: f.billing,
		Orders:  f.orders,
		Trials:  fakeTrials{},
		Hasher:  hasher,
		Issuer:  issuer,
		Limiter: f.limiter,
	})
	return f
}

func TestLoginIssuesSessionForMember(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	session, err := f.svc.Login(context.Background(), f.clientID, LoginInput{Email: " ada@example.com ", Password: "correct horse", RemoteIP: "203.0.113.7"})
	require.NoError(t, err)
	require.Equal(t, f.member.MemberID, session.MemberID)

	parsed, err := f.issuer.Parse(session.Token)
	require.NoError(t, err)
	require.Equal(t, portal.MemberAuth{MemberID: f.member.MemberID, ClientID: f.clientID}, parsed)

	wantKeys := []string{
		"email:" + f.clientID.String() + ":ada@example.com",
		"ip:" + f.clientID.String() + ":203.0.113.7",
	}
	require.Equal(t, wantKeys, f.limiter.keys)
	require.Equal(t, wantKeys, f.limiter.resets)
}

func TestLoginRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   LoginInput
		client  func(f *fixture) uuid.UUID
		wantErr error
	}{
		{name: "wrong password", input: LoginInput{Email: "ada@example.com", Password: "wrong horse"}, wantErr: ErrInvalidCredentials},
		{name: "unknown email", input: LoginInput{Email: "nobody@example.com", Password: "correct horse"}, wantErr: ErrInvalidCredentials},
		{name: "password never set", input: LoginInput{Email: "new@example.com", Password: "correct horse"}, wantErr: ErrInvalidCredentials},
		{
			name:    "member of another gym",
			input:   LoginInput{Email: "ada@example.com", Password: "correct horse"},
			client:  func(*fixture) uuid.UUID { return uuid.New() },
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			clientID := f.clientID
			if tt.client != nil {
				clientID = tt.client(f)
			}
			_, err := f.svc.Login(context.Background(), clientID, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, apperr.ErrUnauthorized)
			require.Empty(t, f.limiter.resets)
		})
	}
}

func TestLoginValidatesAndRateLimits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), f.clientID, LoginInput{})
	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "email")
	require.Contains(t, validationErr.Fields, "password")

	f.limiter.allow = false
	_, err = f.svc.Login(context.Background(), f.clientID, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, apperr.ErrRateLimited)
}

func TestLoginBudgetFollowsEmailAcrossAddresses(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	emailKey := "email:" + f.clientID.String() + ":ada@example.com"
	f.limiter.deny = map[string]bool{emailKey: true}

	for _, ip := range []string{"1.1.1.1", "2.2.2.2"} {
		_, err := f.svc.Login(context.Background(), f.clientID, LoginInput{Email: "ADA@example.com", Password: "correct horse", RemoteIP: ip})
		require.ErrorIs(t, err, apperr.ErrRateLimited)
	}
	require.Equal(t, []string{
		emailKey, "ip:" + f.clientID.String() + ":1.1.1.1",
		emailKey, "ip:" + f.clientID.String() + ":2.2.2.2",
	}, f.limiter.keys)
	require.Empty(t, f.limiter.resets)
}

func TestLoginBudgetFollowsAddressAcrossEmails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.limiter.deny = map[string]bool{"ip:" + f.clientID.String() + ":203.0.113.9": true}

	for _, email := range []string{"ada@example.com", "new@example.com"} {
		_, err := f.svc.Login(context.Background(), f.clientID, LoginInput{Email: email, Password: "correct horse", RemoteIP: "203.0.113.9"})
		require.ErrorIs(t, err, apperr.ErrRateLimited)
	}
}

func TestSetPassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	memberID := f.member.MemberID
	audit := requesttrace.FromMember(portal.MemberAuth{MemberID: memberID, ClientID: f.clientID}, "req-1")

	err := f.svc.SetPassword(context.Background(), audit, f.clientID, memberID, "short")
	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Empty(t, f.members.setCalls)

	require.NoError(t, f.svc.SetPassword(context.Background(), audit, f.clientID, memberID, "a much longer password"))
	require.Len(t, f.members.setCalls, 1)
	require.Equal(t, "member:"+memberID.String(), f.members.setCalls[0].Actor)

	f.members.setErr = persistence.ErrMemberNotFound
	err = f.svc.SetPassword(context.Background(), audit, f.clientID, memberID, "a much longer password")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMembershipsBatchPlanNames(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	gold, silver := uuid.New(), uuid.New()
	f.billing.memberships = []persistence.Membership{
		{MembershipID: uuid.New(), PlanID: gold},
		{MembershipID: uuid.New(), PlanID: silver},
		{MembershipID: uuid.New(), PlanID: gold},
	}
	f.billing.plans = map[uuid.UUID]persistence.Plan{gold: {PlanID: gold, Name: "Gold"}, silver: {PlanID: silver, Name: "Silver"}}

	out, err := f.svc.Memberships(context.Background(), f.clientID, f.member.MemberID)
	require.NoError(t, err)
	require.Equal(t, 1, f.billing.planLookups)
	require.Equal(t, []string{"Gold", "Silver", "Gold"}, []string{out[0].PlanName, out[1].PlanName, out[2].PlanName})
}

func TestOrdersBatchItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	o1, o2 := uuid.New(), uuid.New()
	f.orders.orders = []persistence.StoreOrder{{OrderID: o1, TotalCents: 700}, {OrderID: o2}}
	f.orders.items = map[uuid.UUID][]persistence.StoreOrderItem{o1: {{ProductName: "Chalk", Quantity: 2, UnitCents: 350}}}

	out, err := f.svc.Orders(context.Background(), f.clientID, f.member.MemberID)
	require.NoError(t, err)
	require.Equal(t, 1, f.orders.itemLookups)
	require.Equal(t, []uuid.UUID{o1, o2}, f.orders.lookedUp)
	require.Len(t, out[0].Items, 1)
	require.NotNil(t, out[1].Items)
	require.Empty(t, out[1].Items)
}

func TestTrialNoneIsNil(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	trial, err := f.svc.Trial(context.Background(), f.clientID, f.member.MemberID)
	require.NoError(t, err)
	require.Nil(t, trial)
}

func TestInvoicesAndPlans(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	invoices, err := f.svc.Invoices(context.Background(), f.clientID, f.member.MemberID)
	require.NoError(t, err)
	require.Equal(t, "INV-1", invoices[0].Number)

	plans, err := f.svc.Plans(context.Background(), f.clientID)
	require.NoError(t, err)
	require.Equal(t, "Drop-in", plans[0].Name)
}
