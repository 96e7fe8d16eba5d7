package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthorized)
	ErrMemberNotFound     = apperr.NotFound("member")
)

type MemberStore interface {
	FindByEmail(ctx context.Context, clientID uuid.UUID, email string) (persistence.Member, error)
	SetPasswordHash(ctx context.Context, clientID, memberID uuid.UUID, hash string, audit persistence.NewAuditEntry) error
}

type BillingStore interface {
	InvoicesForMember(ctx context.Context, clientID, memberID uuid.UUID) ([]persistence.Invoice, error)
	MembershipsForMember(ctx context.Context, clientID, memberID uuid.UUID) ([]persistence.Membership, error)
	PlansByIDs(ctx context.Context, clientID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]persistence.Plan, error)
	PublicPlans(ctx context.Context, clientID uuid.UUID) ([]persistence.Plan, error)
}

type OrderStore interface {
	OrdersForMember(ctx context.Context, clientID, memberID uuid.UUID) ([]persistence.StoreOrder, error)
	ItemsForOrders(ctx context.Context, clientID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID][]persistence.StoreOrderItem, error)
}

type TrialStore interface {
	LatestForMember(ctx context.Context, clientID, memberID uuid.UUID) (persistence.TrialPass, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

type SessionIssuer interface {
	Issue(member portal.MemberAuth) (string, time.Time, error)
}

// Deps groups the collaborators of the portal service.
type Deps struct {
	Members MemberStore
	Billing BillingStore
	Orders  OrderStore
	Trials  TrialStore
	Hasher  PasswordHasher
	Issuer  SessionIssuer
	Limiter portal.LoginLimiter
}

type LoginInput struct {
	Email    string
	Password string
	// RemoteIP is the client address, one of the two attempt budgets next to the email.
	RemoteIP string
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	MemberID  uuid.UUID `json:"memberId"`
}

type Service interface {
	Login(ctx context.Context, clientID uuid.UUID, input LoginInput) (Session, error)
	SetPassword(ctx context.Context, audit requesttrace.AuditInfo, clientID, memberID uuid.UUID, password string) error
	Invoices(ctx context.Context, clientID, memberID uuid.UUID) ([]Invoice, error)
	Memberships(ctx context.Context, clientID, memberID uuid.UUID) ([]Membership, error)
	Plans(ctx context.Context, clientID uuid.UUID) ([]Plan, error)
	Orders(ctx context.Context, clientID, memberID uuid.UUID) ([]Order, error)
	Trial(ctx context.Context, clientID, memberID uuid.UUID) (*Trial, error)
}

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	switch {
	case deps.Members == nil:
		panic("member store is required")
	case deps.Billing == nil:
		panic("billing store is required")
	case deps.Orders == nil:
		panic("order store is required")
	case deps.Trials == nil:
		panic("trial store is required")
	case deps.Hasher == nil:
		panic("password hasher is required")
	case deps.Issuer == nil:
		panic("session issuer is required")
	}
	if deps.Limiter == nil {
		deps.Limiter = portal.NoopLimiter{}
	}
	return &service{deps: deps}
}

func (s *service) Login(ctx context.Context, clientID uuid.UUID, input LoginInput) (Session, error) {
	email := strings.TrimSpace(input.Email)
	fields := apperr.FieldErrors{}
	if email == "" {
		fields.Add("email", "email is required")
	}
	if input.Password == "" {
		fields.Add("password", "password is required")
	}
	if len(fields) > 0 {
		return Session{}, &apperr.ValidationError{Message: "email and password are required", Fields: fields}
	}

	limiterKeys := loginLimiterKeys(clientID, email, input.RemoteIP)
	if err := s.checkAttempts(ctx, limiterKeys); err != nil {
		return Session{}, err
	}

	member, err := s.deps.Members.FindByEmail(ctx, clientID, email)
	if err != nil {
		if errors.Is(err, persistence.ErrMemberNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if member.PasswordHash == nil {
		return Session{}, ErrInvalidCredentials
	}

	ok, err := s.deps.Hasher.Verify(*member.PasswordHash, input.Password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	for _, key := range limiterKeys {
		if err := s.deps.Limiter.Reset(ctx, key); err != nil {
			return Session{}, fmt.Errorf("reset login attempts: %w", err)
		}
	}

	token, expiresAt, err := s.deps.Issuer.Issue(portal.MemberAuth{MemberID: member.MemberID, ClientID: clientID})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, MemberID: member.MemberID}, nil
}

// loginLimiterKeys returns one budget per account and one per client address, so rotating
// either alone does not reset the count.
func loginLimiterKeys(clientID uuid.UUID, email, remoteIP string) []string {
	keys := []string{"email:" + clientID.String() + ":" + strings.ToLower(email)}
	if remoteIP != "" {
		keys = append(keys, "ip:"+clientID.String()+":"+remoteIP)
	}
	return keys
}

// checkAttempts counts the attempt against every budget before deciding.
func (s *service) checkAttempts(ctx context.Context, keys []string) error {
	limited := false
	for _, key := range keys {
		allowed, err := s.deps.Limiter.Allow(ctx, key)
		if err != nil {
			return fmt.Errorf("check login attempts: %w", err)
		}
		if !allowed {
			limited = true
		}
	}
	if limited {
		return apperr.ErrRateLimited
	}
	return nil
}

func (s *service) SetPassword(ctx context.Context, audit requesttrace.AuditInfo, clientID, memberID uuid.UUID, password string) error {
	hash, err := s.deps.Hasher.Hash(password)
	if err != nil {
		return err
	}

	err = s.deps.Members.SetPasswordHash(ctx, clientID, memberID, hash, persistence.NewAuditEntry{
		EntityType: "MEMBER",
		EntityID:   memberID.String(),
		Summary:    "Portal password set",
		Actor:      audit.Actor(),
	})
	if errors.Is(err, persistence.ErrMemberNotFound) {
		return ErrMemberNotFound
	}
	return err
}
