// Package portal resolves member self-service sessions. A member session is an HS256 token bound to
// one member and one client; everything the portal serves is filtered by those two ids.
package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	platformlogging "github.com/zenGate-Global/palmyra-gym/platform/go/logging"
)

const (
	tokenType  = "portal"
	DefaultTTL = 12 * time.Hour
)

var (
	ErrInvalidSession = errors.New("invalid portal session")
	ErrSessionExpired = errors.New("portal session expired")
)

// MemberAuth is the principal behind a portal request.
type MemberAuth struct {
	MemberID uuid.UUID
	ClientID uuid.UUID
}

type sessionClaims struct {
	ClientID string `json:"cid"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies portal session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("portal session secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for member and returns it with its expiry.
func (i *Issuer) Issue(member MemberAuth) (string, time.Time, error) {
	if member.MemberID == uuid.Nil || member.ClientID == uuid.Nil {
		return "", time.Time{}, errors.New("member and client ids are required")
	}

	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)
	claims := sessionClaims{
		ClientID: member.ClientID.String(),
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.MemberID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign portal token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, expiry and token type, returning the member principal.
func (i *Issuer) Parse(token string) (MemberAuth, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return MemberAuth{}, ErrSessionExpired
		}
		return MemberAuth{}, ErrInvalidSession
	}
	if !parsed.Valid || claims.Type != tokenType {
		return MemberAuth{}, ErrInvalidSession
	}

	memberID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return MemberAuth{}, ErrInvalidSession
	}
	clientID, err := uuid.Parse(claims.ClientID)
	if err != nil {
		return MemberAuth{}, ErrInvalidSession
	}

	return MemberAuth{MemberID: memberID, ClientID: clientID}, nil
}

type ctxKey string

const memberKey ctxKey = "PALMYRA_PORTAL_MEMBER"

// WithMember stores the member principal on ctx.
func WithMember(ctx context.Context, member MemberAuth) context.Context {
	return context.WithValue(ctx, memberKey, member)
}

// MemberFromContext returns the member principal, if a valid session was presented.
func MemberFromContext(ctx context.Context) (MemberAuth, bool) {
	member, ok := ctx.Value(memberKey).(MemberAuth)
	return member, ok && member.MemberID != uuid.Nil
}

// Authenticate resolves the portal session from the bearer token. Missing, expired and forged tokens
// all leave the request without a member.
func Authenticate(issuer *Issuer) func(http.Handler) http.Handler {
	if issuer == nil {
		panic("portal.Authenticate: issuer is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := auth.ExtractJWTToken(r)
			if !found || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			member, err := issuer.Parse(token)
			if err != nil {
				if logger, ok := platformlogging.FromContext(r.Context()); ok {
					logger.Debug("portal session rejected", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithMember(r.Context(), member)))
		})
	}
}

// RequireMember rejects requests without a member session.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := MemberFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="portal"`)
			httpapi.WriteError(w, r, nil, "requireMember", apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require returns the member principal or ErrUnauthorized.
func Require(ctx context.Context) (MemberAuth, error) {
	member, ok := MemberFromContext(ctx)
	if !ok {
		return MemberAuth{}, apperr.ErrUnauthorized
	}
	return member, nil
}
