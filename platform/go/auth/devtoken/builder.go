// Package devtoken mints unsigned staff tokens for AUTH_PROVIDER=dev.
package devtoken

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultLifetime       = time.Hour
	defaultSignInProvider = "password"
	securetokenIssuer     = "https://securetoken.google.com/"
)

// Params describes the staff identity carried by a dev token.
// Permissions are never minted; the API reads them from staff_users.
type Params struct {
	ProjectID              string
	Tenant                 string // gym slug or client id
	UserID                 string // staff auth uid
	Email                  string
	Name                   string
	EmailVerified          bool
	FirebaseSignInProvider string
	ExpiresIn              time.Duration
	Audience               string // defaults to ProjectID
	Issuer                 string // defaults to the securetoken issuer of ProjectID
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type firebaseClaim struct {
	Identities     map[string][]string `json:"identities"`
	SignInProvider string              `json:"sign_in_provider"`
	Tenant         string              `json:"tenant"`
}

type claims struct {
	Issuer        string        `json:"iss"`
	Audience      string        `json:"aud"`
	Subject       string        `json:"sub"`
	UserID        string        `json:"user_id"`
	AuthTime      int64         `json:"auth_time"`
	IssuedAt      int64         `json:"iat"`
	ExpiresAt     int64         `json:"exp"`
	Email         string        `json:"email"`
	EmailVerified bool          `json:"email_verified"`
	Name          string        `json:"name,omitempty"`
	TenantID      string        `json:"tenantId"`
	Firebase      firebaseClaim `json:"firebase"`
}

func (p Params) validate() error {
	var errs []error
	required := []struct{ name, value string }{
		{"projectID", p.ProjectID},
		{"tenant", p.Tenant},
		{"userID", p.UserID},
		{"email", p.Email},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", f.name))
		}
	}
	return errors.Join(errs...)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func (p Params) claims(now time.Time) claims {
	lifetime := p.ExpiresIn
	if lifetime <= 0 {
		lifetime = defaultLifetime
	}
	return claims{
		Issuer:        orDefault(p.Issuer, securetokenIssuer+p.ProjectID),
		Audience:      orDefault(p.Audience, p.ProjectID),
		Subject:       p.UserID,
		UserID:        p.UserID,
		AuthTime:      now.Unix(),
		IssuedAt:      now.Unix(),
		ExpiresAt:     now.Add(lifetime).Unix(),
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		Name:          p.Name,
		TenantID:      p.Tenant,
		Firebase: firebaseClaim{
			Identities:     map[string][]string{"email": {p.Email}},
			SignInProvider: orDefault(p.FirebaseSignInProvider, defaultSignInProvider),
			Tenant:         p.Tenant,
		},
	}
}

// BuildUnsignedFirebaseToken returns "<header>.<payload>" with alg none, shaped like a
// Firebase ID token so the dev verifier hands it to the staff credential extractor.
func BuildUnsignedFirebaseToken(p Params, now time.Time) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	h, err := encodeSegment(header{Alg: "none", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	c, err := encodeSegment(p.claims(now))
	if err != nil {
		return "", err
	}
	return h + "." + c, nil
}

func encodeSegment(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode token segment: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
