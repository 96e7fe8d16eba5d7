// Package payments builds per-tenant payment provider clients.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76/client"
)

// SettingsSource returns the tenant's own provider key, or nil when the tenant has none.
type SettingsSource interface {
	StripeSecretKey(ctx context.Context, clientID uuid.UUID) (*string, error)
}

// Factory resolves the provider key for a tenant: tenant setting first, then the environment key.
type Factory struct {
	settings SettingsSource
	envKey   string
	newAPI   func(key string) *client.API
}

func NewFactory(settings SettingsSource, envKey string) (*Factory, error) {
	if settings == nil {
		return nil, errors.New("settings source is required")
	}
	return &Factory{
		settings: settings,
		envKey:   strings.TrimSpace(envKey),
		newAPI: func(key string) *client.API {
			return client.New(key, nil)
		},
	}, nil
}

func (f *Factory) key(ctx context.Context, clientID uuid.UUID) (string, error) {
	tenantKey, err := f.settings.StripeSecretKey(ctx, clientID)
	if err != nil {
		return "", fmt.Errorf("load payment settings: %w", err)
	}
	if tenantKey != nil && strings.TrimSpace(*tenantKey) != "" {
		return strings.TrimSpace(*tenantKey), nil
	}
	return f.envKey, nil
}

// Client returns a provider client for clientID, or nil, nil when no key is configured.
func (f *Factory) Client(ctx context.Context, clientID uuid.UUID) (*client.API, error) {
	key, err := f.key(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, nil
	}
	return f.newAPI(key), nil
}
