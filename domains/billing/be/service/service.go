package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76/client"
)

// Gateway builds the tenant's payment client, returning nil when no key is configured.
// Satisfied by *payments.Factory.
type Gateway interface {
	Client(ctx context.Context, clientID uuid.UUID) (*client.API, error)
}

type Status struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`
}

type Service interface {
	Status(ctx context.Context, clientID uuid.UUID) (Status, error)
}

type service struct {
	gateway Gateway
}

func New(gateway Gateway) Service {
	if gateway == nil {
		panic("payment gateway is required")
	}
	return &service{gateway: gateway}
}

func (s *service) Status(ctx context.Context, clientID uuid.UUID) (Status, error) {
	api, err := s.gateway.Client(ctx, clientID)
	if err != nil {
		return Status{}, err
	}
	return Status{Enabled: api != nil, Provider: "stripe"}, nil
}
