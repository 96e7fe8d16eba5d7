package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
)

type Store interface {
	List(ctx context.Context, clientID uuid.UUID, active *bool) ([]persistence.Program, error)
}

type Program struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Service interface {
	List(ctx context.Context, clientID uuid.UUID, active *bool) ([]Program, error)
}

type service struct {
	store Store
}

func New(store Store) Service {
	if store == nil {
		panic("program store is required")
	}
	return &service{store: store}
}

// List returns the programs of a gym, optionally only active or inactive ones.
func (s *service) List(ctx context.Context, clientID uuid.UUID, active *bool) ([]Program, error) {
	records, err := s.store.List(ctx, clientID, active)
	if err != nil {
		return nil, err
	}

	programs := make([]Program, 0, len(records))
	for _, p := range records {
		programs = append(programs, Program{
			ID:          p.ProgramID,
			Name:        p.Name,
			Description: p.Description,
			IsActive:    p.IsActive,
			CreatedAt:   p.CreatedAt,
		})
	}
	return programs, nil
}
