package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
)

const maxSearchLength = 200

type Store interface {
	List(ctx context.Context, clientID uuid.UUID, filter persistence.GiftCertificateFilter, limit, offset int) (persistence.Page[persistence.GiftCertificate], error)
}

type GiftCertificate struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	AmountCents    int64     `json:"amountCents"`
	BalanceCents   int64     `json:"balanceCents"`
	Status         string    `json:"status"`
	PurchaserEmail string    `json:"purchaserEmail"`
	RecipientEmail string    `json:"recipientEmail"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Query struct {
	Status *string
	Search *string
}

type Service interface {
	List(ctx context.Context, clientID uuid.UUID, query Query, page httpapi.Page) (httpapi.List[GiftCertificate], error)
}

type service struct {
	store Store
}

func New(store Store) Service {
	if store == nil {
		panic("gift certificate store is required")
	}
	return &service{store: store}
}

func (s *service) List(ctx context.Context, clientID uuid.UUID, query Query, page httpapi.Page) (httpapi.List[GiftCertificate], error) {
	var filter persistence.GiftCertificateFilter
	if query.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*query.Status))
		filter.Status = &status
	}
	if query.Search != nil {
		filter.Search = strings.TrimSpace(*query.Search)
		if len(filter.Search) > maxSearchLength {
			return httpapi.List[GiftCertificate]{}, apperr.Invalid("search", "search must be at most 200 characters")
		}
	}

	result, err := s.store.List(ctx, clientID, filter, page.Limit, page.Offset)
	if err != nil {
		return httpapi.List[GiftCertificate]{}, err
	}

	items := make([]GiftCertificate, 0, len(result.Items))
	for _, gc := range result.Items {
		items = append(items, GiftCertificate{
			ID:             gc.CertificateID,
			Code:           gc.Code,
			AmountCents:    gc.AmountCents,
			BalanceCents:   gc.BalanceCents,
			Status:         gc.Status,
			PurchaserEmail: gc.PurchaserEmail,
			RecipientEmail: gc.RecipientEmail,
			CreatedAt:      gc.CreatedAt,
		})
	}
	return httpapi.NewList(items, result.Total, page), nil
}
