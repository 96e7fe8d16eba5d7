package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
)

type Invoice struct {
	ID          uuid.UUID  `json:"id"`
	Number      string     `json:"number"`
	AmountCents int64      `json:"amountCents"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	DueAt       *time.Time `json:"dueAt"`
	PaidAt      *time.Time `json:"paidAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Membership struct {
	ID       uuid.UUID  `json:"id"`
	PlanID   uuid.UUID  `json:"planId"`
	PlanName string     `json:"planName"`
	Status   string     `json:"status"`
	StartsAt time.Time  `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

type Plan struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Interval   string    `json:"interval"`
}

type OrderItem struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitCents   int64  `json:"unitCents"`
}

type Order struct {
	ID         uuid.UUID   `json:"id"`
	Status     string      `json:"status"`
	TotalCents int64       `json:"totalCents"`
	CreatedAt  time.Time   `json:"createdAt"`
	Items      []OrderItem `json:"items"`
}

type Trial struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	StartsAt      time.Time `json:"startsAt"`
	EndsAt        time.Time `json:"endsAt"`
	VisitsUsed    int       `json:"visitsUsed"`
	VisitsAllowed int       `json:"visitsAllowed"`
}

func (s *service) Invoices(ctx context.Context, clientID, memberID uuid.UUID) ([]Invoice, error) {
	records, err := s.deps.Billing.InvoicesForMember(ctx, clientID, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]Invoice, 0, len(records))
	for _, inv := range records {
		out = append(out, Invoice{
			ID:          inv.InvoiceID,
			Number:      inv.Number,
			AmountCents: inv.AmountCents,
			Currency:    inv.Currency,
			Status:      inv.Status,
			DueAt:       inv.DueAt,
			PaidAt:      inv.PaidAt,
			CreatedAt:   inv.CreatedAt,
		})
	}
	return out, nil
}

// Memberships resolves plan names with one lookup over the distinct plan ids.
func (s *service) Memberships(ctx context.Context, clientID, memberID uuid.UUID) ([]Membership, error) {
	records, err := s.deps.Billing.MembershipsForMember(ctx, clientID, memberID)
	if err != nil {
		return nil, err
	}

	planIDs := distinct(records, func(m persistence.Membership) uuid.UUID { return m.PlanID })
	plans, err := s.deps.Billing.PlansByIDs(ctx, clientID, planIDs)
	if err != nil {
		return nil, err
	}

	out := make([]Membership, 0, len(records))
	for _, m := range records {
		out = append(out, Membership{
			ID:       m.MembershipID,
			PlanID:   m.PlanID,
			PlanName: plans[m.PlanID].Name,
			Status:   m.Status,
			StartsAt: m.StartsAt,
			EndsAt:   m.EndsAt,
		})
	}
	return out, nil
}

func (s *service) Plans(ctx context.Context, clientID uuid.UUID) ([]Plan, error) {
	records, err := s.deps.Billing.PublicPlans(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]Plan, 0, len(records))
	for _, p := range records {
		out = append(out, Plan{ID: p.PlanID, Name: p.Name, PriceCents: p.PriceCents, Interval: p.Interval})
	}
	return out, nil
}

// Orders attaches line items with one lookup over the member's order ids.
func (s *service) Orders(ctx context.Context, clientID, memberID uuid.UUID) ([]Order, error) {
	records, err := s.deps.Orders.OrdersForMember(ctx, clientID, memberID)
	if err != nil {
		return nil, err
	}

	orderIDs := distinct(records, func(o persistence.StoreOrder) uuid.UUID { return o.OrderID })
	items, err := s.deps.Orders.ItemsForOrders(ctx, clientID, orderIDs)
	if err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(records))
	for _, o := range records {
		lines := make([]OrderItem, 0, len(items[o.OrderID]))
		for _, it := range items[o.OrderID] {
			lines = append(lines, OrderItem{ProductName: it.ProductName, Quantity: it.Quantity, UnitCents: it.UnitCents})
		}
		out = append(out, Order{
			ID:         o.OrderID,
			Status:     o.Status,
			TotalCents: o.TotalCents,
			CreatedAt:  o.CreatedAt,
			Items:      lines,
		})
	}
	return out, nil
}

// Trial returns the member's most recent trial pass, or nil when there is none.
func (s *service) Trial(ctx context.Context, clientID, memberID uuid.UUID) (*Trial, error) {
	tp, err := s.deps.Trials.LatestForMember(ctx, clientID, memberID)
	if err != nil {
		if errors.Is(err, persistence.ErrTrialPassNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Trial{
		ID:            tp.TrialID,
		Status:        tp.Status,
		StartsAt:      tp.StartsAt,
		EndsAt:        tp.EndsAt,
		VisitsUsed:    tp.VisitsUsed,
		VisitsAllowed: tp.VisitsAllowed,
	}, nil
}

func distinct[T any](records []T, key func(T) uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(records))
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		id := key(r)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
