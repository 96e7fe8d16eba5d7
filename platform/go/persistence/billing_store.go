package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	InvoicesTable    = "invoices"
	MembershipsTable = "memberships"
	PlansTable       = "plans"
)

type Invoice struct {
	InvoiceID   uuid.UUID  `db:"invoice_id"`
	ClientID    uuid.UUID  `db:"client_id"`
	MemberID    uuid.UUID  `db:"member_id"`
	Number      string     `db:"number"`
	AmountCents int64      `db:"amount_cents"`
	Currency    string     `db:"currency"`
	Status      string     `db:"status"`
	DueAt       *time.Time `db:"due_at"`
	PaidAt      *time.Time `db:"paid_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

type Membership struct {
	MembershipID uuid.UUID  `db:"membership_id"`
	ClientID     uuid.UUID  `db:"client_id"`
	MemberID     uuid.UUID  `db:"member_id"`
	PlanID       uuid.UUID  `db:"plan_id"`
	Status       string     `db:"status"`
	StartsAt     time.Time  `db:"starts_at"`
	EndsAt       *time.Time `db:"ends_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

type Plan struct {
	PlanID     uuid.UUID `db:"plan_id"`
	ClientID   uuid.UUID `db:"client_id"`
	Name       string    `db:"name"`
	PriceCents int64     `db:"price_cents"`
	Interval   string    `db:"interval"`
	IsPublic   bool      `db:"is_public"`
	IsActive   bool      `db:"is_active"`
}

var invoicesTable = Table[Invoice]{
	Name: InvoicesTable,
	Columns: []string{
		"invoice_id", "client_id", "member_id", "number", "amount_cents", "currency", "status", "due_at", "paid_at", "created_at",
	},
	Scan: func(row pgx.Row) (Invoice, error) {
		var i Invoice
		err := row.Scan(&i.InvoiceID, &i.ClientID, &i.MemberID, &i.Number, &i.AmountCents, &i.Currency, &i.Status, &i.DueAt, &i.PaidAt, &i.CreatedAt)
		return i, err
	},
}

var membershipsTable = Table[Membership]{
	Name:    MembershipsTable,
	Columns: []string{"membership_id", "client_id", "member_id", "plan_id", "status", "starts_at", "ends_at", "created_at"},
	Scan: func(row pgx.Row) (Membership, error) {
		var m Membership
		err := row.Scan(&m.MembershipID, &m.ClientID, &m.MemberID, &m.PlanID, &m.Status, &m.StartsAt, &m.EndsAt, &m.CreatedAt)
		return m, err
	},
}

var plansTable = Table[Plan]{
	Name:    PlansTable,
	Columns: []string{"plan_id", "client_id", "name", "price_cents", "interval", "is_public", "is_active"},
	Scan: func(row pgx.Row) (Plan, error) {
		var p Plan
		err := row.Scan(&p.PlanID, &p.ClientID, &p.Name, &p.PriceCents, &p.Interval, &p.IsPublic, &p.IsActive)
		return p, err
	},
}

// BillingStore serves invoices, memberships and plans.
type BillingStore struct {
	db *ClientDB
}

func NewBillingStore(db *ClientDB) (*BillingStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &BillingStore{db: db}, nil
}

func (s *BillingStore) InvoicesForMember(ctx context.Context, clientID, memberID uuid.UUID) ([]Invoice, error) {
	where := ForClient(clientID).Eq("member_id", memberID)
	return FindMany(ctx, s.db.Pool(), invoicesTable, where, FindOptions{OrderBy: []string{"created_at DESC"}})
}

func (s *BillingStore) MembershipsForMember(ctx context.Context, clientID, memberID uuid.UUID) ([]Membership, error) {
	where := ForClient(clientID).Eq("member_id", memberID)
	return FindMany(ctx, s.db.Pool(), membershipsTable, where, FindOptions{OrderBy: []string{"starts_at DESC"}})
}

// PlansByIDs loads plans with a single IN lookup, keyed by plan id.
func (s *BillingStore) PlansByIDs(ctx context.Context, clientID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Plan, error) {
	out := make(map[uuid.UUID]Plan, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	plans, err := FindMany(ctx, s.db.Pool(), plansTable, In(ForClient(clientID), "plan_id", ids), FindOptions{})
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		out[p.PlanID] = p
	}
	return out, nil
}

// PublicPlans lists the active plans a gym offers to members.
func (s *BillingStore) PublicPlans(ctx context.Context, clientID uuid.UUID) ([]Plan, error) {
	where := ForClient(clientID).Eq("is_public", true).Eq("is_active", true)
	return FindMany(ctx, s.db.Pool(), plansTable, where, FindOptions{OrderBy: []string{"price_cents ASC", "name ASC"}})
}
