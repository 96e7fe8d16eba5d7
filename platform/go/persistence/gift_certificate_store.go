package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const GiftCertificatesTable = "gift_certificates"

type GiftCertificate struct {
	CertificateID  uuid.UUID `db:"certificate_id"`
	ClientID       uuid.UUID `db:"client_id"`
	Code           string    `db:"code"`
	AmountCents    int64     `db:"amount_cents"`
	BalanceCents   int64     `db:"balance_cents"`
	Status         string    `db:"status"`
	PurchaserEmail string    `db:"purchaser_email"`
	RecipientEmail string    `db:"recipient_email"`
	CreatedAt      time.Time `db:"created_at"`
}

// GiftCertificateFilter narrows a listing by status and a substring of code or recipient.
type GiftCertificateFilter struct {
	Status *string
	Search string
}

var giftCertificatesTable = Table[GiftCertificate]{
	Name: GiftCertificatesTable,
	Columns: []string{
		"certificate_id", "client_id", "code", "amount_cents", "balance_cents", "status",
		"purchaser_email", "recipient_email", "created_at",
	},
	Scan: func(row pgx.Row) (GiftCertificate, error) {
		var g GiftCertificate
		err := row.Scan(&g.CertificateID, &g.ClientID, &g.Code, &g.AmountCents, &g.BalanceCents, &g.Status,
			&g.PurchaserEmail, &g.RecipientEmail, &g.CreatedAt)
		return g, err
	},
}

type GiftCertificateStore struct {
	db *ClientDB
}

func NewGiftCertificateStore(db *ClientDB) (*GiftCertificateStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &GiftCertificateStore{db: db}, nil
}

func (s *GiftCertificateStore) List(ctx context.Context, clientID uuid.UUID, filter GiftCertificateFilter, limit, offset int) (Page[GiftCertificate], error) {
	where := EqIfSet(ForClient(clientID), "status", filter.Status).
		ContainsAny([]string{"code", "recipient_email"}, filter.Search)
	return FindPage(ctx, s.db.Pool(), giftCertificatesTable, where, []string{"created_at DESC", "certificate_id DESC"}, limit, offset)
}
