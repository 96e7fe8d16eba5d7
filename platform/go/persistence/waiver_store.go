package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	WaiversTable         = "waivers"
	WaiverTemplatesTable = "waiver_templates"

	WaiverStatusPending = "PENDING"
	WaiverStatusSigned  = "SIGNED"
)

// Waiver is a liability waiver issued to a member.
type Waiver struct {
	WaiverID     uuid.UUID  `db:"waiver_id"`
	ClientID     uuid.UUID  `db:"client_id"`
	MemberID     uuid.UUID  `db:"member_id"`
	Status       string     `db:"status"`
	SignedAt     *time.Time `db:"signed_at"`
	DocumentKey  *string    `db:"document_key"`
	SignatureKey *string    `db:"signature_key"`
	CreatedAt    time.Time  `db:"created_at"`
}

// WaiverTemplate is the waiver text a gym shows on its public signing page.
type WaiverTemplate struct {
	ClientID  uuid.UUID `db:"client_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	UpdatedAt time.Time `db:"updated_at"`
}

var (
	ErrWaiverNotFound         = errors.New("waiver not found")
	ErrWaiverTemplateNotFound = errors.New("waiver template not found")
)

var waiversTable = Table[Waiver]{
	Name: WaiversTable,
	Columns: []string{
		"waiver_id", "client_id", "member_id", "status", "signed_at", "document_key", "signature_key", "created_at",
	},
	Scan: func(row pgx.Row) (Waiver, error) {
		var w Waiver
		err := row.Scan(&w.WaiverID, &w.ClientID, &w.MemberID, &w.Status, &w.SignedAt, &w.DocumentKey, &w.SignatureKey, &w.CreatedAt)
		return w, err
	},
}

var waiverTemplatesTable = Table[WaiverTemplate]{
	Name:    WaiverTemplatesTable,
	Columns: []string{"client_id", "title", "body", "updated_at"},
	Scan: func(row pgx.Row) (WaiverTemplate, error) {
		var t WaiverTemplate
		err := row.Scan(&t.ClientID, &t.Title, &t.Body, &t.UpdatedAt)
		return t, err
	},
}

type WaiverStore struct {
	db *ClientDB
}

func NewWaiverStore(db *ClientDB) (*WaiverStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &WaiverStore{db: db}, nil
}

// ListPending pages through unsigned waivers, oldest first.
func (s *WaiverStore) ListPending(ctx context.Context, clientID uuid.UUID, limit, offset int) (Page[Waiver], error) {
	where := ForClient(clientID).Eq("status", WaiverStatusPending)
	return FindPage(ctx, s.db.Pool(), waiversTable, where, []string{"created_at ASC", "waiver_id ASC"}, limit, offset)
}

// ListSigned returns the signed waivers of one member; both the member and the client must match.
func (s *WaiverStore) ListSigned(ctx context.Context, clientID, memberID uuid.UUID) ([]Waiver, error) {
	where := ForClient(clientID).Eq("member_id", memberID).Eq("status", WaiverStatusSigned)
	return FindMany(ctx, s.db.Pool(), waiversTable, where, FindOptions{OrderBy: []string{"signed_at DESC"}})
}

// FindSigned returns a single signed waiver pinned by client, member and waiver id.
func (s *WaiverStore) FindSigned(ctx context.Context, clientID, memberID, waiverID uuid.UUID) (Waiver, error) {
	where := ForClient(clientID).
		Eq("member_id", memberID).
		Eq("waiver_id", waiverID).
		Eq("status", WaiverStatusSigned)
	w, err := FindUnique(ctx, s.db.Pool(), waiversTable, where)
	if errors.Is(err, ErrRecordNotFound) {
		return Waiver{}, ErrWaiverNotFound
	}
	return w, err
}

func (s *WaiverStore) Template(ctx context.Context, clientID uuid.UUID) (WaiverTemplate, error) {
	t, err := FindUnique(ctx, s.db.Pool(), waiverTemplatesTable, ForClient(clientID))
	if errors.Is(err, ErrRecordNotFound) {
		return WaiverTemplate{}, ErrWaiverTemplateNotFound
	}
	return t, err
}
