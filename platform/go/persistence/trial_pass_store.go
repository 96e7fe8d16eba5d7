package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const TrialPassesTable = "trial_passes"

type TrialPass struct {
	TrialID       uuid.UUID `db:"trial_id"`
	ClientID      uuid.UUID `db:"client_id"`
	MemberID      uuid.UUID `db:"member_id"`
	Status        string    `db:"status"`
	StartsAt      time.Time `db:"starts_at"`
	EndsAt        time.Time `db:"ends_at"`
	VisitsUsed    int       `db:"visits_used"`
	VisitsAllowed int       `db:"visits_allowed"`
}

var ErrTrialPassNotFound = errors.New("trial pass not found")

var trialPassesTable = Table[TrialPass]{
	Name:    TrialPassesTable,
	Columns: []string{"trial_id", "client_id", "member_id", "status", "starts_at", "ends_at", "visits_used", "visits_allowed"},
	Scan: func(row pgx.Row) (TrialPass, error) {
		var t TrialPass
		err := row.Scan(&t.TrialID, &t.ClientID, &t.MemberID, &t.Status, &t.StartsAt, &t.EndsAt, &t.VisitsUsed, &t.VisitsAllowed)
		return t, err
	},
}

type TrialPassStore struct {
	db *ClientDB
}

func NewTrialPassStore(db *ClientDB) (*TrialPassStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &TrialPassStore{db: db}, nil
}

// LatestForMember returns the most recently started trial of a member.
func (s *TrialPassStore) LatestForMember(ctx context.Context, clientID, memberID uuid.UUID) (TrialPass, error) {
	where := ForClient(clientID).Eq("member_id", memberID)
	t, err := FindFirst(ctx, s.db.Pool(), trialPassesTable, where, "starts_at DESC")
	if errors.Is(err, ErrRecordNotFound) {
		return TrialPass{}, ErrTrialPassNotFound
	}
	return t, err
}
