package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const MembersTable = "members"

// Member is a gym customer with optional portal access.
type Member struct {
	MemberID     uuid.UUID `db:"member_id"`
	ClientID     uuid.UUID `db:"client_id"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash *string   `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// FullName joins first and last name.
func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberConflict = errors.New("member email already exists")
)

var membersTable = Table[Member]{
	Name:    MembersTable,
	Columns: []string{"member_id", "client_id", "email", "first_name", "last_name", "password_hash", "created_at"},
	Scan: func(row pgx.Row) (Member, error) {
		var m Member
		err := row.Scan(&m.MemberID, &m.ClientID, &m.Email, &m.FirstName, &m.LastName, &m.PasswordHash, &m.CreatedAt)
		return m, err
	},
}

type MemberStore struct {
	db *ClientDB
}

func NewMemberStore(db *ClientDB) (*MemberStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &MemberStore{db: db}, nil
}

func (s *MemberStore) FindByID(ctx context.Context, clientID, memberID uuid.UUID) (Member, error) {
	m, err := FindUnique(ctx, s.db.Pool(), membersTable, ForClient(clientID).Eq("member_id", memberID))
	if errors.Is(err, ErrRecordNotFound) {
		return Member{}, ErrMemberNotFound
	}
	return m, err
}

// FindByEmail matches the address case-insensitively within one gym.
func (s *MemberStore) FindByEmail(ctx context.Context, clientID uuid.UUID, email string) (Member, error) {
	where := ForClient(clientID).Eq("LOWER(email)", strings.ToLower(strings.TrimSpace(email)))
	m, err := FindUnique(ctx, s.db.Pool(), membersTable, where)
	if errors.Is(err, ErrRecordNotFound) {
		return Member{}, ErrMemberNotFound
	}
	return m, err
}

// FindByIDs loads the members in ids with a single IN lookup, keyed by member id.
func (s *MemberStore) FindByIDs(ctx context.Context, clientID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Member, error) {
	out := make(map[uuid.UUID]Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	members, err := FindMany(ctx, s.db.Pool(), membersTable, In(ForClient(clientID), "member_id", ids), FindOptions{})
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		out[m.MemberID] = m
	}
	return out, nil
}

// SetPasswordHash stores hash on the member row and appends audit in the same transaction.
func (s *MemberStore) SetPasswordHash(ctx context.Context, clientID, memberID uuid.UUID, hash string, audit NewAuditEntry) error {
	return s.db.WithClient(ctx, clientID, func(tx pgx.Tx) error {
		query, args, err := psql.Update(MembersTable).
			Set("password_hash", hash).
			Where(ForClient(clientID).Eq("member_id", memberID).Sqlizer()).
			ToSql()
		if err != nil {
			return fmt.Errorf("build member update: %w", err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update member password: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrMemberNotFound
		}

		return appendAudit(ctx, tx, clientID, audit)
	})
}

// CreateMemberParams captures a new member row.
type CreateMemberParams struct {
	Email     string
	FirstName string
	LastName  string
}

// Create inserts a member for clientID.
func (s *MemberStore) Create(ctx context.Context, clientID uuid.UUID, params CreateMemberParams) (Member, error) {
	var member Member
	err := s.db.WithClient(ctx, clientID, func(tx pgx.Tx) error {
		query, args, err := psql.Insert(MembersTable).
			Columns("client_id", "email", "first_name", "last_name").
			Values(clientID, strings.TrimSpace(params.Email), strings.TrimSpace(params.FirstName), strings.TrimSpace(params.LastName)).
			Suffix("RETURNING " + strings.Join(membersTable.Columns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("build member insert: %w", err)
		}
		member, err = membersTable.Scan(tx.QueryRow(ctx, query, args...))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrMemberConflict
			}
			return fmt.Errorf("insert member: %w", err)
		}
		return nil
	})
	return member, err
}
