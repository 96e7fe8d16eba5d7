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

const StaffUsersTable = "staff_users"

// StaffUser is a gym employee with admin access.
type StaffUser struct {
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	ClientID    uuid.UUID `db:"client_id" json:"-"`
	AuthUID     string    `db:"auth_uid" json:"-"`
	Email       string    `db:"email" json:"email"`
	FullName    string    `db:"full_name" json:"fullName"`
	Role        string    `db:"role" json:"role"`
	Permissions []string  `db:"permissions" json:"permissions"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

var (
	ErrStaffUserNotFound = errors.New("staff user not found")
	ErrStaffUserConflict = errors.New("staff user already exists")
)

var staffUsersTable = Table[StaffUser]{
	Name: StaffUsersTable,
	Columns: []string{
		"user_id", "client_id", "auth_uid", "email", "full_name", "role", "permissions",
		"is_active", "created_at", "updated_at",
	},
	Scan: func(row pgx.Row) (StaffUser, error) {
		var u StaffUser
		err := row.Scan(&u.UserID, &u.ClientID, &u.AuthUID, &u.Email, &u.FullName, &u.Role,
			&u.Permissions, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
		if u.Permissions == nil {
			u.Permissions = []string{}
		}
		return u, err
	},
}

// StaffStore reads staff records. Every lookup hits the table so role changes apply immediately.
type StaffStore struct {
	db *ClientDB
}

func NewStaffStore(db *ClientDB) (*StaffStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &StaffStore{db: db}, nil
}

// FindByAuthUID returns the active staff record linked to the identity provider uid.
func (s *StaffStore) FindByAuthUID(ctx context.Context, clientID uuid.UUID, authUID string) (StaffUser, error) {
	where := ForClient(clientID).Eq("auth_uid", authUID).Eq("is_active", true)
	user, err := FindUnique(ctx, s.db.Pool(), staffUsersTable, where)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return StaffUser{}, ErrStaffUserNotFound
		}
		return StaffUser{}, err
	}
	return user, nil
}

// CreateStaffUserParams captures the fields of a new staff member.
type CreateStaffUserParams struct {
	AuthUID     string
	Email       string
	FullName    string
	Role        string
	Permissions []string
}

// Create inserts a staff user for clientID.
func (s *StaffStore) Create(ctx context.Context, clientID uuid.UUID, params CreateStaffUserParams) (StaffUser, error) {
	if strings.TrimSpace(params.AuthUID) == "" {
		return StaffUser{}, errors.New("auth uid is required")
	}
	if params.Permissions == nil {
		params.Permissions = []string{}
	}

	var user StaffUser
	err := s.db.WithClient(ctx, clientID, func(tx pgx.Tx) error {
		query, args, err := psql.Insert(StaffUsersTable).
			Columns("client_id", "auth_uid", "email", "full_name", "role", "permissions").
			Values(clientID, strings.TrimSpace(params.AuthUID), strings.TrimSpace(params.Email),
				strings.TrimSpace(params.FullName), params.Role, params.Permissions).
			Suffix("RETURNING " + strings.Join(staffUsersTable.Columns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("build staff insert: %w", err)
		}

		user, err = staffUsersTable.Scan(tx.QueryRow(ctx, query, args...))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrStaffUserConflict
			}
			return fmt.Errorf("insert staff user: %w", err)
		}
		return nil
	})
	return user, err
}
