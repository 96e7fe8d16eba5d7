package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ProgramsTable = "programs"

type Program struct {
	ProgramID   uuid.UUID `db:"program_id"`
	ClientID    uuid.UUID `db:"client_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

var programsTable = Table[Program]{
	Name:    ProgramsTable,
	Columns: []string{"program_id", "client_id", "name", "description", "is_active", "created_at"},
	Scan: func(row pgx.Row) (Program, error) {
		var p Program
		err := row.Scan(&p.ProgramID, &p.ClientID, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt)
		return p, err
	},
}

type ProgramStore struct {
	db *ClientDB
}

func NewProgramStore(db *ClientDB) (*ProgramStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &ProgramStore{db: db}, nil
}

// List returns the programs of a gym, optionally only active or inactive ones.
func (s *ProgramStore) List(ctx context.Context, clientID uuid.UUID, active *bool) ([]Program, error) {
	where := EqIfSet(ForClient(clientID), "is_active", active)
	return FindMany(ctx, s.db.Pool(), programsTable, where, FindOptions{OrderBy: []string{"name ASC"}})
}
