package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	EnrollmentSubmissionsTable = "enrollment_submissions"

	EnrollmentStatusNew = "NEW"
)

// EnrollmentSubmission is a sign-up form posted from a gym's public enrollment page.
type EnrollmentSubmission struct {
	SubmissionID uuid.UUID       `db:"submission_id"`
	ClientID     uuid.UUID       `db:"client_id"`
	Status       string          `db:"status"`
	Data         json.RawMessage `db:"data"`
	CreatedAt    time.Time       `db:"created_at"`
}

var enrollmentSubmissionsTable = Table[EnrollmentSubmission]{
	Name:    EnrollmentSubmissionsTable,
	Columns: []string{"submission_id", "client_id", "status", "data", "created_at"},
	Scan: func(row pgx.Row) (EnrollmentSubmission, error) {
		var e EnrollmentSubmission
		err := row.Scan(&e.SubmissionID, &e.ClientID, &e.Status, &e.Data, &e.CreatedAt)
		return e, err
	},
}

type EnrollmentStore struct {
	db *ClientDB
}

func NewEnrollmentStore(db *ClientDB) (*EnrollmentStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &EnrollmentStore{db: db}, nil
}

func (s *EnrollmentStore) List(ctx context.Context, clientID uuid.UUID, status *string, limit, offset int) (Page[EnrollmentSubmission], error) {
	where := EqIfSet(ForClient(clientID), "status", status)
	return FindPage(ctx, s.db.Pool(), enrollmentSubmissionsTable, where, []string{"created_at DESC", "submission_id DESC"}, limit, offset)
}

// Create stores an already validated payload and appends audit in the same transaction.
func (s *EnrollmentStore) Create(ctx context.Context, clientID uuid.UUID, data json.RawMessage, audit NewAuditEntry) (EnrollmentSubmission, error) {
	var created EnrollmentSubmission
	err := s.db.WithClient(ctx, clientID, func(tx pgx.Tx) error {
		query, args, err := psql.Insert(EnrollmentSubmissionsTable).
			Columns("client_id", "status", "data").
			Values(clientID, EnrollmentStatusNew, data).
			Suffix("RETURNING " + strings.Join(enrollmentSubmissionsTable.Columns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("build enrollment insert: %w", err)
		}

		created, err = enrollmentSubmissionsTable.Scan(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return fmt.Errorf("insert enrollment submission: %w", err)
		}

		audit.EntityID = created.SubmissionID.String()
		return appendAudit(ctx, tx, clientID, audit)
	})
	return created, err
}
