package persistence

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const EmailTemplatesTable = "email_templates"

// EmailTemplate is a stored template row. Keys without a row fall back to the built-in default.
type EmailTemplate struct {
	ClientID  uuid.UUID `db:"client_id"`
	Key       string    `db:"template_key"`
	Subject   string    `db:"subject"`
	Body      string    `db:"body"`
	IsCustom  bool      `db:"is_custom"`
	UpdatedAt time.Time `db:"updated_at"`
}

// EmailTemplateContent is the editable part of a template.
type EmailTemplateContent struct {
	Subject string
	Body    string
}

var emailTemplatesTable = Table[EmailTemplate]{
	Name:    EmailTemplatesTable,
	Columns: []string{"client_id", "template_key", "subject", "body", "is_custom", "updated_at"},
	Scan: func(row pgx.Row) (EmailTemplate, error) {
		var t EmailTemplate
		err := row.Scan(&t.ClientID, &t.Key, &t.Subject, &t.Body, &t.IsCustom, &t.UpdatedAt)
		return t, err
	},
}

type EmailTemplateStore struct {
	db *ClientDB
}

func NewEmailTemplateStore(db *ClientDB) (*EmailTemplateStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &EmailTemplateStore{db: db}, nil
}

// List returns every stored template of a gym keyed by template key.
func (s *EmailTemplateStore) List(ctx context.Context, clientID uuid.UUID) (map[string]EmailTemplate, error) {
	rows, err := FindMany(ctx, s.db.Pool(), emailTemplatesTable, ForClient(clientID), FindOptions{OrderBy: []string{"template_key ASC"}})
	if err != nil {
		return nil, err
	}
	out := make(map[string]EmailTemplate, len(rows))
	for _, t := range rows {
		out[t.Key] = t
	}
	return out, nil
}

// Save upserts content under key with the given custom flag and appends audit in the same
// transaction. Reset stores the default with isCustom=false; edits store isCustom=true.
func (s *EmailTemplateStore) Save(ctx context.Context, clientID uuid.UUID, key string, content EmailTemplateContent, isCustom bool, audit NewAuditEntry) (EmailTemplate, error) {
	var saved EmailTemplate
	err := s.db.WithClient(ctx, clientID, func(tx pgx.Tx) error {
		var err error
		saved, err = Upsert(ctx, tx, emailTemplatesTable,
			[]string{"client_id", "template_key"},
			map[string]any{
				"client_id":    clientID,
				"template_key": key,
				"subject":      content.Subject,
				"body":         content.Body,
				"is_custom":    isCustom,
			},
			map[string]any{
				"subject":    content.Subject,
				"body":       content.Body,
				"is_custom":  isCustom,
				"updated_at": sq.Expr("NOW()"),
			},
		)
		if err != nil {
			return err
		}
		return appendAudit(ctx, tx, clientID, audit)
	})
	return saved, err
}
