package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
)

const (
	auditEntityType  = "EMAIL_TEMPLATE"
	maxSubjectLength = 200
	maxBodyLength    = 20000
)

var ErrTemplateNotFound = apperr.NotFound("email template")

type Store interface {
	List(ctx context.Context, clientID uuid.UUID) (map[string]persistence.EmailTemplate, error)
	Save(ctx context.Context, clientID uuid.UUID, key string, content persistence.EmailTemplateContent, isCustom bool, audit persistence.NewAuditEntry) (persistence.EmailTemplate, error)
}

// Template is a template as shown to staff: the stored row, or the default when none exists.
type Template struct {
	Key       string     `json:"key"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	IsCustom  bool       `json:"isCustom"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type UpdateInput struct {
	Subject string
	Body    string
}

type Service interface {
	List(ctx context.Context, clientID uuid.UUID) ([]Template, error)
	Update(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, key string, input UpdateInput) (Template, error)
	Reset(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, key string) (Template, error)
}

type service struct {
	store Store
}

func New(store Store) Service {
	if store == nil {
		panic("email template store is required")
	}
	return &service{store: store}
}

// List returns every known key in a fixed order.
func (s *service) List(ctx context.Context, clientID uuid.UUID) ([]Template, error) {
	stored, err := s.store.List(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]Template, 0, len(defaults))
	for _, d := range defaults {
		if row, ok := stored[d.key]; ok {
			out = append(out, fromRecord(row))
			continue
		}
		out = append(out, Template{Key: d.key, Subject: d.subject, Body: d.body})
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, key string, input UpdateInput) (Template, error) {
	if _, ok := lookupDefault(key); !ok {
		return Template{}, ErrTemplateNotFound
	}
	content, err := validate(input)
	if err != nil {
		return Template{}, err
	}

	row, err := s.store.Save(ctx, clientID, key, content, true, persistence.NewAuditEntry{
		EntityType: auditEntityType,
		EntityID:   key,
		Summary:    "Updated email template " + key,
		Actor:      audit.Actor(),
	})
	if err != nil {
		return Template{}, err
	}
	return fromRecord(row), nil
}

// Reset stores the default content so the row exists with isCustom=false.
func (s *service) Reset(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, key string) (Template, error) {
	d, ok := lookupDefault(key)
	if !ok {
		return Template{}, ErrTemplateNotFound
	}

	row, err := s.store.Save(ctx, clientID, key, persistence.EmailTemplateContent{Subject: d.subject, Body: d.body}, false, persistence.NewAuditEntry{
		EntityType: auditEntityType,
		EntityID:   key,
		Summary:    "Reset email template " + key + " to default",
		Actor:      audit.Actor(),
	})
	if err != nil {
		return Template{}, err
	}
	return fromRecord(row), nil
}

func validate(input UpdateInput) (persistence.EmailTemplateContent, error) {
	fields := apperr.FieldErrors{}
	subject := strings.TrimSpace(input.Subject)
	switch {
	case subject == "":
		fields.Add("subject", "subject is required")
	case utf8.RuneCountInString(subject) > maxSubjectLength:
		fields.Add("subject", "subject must be at most 200 characters")
	}
	switch {
	case strings.TrimSpace(input.Body) == "":
		fields.Add("body", "body is required")
	case utf8.RuneCountInString(input.Body) > maxBodyLength:
		fields.Add("body", "body is too long")
	}
	if len(fields) > 0 {
		return persistence.EmailTemplateContent{}, &apperr.ValidationError{Message: "invalid email template", Fields: fields}
	}
	return persistence.EmailTemplateContent{Subject: subject, Body: input.Body}, nil
}

func fromRecord(row persistence.EmailTemplate) Template {
	updated := row.UpdatedAt
	return Template{
		Key:       row.Key,
		Subject:   row.Subject,
		Body:      row.Body,
		IsCustom:  row.IsCustom,
		UpdatedAt: &updated,
	}
}
