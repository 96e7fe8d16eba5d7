package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
)

const (
	schemaName      = "enrollment_submission"
	auditEntityType = "ENROLLMENT_SUBMISSION"
)

//go:embed schemas/enrollment_submission.json
var submissionSchema []byte

type Store interface {
	List(ctx context.Context, clientID uuid.UUID, status *string, limit, offset int) (persistence.Page[persistence.EnrollmentSubmission], error)
	Create(ctx context.Context, clientID uuid.UUID, data json.RawMessage, audit persistence.NewAuditEntry) (persistence.EnrollmentSubmission, error)
}

// Validator checks a payload against a named JSON schema.
type Validator interface {
	Validate(name string, schema, payload []byte) error
}

type Submission struct {
	ID        uuid.UUID       `json:"id"`
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Service interface {
	List(ctx context.Context, clientID uuid.UUID, status *string, page httpapi.Page) (httpapi.List[Submission], error)
	Submit(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, payload []byte) (Submission, error)
}

type service struct {
	store     Store
	validator Validator
}

func New(store Store, validator Validator) Service {
	if store == nil {
		panic("enrollment store is required")
	}
	if validator == nil {
		panic("schema validator is required")
	}
	return &service{store: store, validator: validator}
}

func (s *service) List(ctx context.Context, clientID uuid.UUID, status *string, page httpapi.Page) (httpapi.List[Submission], error) {
	if status != nil {
		upper := strings.ToUpper(strings.TrimSpace(*status))
		status = &upper
	}

	result, err := s.store.List(ctx, clientID, status, page.Limit, page.Offset)
	if err != nil {
		return httpapi.List[Submission]{}, err
	}

	items := make([]Submission, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, toSubmission(rec))
	}
	return httpapi.NewList(items, result.Total, page), nil
}

// Submit validates payload against the embedded schema before storing it.
func (s *service) Submit(ctx context.Context, audit requesttrace.AuditInfo, clientID uuid.UUID, payload []byte) (Submission, error) {
	if err := s.validator.Validate(schemaName, submissionSchema, payload); err != nil {
		return Submission{}, err
	}

	rec, err := s.store.Create(ctx, clientID, json.RawMessage(payload), persistence.NewAuditEntry{
		EntityType: auditEntityType,
		Summary:    "Enrollment form submitted",
		Actor:      audit.Actor(),
	})
	if err != nil {
		return Submission{}, err
	}
	return toSubmission(rec), nil
}

func toSubmission(rec persistence.EnrollmentSubmission) Submission {
	return Submission{ID: rec.SubmissionID, Status: rec.Status, Data: rec.Data, CreatedAt: rec.CreatedAt}
}
