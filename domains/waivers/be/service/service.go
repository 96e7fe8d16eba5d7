package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-gym/platform/go/storage"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

var (
	ErrWaiverNotFound         = apperr.NotFound("waiver")
	ErrDocumentNotFound       = apperr.NotFound("waiver document")
	ErrWaiverTemplateNotFound = apperr.NotFound("waiver template")
)

type Store interface {
	ListPending(ctx context.Context, clientID uuid.UUID, limit, offset int) (persistence.Page[persistence.Waiver], error)
	ListSigned(ctx context.Context, clientID, memberID uuid.UUID) ([]persistence.Waiver, error)
	FindSigned(ctx context.Context, clientID, memberID, waiverID uuid.UUID) (persistence.Waiver, error)
	Template(ctx context.Context, clientID uuid.UUID) (persistence.WaiverTemplate, error)
}

// MemberLookup resolves member names for a page of waivers in one query.
type MemberLookup interface {
	FindByIDs(ctx context.Context, clientID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]persistence.Member, error)
}

type PendingWaiver struct {
	ID         uuid.UUID `json:"id"`
	MemberID   uuid.UUID `json:"memberId"`
	MemberName string    `json:"memberName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type SignedWaiver struct {
	ID          uuid.UUID  `json:"id"`
	MemberID    uuid.UUID  `json:"memberId"`
	SignedAt    *time.Time `json:"signedAt"`
	HasDocument bool       `json:"hasDocument"`
}

// PublicWaiver is what the public signing page needs to render.
type PublicWaiver struct {
	GymName string `json:"gymName"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

type Service interface {
	Pending(ctx context.Context, clientID uuid.UUID, page httpapi.Page) (httpapi.List[PendingWaiver], error)
	Signed(ctx context.Context, clientID, memberID uuid.UUID) ([]SignedWaiver, error)
	Document(ctx context.Context, clientID, memberID, waiverID uuid.UUID) (storage.Document, error)
	PublicData(ctx context.Context, scope tenant.Scope) (PublicWaiver, error)
}

type service struct {
	store     Store
	members   MemberLookup
	documents storage.DocumentStore
}

func New(store Store, members MemberLookup, documents storage.DocumentStore) Service {
	if store == nil {
		panic("waiver store is required")
	}
	if members == nil {
		panic("member lookup is required")
	}
	if documents == nil {
		panic("document store is required")
	}
	return &service{store: store, members: members, documents: documents}
}

func (s *service) Pending(ctx context.Context, clientID uuid.UUID, page httpapi.Page) (httpapi.List[PendingWaiver], error) {
	result, err := s.store.ListPending(ctx, clientID, page.Limit, page.Offset)
	if err != nil {
		return httpapi.List[PendingWaiver]{}, err
	}

	members, err := s.members.FindByIDs(ctx, clientID, distinctMemberIDs(result.Items))
	if err != nil {
		return httpapi.List[PendingWaiver]{}, err
	}

	items := make([]PendingWaiver, 0, len(result.Items))
	for _, w := range result.Items {
		items = append(items, PendingWaiver{
			ID:         w.WaiverID,
			MemberID:   w.MemberID,
			MemberName: members[w.MemberID].FullName(),
			CreatedAt:  w.CreatedAt,
		})
	}
	return httpapi.NewList(items, result.Total, page), nil
}

func (s *service) Signed(ctx context.Context, clientID, memberID uuid.UUID) ([]SignedWaiver, error) {
	records, err := s.store.ListSigned(ctx, clientID, memberID)
	if err != nil {
		return nil, err
	}

	out := make([]SignedWaiver, 0, len(records))
	for _, w := range records {
		out = append(out, SignedWaiver{
			ID:          w.WaiverID,
			MemberID:    w.MemberID,
			SignedAt:    w.SignedAt,
			HasDocument: w.DocumentKey != nil && *w.DocumentKey != "",
		})
	}
	return out, nil
}

// Document opens the signed PDF. Caller closes the returned body.
func (s *service) Document(ctx context.Context, clientID, memberID, waiverID uuid.UUID) (storage.Document, error) {
	w, err := s.store.FindSigned(ctx, clientID, memberID, waiverID)
	if err != nil {
		if errors.Is(err, persistence.ErrWaiverNotFound) {
			return storage.Document{}, ErrWaiverNotFound
		}
		return storage.Document{}, err
	}
	if w.DocumentKey == nil || *w.DocumentKey == "" {
		return storage.Document{}, ErrDocumentNotFound
	}

	doc, err := s.documents.Open(ctx, clientID, *w.DocumentKey)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return storage.Document{}, ErrDocumentNotFound
		}
		return storage.Document{}, err
	}
	return doc, nil
}

func (s *service) PublicData(ctx context.Context, scope tenant.Scope) (PublicWaiver, error) {
	tpl, err := s.store.Template(ctx, scope.ClientID)
	if err != nil {
		if errors.Is(err, persistence.ErrWaiverTemplateNotFound) {
			return PublicWaiver{}, ErrWaiverTemplateNotFound
		}
		return PublicWaiver{}, err
	}
	return PublicWaiver{GymName: scope.DisplayName, Title: tpl.Title, Body: tpl.Body}, nil
}

func distinctMemberIDs(waivers []persistence.Waiver) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(waivers))
	ids := make([]uuid.UUID, 0, len(waivers))
	for _, w := range waivers {
		if _, ok := seen[w.MemberID]; ok {
			continue
		}
		seen[w.MemberID] = struct{}{}
		ids = append(ids, w.MemberID)
	}
	return ids
}
