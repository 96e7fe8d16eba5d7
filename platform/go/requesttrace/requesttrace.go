package requesttrace

import (
	"context"
	"errors"

	"github.com/google/uuid"

	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
)

type contextKey string

const (
	ctxAuditInfo contextKey = "PALMYRA_REQUEST_TRACE"
)

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindStaff     ActorKind = "staff"
	ActorKindMember    ActorKind = "member"
	ActorKindAnonymous ActorKind = "anonymous"
)

// AuditInfo captures request-scoped metadata stamped onto audit log entries.
// ActorID is the staff auth uid or the member id; nil for anonymous actors.
// ClientID is uuid.Nil until the tenant middleware has run.
type AuditInfo struct {
	ActorKind ActorKind
	ActorID   *string
	ClientID  uuid.UUID
	RequestID string
}

// IntoContext stores the AuditInfo in the provided context.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxAuditInfo, audit)
}

// FromContext extracts the AuditInfo from context, returning false when not present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	audit, ok := ctx.Value(ctxAuditInfo).(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous returns the AuditInfo stored on the context, or an anonymous record when absent.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}

// FromStaff builds an AuditInfo for a staff session.
func FromStaff(creds *platformauth.UserCredentials, requestID string) (AuditInfo, error) {
	if creds == nil {
		return AuditInfo{}, errors.New("credentials are required to build audit info")
	}
	if creds.Id == "" {
		return AuditInfo{}, errors.New("user id is required to build audit info")
	}

	id := creds.Id
	return AuditInfo{ActorKind: ActorKindStaff, ActorID: &id, RequestID: requestID}, nil
}

// FromMember builds an AuditInfo for a portal session; the member is bound to its client.
func FromMember(member portal.MemberAuth, requestID string) AuditInfo {
	id := member.MemberID.String()
	return AuditInfo{
		ActorKind: ActorKindMember,
		ActorID:   &id,
		ClientID:  member.ClientID,
		RequestID: requestID,
	}
}

// Anonymous builds an AuditInfo for unauthenticated requests such as public enrollment.
func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// Actor renders the actor for storage: "<kind>:<id>" or just the kind.
func (a AuditInfo) Actor() string {
	if a.ActorID == nil || *a.ActorID == "" {
		return string(a.ActorKind)
	}
	return string(a.ActorKind) + ":" + *a.ActorID
}
