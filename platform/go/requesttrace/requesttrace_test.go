package requesttrace

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
)

func TestIntoContextAndFromContext(t *testing.T) {
	audit := AuditInfo{ActorKind: ActorKindStaff, ActorID: ptr("user-123"), RequestID: "req-abc"}

	ctx := IntoContext(context.Background(), audit)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, audit, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)
	require.Equal(t, ActorKindAnonymous, FromContextOrAnonymous(context.Background()).ActorKind)
}

func TestFromStaff(t *testing.T) {
	creds := &platformauth.UserCredentials{Id: "user-456", TenantID: ptr("acme")}

	audit, err := FromStaff(creds, "req-xyz")
	require.NoError(t, err)
	require.Equal(t, ActorKindStaff, audit.ActorKind)
	require.Equal(t, "user-456", *audit.ActorID)
	require.Equal(t, uuid.Nil, audit.ClientID)
	require.Equal(t, "staff:user-456", audit.Actor())

	_, err = FromStaff(&platformauth.UserCredentials{}, "req-1")
	require.Error(t, err)
	_, err = FromStaff(nil, "req-1")
	require.Error(t, err)
}

func TestFromMember(t *testing.T) {
	member := portal.MemberAuth{MemberID: uuid.New(), ClientID: uuid.New()}

	audit := FromMember(member, "req-m")
	require.Equal(t, ActorKindMember, audit.ActorKind)
	require.Equal(t, member.ClientID, audit.ClientID)
	require.Equal(t, "member:"+member.MemberID.String(), audit.Actor())
}

func TestAnonymous(t *testing.T) {
	require.Nil(t, Anonymous("req-anon").ActorID)
	require.Equal(t, "anonymous", Anonymous("req-anon").Actor())
}

func ptr[T any](v T) *T { return &v }
