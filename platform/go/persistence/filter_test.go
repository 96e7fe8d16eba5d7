package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func renderFilter(t *testing.T, f Filter) (string, []any) {
	t.Helper()
	sql, args, err := psql.Select("*").From("t").Where(f.Sqlizer()).ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestFilterAlwaysScopesByClient(t *testing.T) {
	clientID := uuid.New()

	sql, args := renderFilter(t, ForClient(clientID))
	require.Equal(t, "SELECT * FROM t WHERE (client_id = $1)", sql)
	// uuid.UUID is a driver.Valuer, so squirrel binds its string form.
	require.Equal(t, []any{clientID.String()}, args)

	sql, _ = renderFilter(t, ForClient(uuid.Nil).Eq("status", "NEW"))
	require.Contains(t, sql, "1 = 0")
}

func TestFilterCombinators(t *testing.T) {
	clientID := uuid.New()
	entityType := "MEMBER"
	var noStatus *string
	from, to := 10, 20

	f := EqIfSet(ForClient(clientID), "entity_type", &entityType)
	f = EqIfSet(f, "status", noStatus)
	f = f.Contains("summary", "50%_off")
	f = Range(f, "amount", &from, &to)

	sql, args := renderFilter(t, f)
	require.Equal(t,
		"SELECT * FROM t WHERE (client_id = $1 AND entity_type = $2 AND summary LIKE $3 AND amount >= $4 AND amount <= $5)",
		sql)
	require.Equal(t, []any{clientID.String(), "MEMBER", `%50\%\_off%`, 10, 20}, args)
}

func TestFilterIsImmutable(t *testing.T) {
	base := ForClient(uuid.New())
	_ = base.Eq("status", "A")
	withStatus := base.Eq("status", "B")

	sql, _ := renderFilter(t, base)
	require.NotContains(t, sql, "status")

	sql, args := renderFilter(t, withStatus)
	require.Contains(t, sql, "status = $2")
	require.Equal(t, "B", args[1])
}

func TestFilterInAndContainsAny(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	sql, args := renderFilter(t, In(ForClient(uuid.New()), "member_id", ids).ContainsAny([]string{"code", "recipient_email"}, "gym"))
	require.Equal(t, "SELECT * FROM t WHERE (client_id = $1 AND member_id IN ($2,$3) AND (code LIKE $4 OR recipient_email LIKE $5))", sql)
	require.Len(t, args, 5)

	sql, _ = renderFilter(t, In(ForClient(uuid.New()), "member_id", []uuid.UUID{}))
	require.Contains(t, sql, "1 = 0")

	sql, _ = renderFilter(t, ForClient(uuid.New()).Contains("summary", "").ContainsAny([]string{"code"}, ""))
	require.NotContains(t, sql, "LIKE")
}
