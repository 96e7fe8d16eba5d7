package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
)

func TestParsePageDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/audit-log", nil)

	page, err := ParsePage(req)
	require.NoError(t, err)
	require.Equal(t, Page{Limit: 50, Offset: 0}, page)
}

func TestParsePageExplicit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/audit-log?limit=10&offset=30", nil)

	page, err := ParsePage(req)
	require.NoError(t, err)
	require.Equal(t, Page{Limit: 10, Offset: 30}, page)
}

func TestParsePageRejectsInvalid(t *testing.T) {
	for _, query := range []string{"limit=abc", "limit=0", "limit=1000", "offset=-1", "offset=x"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/audit-log?"+query, nil)
			_, err := ParsePage(req)

			var validationErr *apperr.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/audit-log?entityType=%20MEMBER%20&search=", nil)

	entityType := QueryString(req, "entityType")
	require.NotNil(t, entityType)
	require.Equal(t, "MEMBER", *entityType)
	require.Nil(t, QueryString(req, "search"))
	require.Nil(t, QueryString(req, "missing"))
}

func TestQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/programs?active=true", nil)
	active, err := QueryBool(req, "active")
	require.NoError(t, err)
	require.NotNil(t, active)
	require.True(t, *active)

	req = httptest.NewRequest(http.MethodGet, "/programs?active=maybe", nil)
	_, err = QueryBool(req, "active")
	require.Error(t, err)
}

func TestNewListNeverEncodesNull(t *testing.T) {
	list := NewList[string](nil, 0, Page{Limit: DefaultLimit})
	raw, err := json.Marshal(list)
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[],"total":0,"limit":50,"offset":0}`, string(raw))
}
