package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
)

type storeFunc func(ctx context.Context, clientID uuid.UUID, filter persistence.GiftCertificateFilter, limit, offset int) (persistence.Page[persistence.GiftCertificate], error)

func (f storeFunc) List(ctx context.Context, clientID uuid.UUID, filter persistence.GiftCertificateFilter, limit, offset int) (persistence.Page[persistence.GiftCertificate], error) {
	return f(ctx, clientID, filter, limit, offset)
}

func TestList(t *testing.T) {
	t.Parallel()

	clientID := uuid.New()
	status, search := "active", " GIFT-10 "
	store := storeFunc(func(_ context.Context, gotClient uuid.UUID, filter persistence.GiftCertificateFilter, limit, offset int) (persistence.Page[persistence.GiftCertificate], error) {
		require.Equal(t, clientID, gotClient)
		require.Equal(t, "ACTIVE", *filter.Status)
		require.Equal(t, "GIFT-10", filter.Search)
		require.Equal(t, 50, limit)
		require.Zero(t, offset)
		return persistence.Page[persistence.GiftCertificate]{
			Items: []persistence.GiftCertificate{{CertificateID: uuid.New(), Code: "GIFT-10", AmountCents: 5000, BalanceCents: 2500, Status: "ACTIVE"}},
			Total: 1,
		}, nil
	})

	list, err := New(store).List(context.Background(), clientID, Query{Status: &status, Search: &search}, httpapi.Page{Limit: 50})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	require.Equal(t, int64(2500), list.Items[0].BalanceCents)
}

func TestListRejectsLongSearch(t *testing.T) {
	t.Parallel()

	search := strings.Repeat("g", 201)
	_, err := New(storeFunc(nil)).List(context.Background(), uuid.New(), Query{Search: &search}, httpapi.Page{Limit: 50})
	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
