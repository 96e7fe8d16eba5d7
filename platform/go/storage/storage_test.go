package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestResolveObjectLocation(t *testing.T) {
	clientID := uuid.New()
	waiverID := uuid.New()

	loc, err := ResolveObjectLocation("palmyra-gym-docs", "dev/", clientID, "waivers/"+waiverID.String()+".pdf")
	require.NoError(t, err)
	require.Equal(t, "palmyra-gym-docs", loc.Bucket)
	require.Equal(t, "dev/"+clientID.String()+"/waivers/"+waiverID.String()+".pdf", loc.FullPath)

	loc, err = ResolveObjectLocation("bucket", "", clientID, "/signatures/a.png")
	require.NoError(t, err)
	require.Equal(t, clientID.String()+"/signatures/a.png", loc.FullPath)
}

func TestResolveObjectLocation_validates(t *testing.T) {
	clientID := uuid.New()

	_, err := ResolveObjectLocation("", "dev", clientID, "file")
	require.Error(t, err)

	_, err = ResolveObjectLocation("bucket", "dev", uuid.Nil, "file")
	require.Error(t, err)

	_, err = ResolveObjectLocation("bucket", "dev", clientID, " ")
	require.Error(t, err)

	_, err = ResolveObjectLocation("bucket", "dev", clientID, "../"+uuid.NewString()+"/waivers/x.pdf")
	require.Error(t, err)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	gymA := uuid.New()
	gymB := uuid.New()

	require.NoError(t, store.Put(ctx, gymA, "waivers/w1.pdf", "application/pdf", strings.NewReader("%PDF-1.4 signed")))

	doc, err := store.Open(ctx, gymA, "waivers/w1.pdf")
	require.NoError(t, err)
	defer doc.Body.Close()

	body, err := io.ReadAll(doc.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 signed", string(body))
	require.Equal(t, int64(len(body)), doc.Size)
	require.Equal(t, "application/pdf", doc.ContentType)

	_, err = store.Open(ctx, gymB, "waivers/w1.pdf")
	require.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = store.Open(ctx, gymA, "waivers/missing.pdf")
	require.ErrorIs(t, err, ErrDocumentNotFound)
}
