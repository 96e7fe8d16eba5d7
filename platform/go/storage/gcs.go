package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSStore reads and writes tenant documents in one Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCSStore(client *gcs.Client, bucket, prefix string) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("storage client is required")
	}
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	return &GCSStore{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCSStore) Open(ctx context.Context, clientID uuid.UUID, key string) (Document, error) {
	loc, err := ResolveObjectLocation(s.bucket, s.prefix, clientID, key)
	if err != nil {
		return Document{}, err
	}

	reader, err := s.client.Bucket(loc.Bucket).Object(loc.FullPath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("open object %s: %w", loc.FullPath, err)
	}

	return Document{
		Body:        reader,
		ContentType: reader.Attrs.ContentType,
		Size:        reader.Attrs.Size,
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, clientID uuid.UUID, key, contentType string, body io.Reader) error {
	loc, err := ResolveObjectLocation(s.bucket, s.prefix, clientID, key)
	if err != nil {
		return err
	}

	w := s.client.Bucket(loc.Bucket).Object(loc.FullPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", loc.FullPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object %s: %w", loc.FullPath, err)
	}
	return nil
}

var _ DocumentStore = (*GCSStore)(nil)
