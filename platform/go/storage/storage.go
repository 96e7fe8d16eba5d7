package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrDocumentNotFound is returned when no object exists under the resolved location.
var ErrDocumentNotFound = errors.New("document not found")

// Document is an open blob. Callers must close Body.
type Document struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// DocumentStore keeps tenant documents such as signed waiver PDFs.
type DocumentStore interface {
	Open(ctx context.Context, clientID uuid.UUID, key string) (Document, error)
	Put(ctx context.Context, clientID uuid.UUID, key, contentType string, body io.Reader) error
}

// ObjectLocation describes where a blob lives.
type ObjectLocation struct {
	Bucket   string
	FullPath string
}

// ResolveObjectLocation joins prefix, client id and the tenant-relative key into a bucket/path pair.
// The client id segment is always present, so a key can never address another tenant's objects.
//   - prefix separates environments (e.g. "dev"); it may be empty.
//   - key is relative to the tenant, e.g. "waivers/<waiver_id>.pdf".
func ResolveObjectLocation(bucket, prefix string, clientID uuid.UUID, key string) (ObjectLocation, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return ObjectLocation{}, errors.New("bucket is required")
	}
	if clientID == uuid.Nil {
		return ObjectLocation{}, errors.New("client id is required")
	}

	rel, err := cleanKey(key)
	if err != nil {
		return ObjectLocation{}, err
	}

	parts := []string{clientID.String(), rel}
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		parts = append([]string{p}, parts...)
	}
	return ObjectLocation{Bucket: bucket, FullPath: strings.Join(parts, "/")}, nil
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("document key is required")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", fmt.Errorf("invalid document key %q", key)
		}
	}
	return path.Clean(key), nil
}
