package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// localBucket is the bucket name used when resolving paths under a LocalStore root.
const localBucket = "local"

// LocalStore keeps documents on disk under root/<client_id>/<key>. Used in development.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("local document directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(clientID uuid.UUID, key string) (string, error) {
	loc, err := ResolveObjectLocation(localBucket, "", clientID, key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(loc.FullPath)), nil
}

func (s *LocalStore) Open(_ context.Context, clientID uuid.UUID, key string) (Document, error) {
	p, err := s.path(clientID, key)
	if err != nil {
		return Document{}, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("open document: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return Document{}, fmt.Errorf("stat document: %w", err)
	}

	return Document{
		Body:        f,
		ContentType: mime.TypeByExtension(filepath.Ext(p)),
		Size:        info.Size(),
	}, nil
}

func (s *LocalStore) Put(_ context.Context, clientID uuid.UUID, key, _ string, body io.Reader) error {
	p, err := s.path(clientID, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write document: %w", err)
	}
	return f.Close()
}

var _ DocumentStore = (*LocalStore)(nil)
