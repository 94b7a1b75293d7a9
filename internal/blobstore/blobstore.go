// Package blobstore stores uploaded files in named containers.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store uploads data under container/name, overwriting any existing blob, and
// returns the public URL of the blob.
type Store interface {
	Upload(ctx context.Context, container, name string, data []byte, contentType string) (string, error)
}

var ErrInvalidName = errors.New("blobstore: invalid container or blob name")

// FileStore keeps blobs on the local filesystem under root/container/name.
type FileStore struct {
	root    string
	baseURL string
}

// NewFileStore serves URLs of the form baseURL/files/container/name.
func NewFileStore(root, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FileStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FileStore) Upload(ctx context.Context, container, name string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.Path(container, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return BlobURL(s.baseURL, container, name), nil
}

// Path resolves the on-disk location of a blob, rejecting names that would escape root.
func (s *FileStore) Path(container, name string) (string, error) {
	if !validSegment(container) || !validSegment(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, container, name), nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && filepath.Base(s) == s && !strings.ContainsAny(s, `/\`)
}

// BlobURL builds the public URL served by the functions tier.
func BlobURL(baseURL, container, name string) string {
	return strings.TrimRight(baseURL, "/") + "/files/" + url.PathEscape(container) + "/" + url.PathEscape(name)
}

type Blob struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	blobs   map[string]Blob
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, blobs: make(map[string]Blob)}
}

func (s *MemoryStore) Upload(_ context.Context, container, name string, data []byte, contentType string) (string, error) {
	if !validSegment(container) || !validSegment(name) {
		return "", ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[container+"/"+name] = Blob{Data: append([]byte(nil), data...), ContentType: contentType}
	return BlobURL(s.baseURL, container, name), nil
}

func (s *MemoryStore) Get(container, name string) (Blob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[container+"/"+name]
	return b, ok
}
