// Package storage contains in-memory backends for exported objects, asset
// metadata and design-file ownership. cmd/server uses them when no external
// services are configured, and tests use them as fakes.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dharsanguruparan/designexport/internal/model"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryObjectStore keeps uploaded objects in a map guarded by an RWMutex:
// many concurrent readers, one writer.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object
}

// NewMemoryObjectStore constructs a store whose public URLs live under
// baseURL + "/objects/".
func NewMemoryObjectStore(baseURL string) *MemoryObjectStore {
	return &MemoryObjectStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]object),
	}
}

// Upload stores a copy of data under path, replacing any previous object.
func (m *MemoryObjectStore) Upload(_ context.Context, path string, data []byte, contentType string) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = object{data: buf, contentType: contentType}
	return nil
}

// PublicURL returns the URL the API serves path from.
func (m *MemoryObjectStore) PublicURL(path string) string {
	return m.baseURL + "/objects/" + path
}

// PathFromURL reverses PublicURL.
func (m *MemoryObjectStore) PathFromURL(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}
	path, ok := strings.CutPrefix(u.Path, "/objects/")
	if !ok || path == "" {
		return "", fmt.Errorf("file url %q is not served by this store", fileURL)
	}
	return path, nil
}

// Remove deletes the given paths. Missing paths are ignored, matching the
// behaviour of S3-compatible stores.
func (m *MemoryObjectStore) Remove(_ context.Context, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.objects, p)
	}
	return nil
}

// Get returns a copy of the object bytes and its content type.
func (m *MemoryObjectStore) Get(_ context.Context, path string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[path]
	if !ok {
		return nil, "", fmt.Errorf("object %s: %w", path, model.ErrNotFound)
	}
	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, obj.contentType, nil
}

// Exists reports whether path is stored.
func (m *MemoryObjectStore) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryObjectStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
