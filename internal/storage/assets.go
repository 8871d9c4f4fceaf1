package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// MemoryAssetStore is the in-memory exported_assets table.
type MemoryAssetStore struct {
	mu     sync.RWMutex
	assets map[string]*model.ExportedAsset
}

// NewMemoryAssetStore constructs a MemoryAssetStore.
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{
		assets: make(map[string]*model.ExportedAsset),
	}
}

// Insert assigns an id and creation time, like the database defaults do, and
// returns the stored row.
func (m *MemoryAssetStore) Insert(_ context.Context, asset model.ExportedAsset) (*model.ExportedAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if _, exists := m.assets[asset.ID]; exists {
		return nil, fmt.Errorf("asset %s already exists", asset.ID)
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	m.assets[asset.ID] = &asset
	out := asset
	return &out, nil
}

// Get returns a copy of one row.
func (m *MemoryAssetStore) Get(_ context.Context, id string) (*model.ExportedAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, model.ErrNotFound)
	}
	out := *rec
	return &out, nil
}

// ListByDesignFile returns the rows of one design file, newest first.
func (m *MemoryAssetStore) ListByDesignFile(_ context.Context, designFileID string) ([]model.ExportedAsset, error) {
	return m.list(func(a *model.ExportedAsset) bool { return a.DesignFileID == designFileID }), nil
}

// ListByProject returns the rows of one project, newest first.
func (m *MemoryAssetStore) ListByProject(_ context.Context, projectID string) ([]model.ExportedAsset, error) {
	return m.list(func(a *model.ExportedAsset) bool { return a.ProjectID == projectID }), nil
}

// Delete removes one row.
func (m *MemoryAssetStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[id]; !ok {
		return fmt.Errorf("asset %s: %w", id, model.ErrNotFound)
	}
	delete(m.assets, id)
	return nil
}

func (m *MemoryAssetStore) list(match func(*model.ExportedAsset) bool) []model.ExportedAsset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ExportedAsset, 0)
	for _, a := range m.assets {
		if match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
