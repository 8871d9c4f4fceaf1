package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// MemoryDesignFiles maps design files to their owning project.
type MemoryDesignFiles struct {
	mu     sync.RWMutex
	owners map[string]string
}

// NewMemoryDesignFiles constructs an empty directory.
func NewMemoryDesignFiles() *MemoryDesignFiles {
	return &MemoryDesignFiles{owners: make(map[string]string)}
}

// Register records that designFileID belongs to projectID.
func (m *MemoryDesignFiles) Register(designFileID, projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[designFileID] = projectID
}

// ProjectForDesignFile implements export.ProjectResolver.
func (m *MemoryDesignFiles) ProjectForDesignFile(_ context.Context, designFileID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	projectID, ok := m.owners[designFileID]
	if !ok {
		return "", fmt.Errorf("design file %s: %w", designFileID, model.ErrNotFound)
	}
	return projectID, nil
}
