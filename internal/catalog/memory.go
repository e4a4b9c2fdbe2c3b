package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/kosarica/offer-service/internal/ranking"
)

// MemorySource serves a catalog held in memory.
type MemorySource struct {
	mu       sync.RWMutex
	snapshot ranking.CatalogSnapshot
}

// NewMemorySource creates a memory source holding a copy of snapshot.
func NewMemorySource(snapshot *ranking.CatalogSnapshot) *MemorySource {
	s := &MemorySource{}
	if snapshot != nil {
		s.Set(snapshot)
	}
	return s
}

// Set replaces the catalog.
func (s *MemorySource) Set(snapshot *ranking.CatalogSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = cloneSnapshot(snapshot)
}

// Load implements ranking.CatalogSource and returns a copy callers may keep.
func (s *MemorySource) Load(ctx context.Context) (*ranking.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := cloneSnapshot(&s.snapshot)
	return &snap, nil
}

func cloneSnapshot(s *ranking.CatalogSnapshot) ranking.CatalogSnapshot {
	return ranking.CatalogSnapshot{
		Products:  slices.Clone(s.Products),
		Inventory: slices.Clone(s.Inventory),
		Reviews:   slices.Clone(s.Reviews),
	}
}
