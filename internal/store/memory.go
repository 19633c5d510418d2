package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumenlearn/semcache/internal/domain"
)

// MemoryStore implements domain.ArtifactStore in memory. It preserves
// insertion order for scans and is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts []*domain.Artifact
	byID      map[string]*domain.Artifact
}

// NewMemoryStore creates an empty in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*domain.Artifact),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, artifact *domain.Artifact) error {
	if artifact == nil {
		return fmt.Errorf("artifact cannot be nil")
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[artifact.ID]; exists {
		return fmt.Errorf("artifact %s already exists", artifact.ID)
	}

	stored := *artifact
	s.artifacts = append(s.artifacts, &stored)
	s.byID[stored.ID] = &stored
	return nil
}

// FindByHash returns the earliest artifact with the given content hash.
func (s *MemoryStore) FindByHash(ctx context.Context, hash string) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, artifact := range s.artifacts {
		if artifact.ContentHash == hash {
			copied := *artifact
			return &copied, nil
		}
	}
	return nil, domain.ErrArtifactNotFound
}

func (s *MemoryStore) FindByIDs(ctx context.Context, ids []string) ([]*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var result []*domain.Artifact
	for _, artifact := range s.artifacts {
		if wanted[artifact.ID] {
			copied := *artifact
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *MemoryStore) ScanAll(ctx context.Context, limit int) ([]*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.artifacts)
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]*domain.Artifact, 0, n)
	for _, artifact := range s.artifacts[:n] {
		copied := *artifact
		result = append(result, &copied)
	}
	return result, nil
}

// Size returns the number of stored artifacts.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}
