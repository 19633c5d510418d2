package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/semcache/internal/domain"
)

func newTestArtifact(id, basis, content, hash string, at time.Time) *domain.Artifact {
	return &domain.Artifact{
		ID:           id,
		RequestBasis: basis,
		Content:      content,
		ContentHash:  hash,
		CreatedAt:    at,
	}
}

func runStoreTests(t *testing.T, s domain.ArtifactStore) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("find by hash on empty store", func(t *testing.T) {
		_, err := s.FindByHash(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	t.Run("insert and find by hash", func(t *testing.T) {
		a := newTestArtifact("a1", "photosynthesis basics", "content one", "hash-1", base)
		require.NoError(t, s.Insert(ctx, a))

		found, err := s.FindByHash(ctx, "hash-1")
		require.NoError(t, err)
		require.Equal(t, "a1", found.ID)
		require.Equal(t, "content one", found.Content)
	})

	t.Run("earliest artifact wins on hash collision", func(t *testing.T) {
		a := newTestArtifact("a2", "cells", "content two", "hash-dup", base.Add(time.Minute))
		b := newTestArtifact("a3", "cells again", "content three", "hash-dup", base.Add(2*time.Minute))
		require.NoError(t, s.Insert(ctx, a))
		require.NoError(t, s.Insert(ctx, b))

		found, err := s.FindByHash(ctx, "hash-dup")
		require.NoError(t, err)
		require.Equal(t, "a2", found.ID)
	})

	t.Run("find by ids skips unknown", func(t *testing.T) {
		found, err := s.FindByIDs(ctx, []string{"a1", "a3", "nope"})
		require.NoError(t, err)
		require.Len(t, found, 2)
	})

	t.Run("find by ids with empty slice", func(t *testing.T) {
		found, err := s.FindByIDs(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, found)
	})

	t.Run("scan all in creation order", func(t *testing.T) {
		all, err := s.ScanAll(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, "a1", all[0].ID)
		require.Equal(t, "a2", all[1].ID)
		require.Equal(t, "a3", all[2].ID)
	})

	t.Run("scan respects limit", func(t *testing.T) {
		all, err := s.ScanAll(ctx, 2)
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, "a1", all[0].ID)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "artifacts.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	runStoreTests(t, s)
}

func TestMemoryStore_RejectsDuplicateID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := newTestArtifact("dup", "basis", "content", "h1", time.Now().UTC())
	require.NoError(t, s.Insert(ctx, a))

	b := newTestArtifact("dup", "other basis", "other content", "h2", time.Now().UTC())
	require.Error(t, s.Insert(ctx, b))
}

func TestMemoryStore_CopiesOnRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, newTestArtifact("x", "b", "c", "h", time.Now().UTC())))

	found, err := s.FindByHash(ctx, "h")
	require.NoError(t, err)
	found.Content = "mutated"

	again, err := s.FindByHash(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, "c", again.Content)
}

func TestSQLiteStore_SetsCreatedAt(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "artifacts.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	a := &domain.Artifact{ID: "t1", RequestBasis: "b", Content: "c", ContentHash: "h"}
	require.NoError(t, s.Insert(context.Background(), a))
	require.False(t, a.CreatedAt.IsZero())
}
