package index_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/semcache/internal/index"
)

func TestMemoryIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx, err := index.NewMemoryIndex(3)
	require.NoError(t, err)

	err = idx.Add(ctx,
		[]string{"a", "b", "c"},
		[][]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0.9, 0.1, 0},
		})
	require.NoError(t, err)
	require.Equal(t, 3, idx.Size())

	matches, err := idx.Search(ctx, []float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "a", matches[0].ID)
	require.InDelta(t, 1.0, matches[0].Score, 1e-9)
	require.Equal(t, "c", matches[1].ID)
	require.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryIndex_NormalizesOnAdd(t *testing.T) {
	ctx := context.Background()
	idx, err := index.NewMemoryIndex(2)
	require.NoError(t, err)

	// Unnormalized input still yields cosine scores in [0,1].
	require.NoError(t, idx.Add(ctx, []string{"big"}, [][]float64{{10, 0}}))

	matches, err := idx.Search(ctx, []float64{2, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestMemoryIndex_EmptySearch(t *testing.T) {
	ctx := context.Background()
	idx, err := index.NewMemoryIndex(2)
	require.NoError(t, err)

	matches, err := idx.Search(ctx, []float64{1, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx, err := index.NewMemoryIndex(2)
	require.NoError(t, err)

	err = idx.Add(ctx, []string{"a"}, [][]float64{{1, 0, 0}})
	require.Error(t, err)

	_, err = idx.Search(ctx, []float64{1}, 1)
	require.Error(t, err)
}

func TestMemoryIndex_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.idx")

	original, err := index.NewMemoryIndex(3)
	require.NoError(t, err)

	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.577, 0.577, 0.577},
	}
	ids := []string{"v1", "v2", "v3", "v4"}
	require.NoError(t, original.Add(ctx, ids, vectors))
	require.NoError(t, original.Save(path))

	restored, err := index.NewMemoryIndex(3)
	require.NoError(t, err)
	require.NoError(t, restored.Load(path))
	require.Equal(t, original.Size(), restored.Size())

	// Every original vector finds itself as top-1 with score ~1.0.
	for i, vec := range vectors {
		matches, searchErr := restored.Search(ctx, vec, 1)
		require.NoError(t, searchErr)
		require.Len(t, matches, 1)
		require.Equal(t, ids[i], matches[0].ID)
		require.InDelta(t, 1.0, matches[0].Score, 1e-9)
	}
}

func TestMemoryIndex_LoadMissingFileIsNoop(t *testing.T) {
	idx, err := index.NewMemoryIndex(2)
	require.NoError(t, err)

	require.NoError(t, idx.Load(filepath.Join(t.TempDir(), "absent.idx")))
	require.Equal(t, 0, idx.Size())
}

func TestMemoryIndex_LoadDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.idx")

	threeDim, err := index.NewMemoryIndex(3)
	require.NoError(t, err)
	require.NoError(t, threeDim.Add(ctx, []string{"a"}, [][]float64{{1, 0, 0}}))
	require.NoError(t, threeDim.Save(path))

	twoDim, err := index.NewMemoryIndex(2)
	require.NoError(t, err)
	require.Error(t, twoDim.Load(path))
}

func TestNew_DefaultsToMemory(t *testing.T) {
	idx, err := index.New("", 4, nil, "cache")
	require.NoError(t, err)
	require.Equal(t, index.BackendMemory, idx.Backend())

	idx, err = index.New(index.BackendRedis, 4, nil, "cache")
	require.NoError(t, err)
	require.Equal(t, index.BackendMemory, idx.Backend())

	_, err = index.New("faiss", 4, nil, "cache")
	require.Error(t, err)
}
