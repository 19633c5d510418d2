// Package index provides vector index backends for the content cache and a
// factory for selecting one. The in-memory brute-force backend is the
// universal fallback: exact cosine top-k over L2-normalized vectors, which
// at cache scale favors correctness over speed.
package index

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/lumenlearn/semcache/internal/domain"
)

// BackendMemory identifies the brute-force in-memory backend.
const BackendMemory = "memory"

// MemoryIndex is an in-memory vector index using brute-force inner product
// search. Vectors are normalized on insert, so inner product equals cosine
// similarity. Concurrent Add and Search are safe; a Search racing an Add may
// miss the just-added vector, which the cache tolerates.
type MemoryIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float64
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		ids:        make([]string, 0),
		vectors:    make([][]float64, 0),
	}, nil
}

// Backend returns the backend identifier.
func (m *MemoryIndex) Backend() string {
	return BackendMemory
}

// Add appends normalized copies of the vectors with parallel id labels.
func (m *MemoryIndex) Add(_ context.Context, ids []string, vectors [][]float64) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d",
				len(vectors[i]), m.dimensions)
		}
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, normalized(vectors[i]))
	}
	return nil
}

// Search returns the top-k neighbors by cosine similarity, descending.
// Empty result when the index is empty.
func (m *MemoryIndex) Search(_ context.Context, query []float64, k int) ([]*domain.VectorMatch, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d",
			len(query), m.dimensions)
	}

	q := normalized(query)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.ids) == 0 {
		return nil, nil
	}

	matches := make([]*domain.VectorMatch, len(m.ids))
	for i, vec := range m.vectors {
		var dot float64
		for j := 0; j < m.dimensions; j++ {
			dot += q[j] * vec[j]
		}
		matches[i] = &domain.VectorMatch{ID: m.ids[i], Score: dot}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Size returns the number of indexed vectors.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Save persists the index to path. Directory is created if needed.
// Format: dimensions (4), n (4), then per vector: idLen (4), id bytes,
// vector (dimensions*8 bytes, little-endian float64).
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range m.ids {
		idBytes := []byte(id)
		if err := binary.Write(f, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := f.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, m.vectors[i]); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// Dimensions must match. A missing file leaves the index unchanged.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d",
			dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}

	ids := make([]string, 0, n)
	vectors := make([][]float64, 0, n)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("read id len: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(f, idBytes); err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		vec := make([]float64, m.dimensions)
		if err := binary.Read(f, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		ids = append(ids, string(idBytes))
		vectors = append(vectors, vec)
	}

	m.mu.Lock()
	m.ids = ids
	m.vectors = vectors
	m.mu.Unlock()
	return nil
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

// normalized returns an L2-normalized copy of vec. Zero vectors are copied
// as-is.
func normalized(vec []float64) []float64 {
	out := make([]float64, len(vec))
	copy(out, vec)

	var sum float64
	for _, v := range out {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}
	for i := range out {
		out[i] /= norm
	}
	return out
}
