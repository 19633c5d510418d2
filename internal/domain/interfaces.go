package domain

import (
	"context"

	"github.com/lumenlearn/semcache/internal/safety"
)

// Generator produces educational content for a request. Errors propagate to
// the caller: with no content to serve there is no fallback.
type Generator interface {
	// Generate produces content for the request.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)

	// Name returns the generator identifier.
	Name() string
}

// EmbeddingGenerator creates L2-normalized vector embeddings from text.
type EmbeddingGenerator interface {
	// Generate creates a unit-length vector embedding from text.
	Generate(ctx context.Context, text string) ([]float64, error)

	// GenerateBatch embeds several texts in one call.
	GenerateBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Name returns the generator identifier.
	Name() string

	// Dimension returns the vector dimension.
	Dimension() int
}

// VectorIndex is an approximate-nearest-neighbor structure over stored
// embeddings. Implementations must support incremental Add and return empty
// (not an error) when searching an empty index.
type VectorIndex interface {
	// Add appends vectors with parallel id labels.
	Add(ctx context.Context, ids []string, vectors [][]float64) error

	// Search returns up to k nearest neighbors by cosine similarity,
	// descending by score.
	Search(ctx context.Context, query []float64, k int) ([]*VectorMatch, error)

	// Size returns the number of indexed vectors.
	Size() int

	// Backend returns the backend identifier for diagnostics.
	Backend() string

	// Save persists the index to path.
	Save(path string) error

	// Load restores the index from path, replacing current contents.
	Load(path string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactStore is the persistent, append-only collection of cached
// artifacts. Single-document inserts are atomic; no multi-document
// transactions are assumed.
type ArtifactStore interface {
	// Insert appends a new artifact.
	Insert(ctx context.Context, artifact *Artifact) error

	// FindByHash returns the artifact with the given content hash, or
	// ErrArtifactNotFound.
	FindByHash(ctx context.Context, hash string) (*Artifact, error)

	// FindByIDs returns artifacts for the given ids, skipping unknown ids.
	FindByIDs(ctx context.Context, ids []string) ([]*Artifact, error)

	// ScanAll returns up to limit artifacts in creation order. Bounded-use
	// fallback for when the vector index is unavailable.
	ScanAll(ctx context.Context, limit int) ([]*Artifact, error)
}

// ContentSafety moderates requests and redacts PII from content on every
// return path.
type ContentSafety interface {
	// Check moderates text for educational use.
	Check(text string) safety.Verdict

	// DetectPII returns detected PII grouped by type.
	DetectPII(text string) map[string][]string

	// Redact masks detected PII in text.
	Redact(text string) string
}
