package domain

import "time"

// GenerationRequest describes one content-generation ask.
type GenerationRequest struct {
	Topic              string   `json:"topic"`
	Difficulty         string   `json:"difficulty,omitempty"`
	Subject            string   `json:"subject,omitempty"`
	ContentType        string   `json:"contentType,omitempty"`
	LearningObjectives []string `json:"learningObjectives,omitempty"`
}

// GenerationResult is the Generator's output: the text payload plus optional
// metadata. Metadata always exists (possibly empty) so callers never branch
// on response shape.
type GenerationResult struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Dedup methods recorded on reused content.
const (
	DedupMethodHash    = "hash"
	DedupMethodContent = "content"
)

// LookupResult is what callers of the cache orchestrator receive.
type LookupResult struct {
	Content     string  `json:"content"`
	ArtifactID  string  `json:"artifact_id,omitempty"`
	Cached      bool    `json:"cached"`
	Similarity  float64 `json:"similarity,omitempty"`
	DedupMethod string  `json:"dedup_method,omitempty"`
}

// Artifact is a cached generation result. Artifacts are append-only: created
// exactly once per committed generation, never updated, never deleted.
type Artifact struct {
	ID           string    `json:"id"`
	RequestBasis string    `json:"request_basis"`
	Content      string    `json:"content"`
	ContentHash  string    `json:"content_hash"`
	EmbeddingRef string    `json:"embedding_ref,omitempty"` // index key; empty when the artifact was not slated for indexing
	CreatedAt    time.Time `json:"created_at"`
}

// SimilarityCandidate is the per-candidate scoring record computed during one
// cache lookup. Never persisted.
type SimilarityCandidate struct {
	ArtifactID   string
	VectorScore  float64
	HasVector    bool
	LexicalScore float64
	JaccardScore float64
	BlendedScore float64
}

// VectorMatch is a single nearest-neighbor hit from a vector index.
type VectorMatch struct {
	ID    string
	Score float64
}

// IndexStatus reports vector index diagnostics.
type IndexStatus struct {
	Available bool   `json:"available"`
	Backend   string `json:"backend,omitempty"`
	Size      int    `json:"size"`
}
