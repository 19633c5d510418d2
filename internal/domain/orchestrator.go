package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/semcache/internal/observability"
	"github.com/lumenlearn/semcache/internal/safety"
	"github.com/lumenlearn/semcache/internal/text"
)

// CacheOrchestrator decides, per generation request, whether a stored
// artifact can be reused instead of invoking the generator, and dedups fresh
// content before committing it. It is stateless between invocations apart
// from the shared store and indexes, so a single instance serves concurrent
// requests.
type CacheOrchestrator struct {
	store        ArtifactStore
	basisIndex   VectorIndex
	contentIndex VectorIndex
	embedder     EmbeddingGenerator
	generator    Generator
	safety       ContentSafety
	policy       Policy
}

// NewCacheOrchestrator creates a cache orchestrator. basisIndex,
// contentIndex, and embedder may be nil; the orchestrator then runs in
// lexical-only mode.
func NewCacheOrchestrator(
	store ArtifactStore,
	basisIndex VectorIndex,
	contentIndex VectorIndex,
	embedder EmbeddingGenerator,
	generator Generator,
	contentSafety ContentSafety,
	policy Policy,
) *CacheOrchestrator {
	return &CacheOrchestrator{
		store:        store,
		basisIndex:   basisIndex,
		contentIndex: contentIndex,
		embedder:     embedder,
		generator:    generator,
		safety:       contentSafety,
		policy:       policy,
	}
}

// LookupOrGenerate is the sole entry point: it returns reused content when a
// stored artifact scores above the active threshold, and otherwise generates,
// dedups, and commits fresh content. Embedding or index failures degrade to
// lexical-only scoring; a generator failure fails the request.
func (o *CacheOrchestrator) LookupOrGenerate(
	ctx context.Context,
	req *GenerationRequest,
) (*LookupResult, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, errors.New("topic cannot be empty")
	}

	ctx = observability.WithTopic(ctx, req.Topic)
	logger := observability.FromContext(ctx)

	query := BuildQuery(req)
	if verdict := o.safety.Check(query); !verdict.Safe {
		logger.Warn("request rejected by content safety",
			observability.String("reason", verdict.Reason))
		return nil, &UnsafeRequestError{Reason: verdict.Reason}
	}
	if pii := o.safety.DetectPII(query); len(pii) > 0 {
		reason := safety.Describe(pii)
		logger.Warn("request rejected for PII",
			observability.String("reason", reason))
		return nil, &UnsafeRequestError{Reason: reason}
	}

	basis := BuildBasis(req)
	threshold := o.policy.RequestThreshold
	if text.MeaningfulTokens(req.Topic) < o.policy.MinMeaningfulTokens {
		threshold = o.policy.ShortTopicThreshold
	}

	candidates, vectorScores, vectorOK := o.requestCandidates(ctx, basis)
	if !vectorOK {
		// No independent vector signal: lexical-only scoring is
		// intentionally more permissive.
		threshold -= o.policy.ScanRelaxation
	}

	best, bestArtifact := o.scoreCandidates(basis, candidates, vectorScores)
	if best != nil && best.BlendedScore > threshold {
		logger.Info("request-level cache hit",
			observability.String("artifact_id", best.ArtifactID),
			observability.Float64("score", best.BlendedScore),
			observability.Float64("threshold", threshold))
		return &LookupResult{
			Content:    o.safety.Redact(bestArtifact.Content),
			ArtifactID: bestArtifact.ID,
			Cached:     true,
			Similarity: best.BlendedScore,
		}, nil
	}

	logger.Info("cache miss, invoking generator",
		observability.Int("candidates", len(candidates)),
		observability.Float64("threshold", threshold))

	generated, err := o.generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return o.dedupAndCommit(ctx, req, basis, generated)
}

// requestCandidates retrieves candidate artifacts for the request basis:
// nearest neighbors when embedding and index are up, otherwise a bounded
// store scan. vectorOK reports whether vector scores accompany the
// candidates.
func (o *CacheOrchestrator) requestCandidates(
	ctx context.Context,
	basis string,
) ([]*Artifact, map[string]float64, bool) {
	logger := observability.FromContext(ctx)

	if o.basisIndex != nil && o.embedder != nil {
		vec, err := o.embedder.Generate(ctx, basis)
		if err != nil {
			logger.Warn("embedding failed, degrading to lexical scoring",
				observability.Error(err))
		} else {
			matches, searchErr := o.basisIndex.Search(ctx, vec, o.policy.CandidateK)
			if searchErr != nil {
				logger.Warn("vector search failed, degrading to lexical scoring",
					observability.Error(searchErr))
			} else {
				ids := make([]string, 0, len(matches))
				scores := make(map[string]float64, len(matches))
				for _, m := range matches {
					ids = append(ids, m.ID)
					scores[m.ID] = m.Score
				}
				artifacts, findErr := o.store.FindByIDs(ctx, ids)
				if findErr != nil {
					logger.Warn("candidate fetch failed",
						observability.Error(findErr))
					return nil, nil, true
				}
				return artifacts, scores, true
			}
		}
	}

	artifacts, err := o.store.ScanAll(ctx, o.policy.ScanLimit)
	if err != nil {
		logger.Warn("store scan failed, no candidates",
			observability.Error(err))
		return nil, nil, false
	}
	return artifacts, nil, false
}

// scoreCandidates blends lexical and vector signals per candidate and tracks
// the single best. An exact basis match (after normalization) scores 1.0
// without blending.
func (o *CacheOrchestrator) scoreCandidates(
	basis string,
	candidates []*Artifact,
	vectorScores map[string]float64,
) (*SimilarityCandidate, *Artifact) {
	normBasis := text.Normalize(basis)

	var best *SimilarityCandidate
	var bestArtifact *Artifact

	for _, artifact := range candidates {
		cand := &SimilarityCandidate{ArtifactID: artifact.ID}

		if text.Normalize(artifact.RequestBasis) == normBasis {
			cand.BlendedScore = 1.0
		} else {
			cand.LexicalScore = text.Similarity(basis, artifact.RequestBasis)
			cand.JaccardScore = text.TokenJaccard(basis, artifact.RequestBasis)
			if score, ok := vectorScores[artifact.ID]; ok {
				cand.VectorScore = score
				cand.HasVector = true
				cand.BlendedScore = o.policy.TextWeight*cand.LexicalScore +
					o.policy.JaccardWeight*cand.JaccardScore +
					o.policy.VectorWeight*cand.VectorScore
			} else {
				cand.BlendedScore = o.policy.LexicalTextWeight*cand.LexicalScore +
					o.policy.LexicalJaccardWeight*cand.JaccardScore
			}
		}

		if best == nil || cand.BlendedScore > best.BlendedScore {
			best = cand
			bestArtifact = artifact
		}
	}

	return best, bestArtifact
}

// dedupAndCommit runs the content-level dedup pass over freshly generated
// content and commits a new artifact when no duplicate exists. The content
// hash check is the safety net for concurrent identical misses: a racing
// request that generated the same content resolves to the existing artifact
// here.
func (o *CacheOrchestrator) dedupAndCommit(
	ctx context.Context,
	req *GenerationRequest,
	basis string,
	generated *GenerationResult,
) (*LookupResult, error) {
	logger := observability.FromContext(ctx)

	contentHash := text.Hash(generated.Content)

	existing, err := o.store.FindByHash(ctx, contentHash)
	if err == nil {
		logger.Info("content-level dedup by hash",
			observability.String("artifact_id", existing.ID))
		return &LookupResult{
			Content:     o.safety.Redact(existing.Content),
			ArtifactID:  existing.ID,
			Cached:      true,
			Similarity:  1.0,
			DedupMethod: DedupMethodHash,
		}, nil
	}
	if !errors.Is(err, ErrArtifactNotFound) {
		logger.Warn("hash lookup failed, treating as miss",
			observability.Error(err))
	}

	if match, score := o.nearDuplicateContent(ctx, generated.Content); match != nil {
		logger.Info("content-level dedup by similarity",
			observability.String("artifact_id", match.ID),
			observability.Float64("score", score))
		return &LookupResult{
			Content:     o.safety.Redact(match.Content),
			ArtifactID:  match.ID,
			Cached:      true,
			Similarity:  score,
			DedupMethod: DedupMethodContent,
		}, nil
	}

	artifact := &Artifact{
		ID:           uuid.New().String(),
		RequestBasis: basis,
		Content:      generated.Content,
		ContentHash:  contentHash,
		CreatedAt:    time.Now().UTC(),
	}

	// The index key equals the artifact id. It is recorded before the insert
	// because the store is append-only: a post-insert write would never reach
	// the persisted row.
	indexable := o.embedder != nil && o.basisIndex != nil &&
		text.MeaningfulTokens(req.Topic) > 0
	if indexable {
		artifact.EmbeddingRef = artifact.ID
	}

	if insertErr := o.store.Insert(ctx, artifact); insertErr != nil {
		// The artifact is lost to the cache but the content exists; cache
		// mechanics failures are not user errors.
		logger.Warn("artifact insert failed, serving uncached",
			observability.Error(insertErr))
		return &LookupResult{
			Content: o.safety.Redact(generated.Content),
			Cached:  false,
		}, nil
	}

	// Trivial topics stay find-able by hash but are excluded from the
	// indexes so low-quality keys do not degrade future searches.
	if text.MeaningfulTokens(req.Topic) > 0 {
		o.indexArtifact(ctx, artifact)
	}

	return &LookupResult{
		Content:    o.safety.Redact(generated.Content),
		ArtifactID: artifact.ID,
		Cached:     false,
	}, nil
}

// nearDuplicateContent searches the content index for a stored artifact
// whose text similarity to the generated content meets the content dedup
// threshold. Best-effort: any failure means no duplicate.
func (o *CacheOrchestrator) nearDuplicateContent(
	ctx context.Context,
	content string,
) (*Artifact, float64) {
	if o.contentIndex == nil || o.embedder == nil {
		return nil, 0
	}

	logger := observability.FromContext(ctx)

	vec, err := o.embedder.Generate(ctx, content)
	if err != nil {
		logger.Warn("content embedding failed, skipping similarity dedup",
			observability.Error(err))
		return nil, 0
	}

	matches, err := o.contentIndex.Search(ctx, vec, o.policy.CandidateK)
	if err != nil {
		logger.Warn("content index search failed, skipping similarity dedup",
			observability.Error(err))
		return nil, 0
	}
	if len(matches) == 0 {
		return nil, 0
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	candidates, err := o.store.FindByIDs(ctx, ids)
	if err != nil {
		logger.Warn("content candidate fetch failed",
			observability.Error(err))
		return nil, 0
	}

	var best *Artifact
	bestScore := 0.0
	for _, cand := range candidates {
		if score := text.Similarity(content, cand.Content); score > bestScore {
			best = cand
			bestScore = score
		}
	}
	if best == nil || bestScore < o.policy.ContentDedupThreshold {
		return nil, 0
	}
	return best, bestScore
}

// indexArtifact adds the artifact to the basis and content indexes.
// Best-effort after a durable insert: the store is the source of truth, and
// a missed add only costs nearest-neighbor visibility until a rebuild. Runs
// on a detached context so caller cancellation cannot leave the indexes
// half-updated.
func (o *CacheOrchestrator) indexArtifact(ctx context.Context, artifact *Artifact) {
	if o.embedder == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	logger := observability.FromContext(ctx)

	if o.basisIndex != nil {
		vec, err := o.embedder.Generate(detached, artifact.RequestBasis)
		if err != nil {
			logger.Warn("basis embedding failed, artifact not indexed",
				observability.Error(err))
		} else if addErr := o.basisIndex.Add(detached, []string{artifact.ID}, [][]float64{vec}); addErr != nil {
			logger.Warn("basis index add failed",
				observability.Error(addErr))
		}
	}

	if o.contentIndex != nil {
		vec, err := o.embedder.Generate(detached, artifact.Content)
		if err != nil {
			logger.Warn("content embedding failed, artifact not indexed",
				observability.Error(err))
		} else if addErr := o.contentIndex.Add(detached, []string{artifact.ID}, [][]float64{vec}); addErr != nil {
			logger.Warn("content index add failed",
				observability.Error(addErr))
		}
	}
}

// rebuildBatchSize bounds the number of texts embedded per batch call
// during an index rebuild.
const rebuildBatchSize = 256

// RebuildIndexes replays every stored artifact in creation order into fresh
// index contents, embedding in batches. Admin operation; not safe to run
// concurrently with heavy write traffic.
func (o *CacheOrchestrator) RebuildIndexes(ctx context.Context) (int, error) {
	if o.embedder == nil {
		return 0, ErrIndexUnavailable
	}

	artifacts, err := o.store.ScanAll(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("store scan failed: %w", err)
	}

	indexed := 0
	for start := 0; start < len(artifacts); start += rebuildBatchSize {
		end := min(start+rebuildBatchSize, len(artifacts))
		batch := artifacts[start:end]

		ids := make([]string, len(batch))
		bases := make([]string, len(batch))
		contents := make([]string, len(batch))
		for i, artifact := range batch {
			ids[i] = artifact.ID
			bases[i] = artifact.RequestBasis
			contents[i] = artifact.Content
		}

		o.rebuildBatch(ctx, o.basisIndex, "basis", ids, bases)
		o.rebuildBatch(ctx, o.contentIndex, "content", ids, contents)
		indexed += len(batch)
	}

	observability.FromContext(ctx).Info("index rebuild complete",
		observability.Int("artifacts", indexed))
	return indexed, nil
}

// rebuildBatch embeds one batch of texts and adds them to the given index.
// Best-effort like the per-artifact path: a failed batch is logged and
// skipped.
func (o *CacheOrchestrator) rebuildBatch(
	ctx context.Context,
	idx VectorIndex,
	name string,
	ids []string,
	texts []string,
) {
	if idx == nil || len(ids) == 0 {
		return
	}

	logger := observability.FromContext(ctx)

	vectors, err := o.embedder.GenerateBatch(ctx, texts)
	if err != nil {
		logger.Warn("batch embedding failed, batch skipped",
			observability.String("index", name),
			observability.Error(err))
		return
	}
	if addErr := idx.Add(ctx, ids, vectors); addErr != nil {
		logger.Warn("index batch add failed",
			observability.String("index", name),
			observability.Error(addErr))
	}
}

// Status reports diagnostics for both indexes.
func (o *CacheOrchestrator) Status() map[string]IndexStatus {
	status := map[string]IndexStatus{
		"basis":   {Available: false},
		"content": {Available: false},
	}
	if o.basisIndex != nil {
		status["basis"] = IndexStatus{
			Available: true,
			Backend:   o.basisIndex.Backend(),
			Size:      o.basisIndex.Size(),
		}
	}
	if o.contentIndex != nil {
		status["content"] = IndexStatus{
			Available: true,
			Backend:   o.contentIndex.Backend(),
			Size:      o.contentIndex.Size(),
		}
	}
	return status
}

// SaveIndexes persists both indexes to the given paths. Empty path skips
// that index.
func (o *CacheOrchestrator) SaveIndexes(basisPath, contentPath string) error {
	if o.basisIndex != nil && basisPath != "" {
		if err := o.basisIndex.Save(basisPath); err != nil {
			return fmt.Errorf("save basis index: %w", err)
		}
	}
	if o.contentIndex != nil && contentPath != "" {
		if err := o.contentIndex.Save(contentPath); err != nil {
			return fmt.Errorf("save content index: %w", err)
		}
	}
	return nil
}

// LoadIndexes restores both indexes from the given paths. Empty path skips
// that index.
func (o *CacheOrchestrator) LoadIndexes(basisPath, contentPath string) error {
	if o.basisIndex != nil && basisPath != "" {
		if err := o.basisIndex.Load(basisPath); err != nil {
			return fmt.Errorf("load basis index: %w", err)
		}
	}
	if o.contentIndex != nil && contentPath != "" {
		if err := o.contentIndex.Load(contentPath); err != nil {
			return fmt.Errorf("load content index: %w", err)
		}
	}
	return nil
}
