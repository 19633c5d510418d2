// Package redis implements a vector index backed by Redis FT.SEARCH with a
// FLAT cosine vector field. Persistence is delegated to the Redis server,
// so Save/Load are no-ops kept for interface parity with file-backed
// backends.
package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/lumenlearn/semcache/internal/domain"
	"github.com/lumenlearn/semcache/internal/observability"
)

const (
	redisDialectVersion = 2

	// BackendName identifies this backend in diagnostics.
	BackendName = "redis"
)

// Index implements domain.VectorIndex using Redis vector search.
type Index struct {
	client     *redis.Client
	indexName  string
	dimensions int
	size       atomic.Int64
}

// NewIndex creates a Redis vector index, creating the search index server
// side if it does not exist.
func NewIndex(client *redis.Client, indexName string, dimensions int) (*Index, error) {
	idx := &Index{
		client:     client,
		indexName:  indexName,
		dimensions: dimensions,
	}

	if err := idx.createIndex(); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return idx, nil
}

// floatsToBytes converts float64 vectors to the FLOAT32 binary layout the
// Redis vector field expects.
func floatsToBytes(fs []float64) []byte {
	const bytesPerFloat32 = 4
	buf := make([]byte, len(fs)*bytesPerFloat32)

	for i, f := range fs {
		u := math.Float32bits(float32(f))
		binary.LittleEndian.PutUint32(buf[i*bytesPerFloat32:], u)
	}

	return buf
}

// Add stores vectors keyed by artifact id under the index prefix.
func (x *Index) Add(ctx context.Context, ids []string, vectors [][]float64) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}

	pipe := x.client.Pipeline()
	for i, id := range ids {
		if len(vectors[i]) != x.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d",
				len(vectors[i]), x.dimensions)
		}
		pipe.HSet(ctx, x.key(id),
			"embedding", floatsToBytes(vectors[i]),
			"artifact_id", id,
		)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to index vectors: %w", err)
	}

	x.size.Add(int64(len(ids)))
	return nil
}

// Search returns the top-k nearest artifact ids by cosine similarity.
func (x *Index) Search(ctx context.Context, query []float64, k int) ([]*domain.VectorMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	logger := observability.FromContext(ctx)

	knn := fmt.Sprintf("*=>[KNN %d @embedding $vec AS score]", k)
	results, err := x.client.FTSearchWithArgs(ctx, x.indexName, knn,
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: "artifact_id"},
				{FieldName: "score"},
			},
			DialectVersion: redisDialectVersion,
			Params: map[string]any{
				"vec": floatsToBytes(query),
			},
		},
	).Result()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]*domain.VectorMatch, 0, len(results.Docs))
	for _, doc := range results.Docs {
		scoreStr, ok := doc.Fields["score"]
		if !ok {
			continue
		}
		distance, parseErr := strconv.ParseFloat(scoreStr, 64)
		if parseErr != nil {
			continue
		}

		id, ok := doc.Fields["artifact_id"]
		if !ok {
			logger.Warn("artifact_id field missing in search result",
				observability.String("key", doc.ID))
			continue
		}

		// Cosine distance to similarity.
		matches = append(matches, &domain.VectorMatch{ID: id, Score: 1.0 - distance})
	}

	return matches, nil
}

// Size returns the server-side document count, falling back to the local
// add counter if the backend cannot be queried.
func (x *Index) Size() int {
	info, err := x.client.FTInfo(context.Background(), x.indexName).Result()
	if err != nil {
		return int(x.size.Load())
	}
	return info.NumDocs
}

// Backend returns the backend identifier.
func (x *Index) Backend() string {
	return BackendName
}

// Save is a no-op: Redis owns durability for this backend.
func (x *Index) Save(_ string) error {
	return nil
}

// Load is a no-op: Redis owns durability for this backend.
func (x *Index) Load(_ string) error {
	return nil
}

// Close releases the client connection.
func (x *Index) Close() error {
	return x.client.Close()
}

func (x *Index) key(id string) string {
	return x.indexName + ":" + id
}

// createIndex creates the Redis search index if it doesn't exist.
func (x *Index) createIndex() error {
	ctx := context.Background()
	logger := observability.FromContext(ctx)

	// Check if index already exists
	if _, err := x.client.FTInfo(ctx, x.indexName).Result(); err == nil {
		logger.Info("redis search index already exists, skipping creation",
			observability.String("index_name", x.indexName))
		return nil
	}

	logger.Info("creating redis search index",
		observability.String("index_name", x.indexName),
		observability.Int("dimensions", x.dimensions))

	_, err := x.client.FTCreate(ctx, x.indexName,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{x.indexName + ":"},
		},
		&redis.FieldSchema{
			FieldName: "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				FlatOptions: &redis.FTFlatOptions{
					Type:           "FLOAT32",
					Dim:            x.dimensions,
					DistanceMetric: "COSINE",
				},
			},
		},
		&redis.FieldSchema{
			FieldName: "artifact_id",
			FieldType: redis.SearchFieldTypeText,
		},
	).Result()
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}
