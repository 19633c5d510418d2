package index

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenlearn/semcache/internal/domain"
	"github.com/lumenlearn/semcache/internal/index/redis"
)

// Backend identifiers accepted by New.
const (
	BackendRedis = "redis"
)

// New creates a vector index for the named backend. An empty backend selects
// the memory index. The redis backend requires a client; when it cannot be
// initialized the memory index is the fallback so top-k cosine search is
// always satisfiable.
func New(backend string, dimensions int, client *goredis.Client, indexName string) (domain.VectorIndex, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryIndex(dimensions)
	case BackendRedis:
		if client == nil {
			return NewMemoryIndex(dimensions)
		}
		idx, err := redis.NewIndex(client, indexName, dimensions)
		if err != nil {
			// Backend down at startup: degrade rather than fail.
			return NewMemoryIndex(dimensions)
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index backend: %s (supported: memory, redis)", backend)
	}
}
