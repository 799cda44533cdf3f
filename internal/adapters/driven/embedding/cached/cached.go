// Package cached decorates an embedding service with an in-memory cache
// keyed by model and text, so repeated questions skip the provider.
package cached

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default cache lifetimes.
const (
	DefaultTTL     = 30 * time.Minute
	DefaultCleanup = 10 * time.Minute
)

// EmbeddingService serves cached vectors and delegates misses.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache *cache.Cache
}

// New wraps inner with a cache whose entries expire after ttl.
func New(inner driven.EmbeddingService, ttl time.Duration) *EmbeddingService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EmbeddingService{
		inner: inner,
		cache: cache.New(ttl, DefaultCleanup),
	}
}

func (s *EmbeddingService) key(text string) string {
	return s.inner.ModelName() + ":" + domain.ContentHash([]byte(text))
}

// Embed returns a cached vector or embeds and caches text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.key(text)
	if v, found := s.cache.Get(key); found {
		return v.([]float32), nil
	}

	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, vec, cache.DefaultExpiration)
	return vec, nil
}

// EmbedBatch embeds only the texts missing from the cache.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var (
		missing []string
		indexes []int
	)
	for i, text := range texts {
		if v, found := s.cache.Get(s.key(text)); found {
			out[i] = v.([]float32)
			continue
		}
		missing = append(missing, text)
		indexes = append(indexes, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := s.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, vec := range vectors {
		out[indexes[j]] = vec
		s.cache.Set(s.key(missing[j]), vec, cache.DefaultExpiration)
	}
	return out, nil
}

// ItemCount returns the number of cached vectors, including expired ones
// not yet purged.
func (s *EmbeddingService) ItemCount() int {
	return s.cache.ItemCount()
}

// Dimensions returns the inner service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the inner service's model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping checks the inner service.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close flushes the cache and closes the inner service.
func (s *EmbeddingService) Close() error {
	s.cache.Flush()
	return s.inner.Close()
}
