package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

// FetchFunc performs one live upstream fetch.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// errNoLiveSource is reported when a fetch is attempted without an upstream.
var errNoLiveSource = errors.New("no live source configured")

type lastKnownGood[T any] struct {
	value     T
	fetchedAt time.Time
}

// FallbackSource decorates an upstream fetch: on failure it serves the last known good value
// (memory first, then cache) or a static default, and marks the provenance of what it served.
type FallbackSource[T any] struct {
	name     string
	cache    *CacheService
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.RWMutex
	good map[string]lastKnownGood[T]
}

// FallbackSourceParams groups constructor dependencies.
type FallbackSourceParams struct {
	Name     string
	Cache    *CacheService
	CacheTTL time.Duration
	Metrics  *MetricsService
	Logger   *zap.Logger
}

// NewFallbackSource constructs a fallback decorator.
func NewFallbackSource[T any](params FallbackSourceParams) *FallbackSource[T] {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackSource[T]{
		name:     params.Name,
		cache:    params.Cache,
		cacheTTL: params.CacheTTL,
		metrics:  params.Metrics,
		logger:   logger,
		now:      time.Now,
		good:     make(map[string]lastKnownGood[T]),
	}
}

// Fetch runs live for key and degrades to the last known good value or fallback() on any error.
func (s *FallbackSource[T]) Fetch(ctx context.Context, key string, live FetchFunc[T], fallback func() T) models.Sourced[T] {
	var (
		value T
		err   = errNoLiveSource
	)
	if live != nil {
		start := s.now()
		value, err = live(ctx)
		s.metrics.ObserveUpstreamCall(s.name, err == nil, s.now().Sub(start))
	}
	if err == nil {
		fetchedAt := s.now().UTC()
		s.remember(ctx, key, value, fetchedAt)
		s.metrics.RecordSourceResult(s.name, models.ProvenanceLive)
		return models.Sourced[T]{Value: value, Provenance: models.ProvenanceLive, FetchedAt: fetchedAt}
	}

	if !errors.Is(err, errNoLiveSource) {
		s.logger.Warn("live fetch failed, serving fallback", zap.String("source", s.name), zap.String("key", key), zap.Error(err))
	}

	if good, ok := s.recall(ctx, key); ok {
		s.metrics.RecordSourceResult(s.name, models.ProvenanceCached)
		return models.Sourced[T]{Value: good.value, Provenance: models.ProvenanceCached, FetchedAt: good.fetchedAt, Error: err.Error()}
	}

	var def T
	if fallback != nil {
		def = fallback()
	}
	s.metrics.RecordSourceResult(s.name, models.ProvenanceFallback)
	return models.Sourced[T]{Value: def, Provenance: models.ProvenanceFallback, FetchedAt: s.now().UTC(), Error: err.Error()}
}

// Forget drops the remembered value for key from memory.
func (s *FallbackSource[T]) Forget(key string) {
	s.mu.Lock()
	delete(s.good, key)
	s.mu.Unlock()
}

func (s *FallbackSource[T]) remember(ctx context.Context, key string, value T, fetchedAt time.Time) {
	s.mu.Lock()
	s.good[key] = lastKnownGood[T]{value: value, fetchedAt: fetchedAt}
	s.mu.Unlock()

	if !s.cache.Enabled() {
		return
	}
	entry := cachedValue[T]{Value: value, FetchedAt: fetchedAt}
	_ = s.cache.Set(ctx, s.cacheKey(key), entry, s.cacheTTL)
}

func (s *FallbackSource[T]) recall(ctx context.Context, key string) (lastKnownGood[T], bool) {
	s.mu.RLock()
	good, ok := s.good[key]
	s.mu.RUnlock()
	if ok {
		return good, true
	}

	if !s.cache.Enabled() {
		return lastKnownGood[T]{}, false
	}
	var entry cachedValue[T]
	hit, err := s.cache.Get(ctx, s.cacheKey(key), &entry)
	if err != nil || !hit {
		return lastKnownGood[T]{}, false
	}
	return lastKnownGood[T]{value: entry.Value, fetchedAt: entry.FetchedAt}, true
}

func (s *FallbackSource[T]) cacheKey(key string) string {
	return fmt.Sprintf("lkg:%s:%s", s.name, key)
}

type cachedValue[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetchedAt"`
}
