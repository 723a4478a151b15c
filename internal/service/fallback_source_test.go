package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-hod-api/internal/models"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
)

type stubCacheRepo struct {
	mu    sync.Mutex
	items map[string][]byte
	ttls  map[string]time.Duration
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{items: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = raw
	s.ttls[key] = ttl
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

type overview struct {
	Term   string  `json:"term"`
	Billed float64 `json:"billed"`
}

func TestFallbackSourceLive(t *testing.T) {
	src := NewFallbackSource[overview](FallbackSourceParams{Name: "finance"})
	got := src.Fetch(context.Background(), "2024-1", func(context.Context) (overview, error) {
		return overview{Term: "2024-1", Billed: 10}, nil
	}, nil)

	assert.True(t, got.Live())
	assert.Equal(t, 10.0, got.Value.Billed)
	assert.Empty(t, got.Error)
}

func TestFallbackSourceServesStaticFallback(t *testing.T) {
	src := NewFallbackSource[overview](FallbackSourceParams{Name: "finance"})
	got := src.Fetch(context.Background(), "2024-1", func(context.Context) (overview, error) {
		return overview{}, errors.New("connection refused")
	}, func() overview { return overview{Term: "mock"} })

	assert.Equal(t, models.ProvenanceFallback, got.Provenance)
	assert.Equal(t, "mock", got.Value.Term)
	assert.Equal(t, "connection refused", got.Error)
}

func TestFallbackSourceWithoutLiveFunc(t *testing.T) {
	src := NewFallbackSource[overview](FallbackSourceParams{Name: "finance"})
	got := src.Fetch(context.Background(), "k", nil, func() overview { return overview{Term: "mock"} })

	assert.Equal(t, models.ProvenanceFallback, got.Provenance)
	assert.Equal(t, errNoLiveSource.Error(), got.Error)
}

func TestFallbackSourceServesMemoryLastKnownGood(t *testing.T) {
	src := NewFallbackSource[overview](FallbackSourceParams{Name: "finance"})
	ctx := context.Background()
	live := src.Fetch(ctx, "k", func(context.Context) (overview, error) { return overview{Term: "real"}, nil }, nil)
	require.True(t, live.Live())

	got := src.Fetch(ctx, "k", func(context.Context) (overview, error) {
		return overview{}, errors.New("503")
	}, func() overview { return overview{Term: "mock"} })

	assert.Equal(t, models.ProvenanceCached, got.Provenance)
	assert.Equal(t, "real", got.Value.Term)
	assert.Equal(t, live.FetchedAt, got.FetchedAt)

	src.Forget("k")
	got = src.Fetch(ctx, "k", func(context.Context) (overview, error) {
		return overview{}, errors.New("503")
	}, func() overview { return overview{Term: "mock"} })
	assert.Equal(t, models.ProvenanceFallback, got.Provenance)
}

func TestFallbackSourceKeysAreIndependent(t *testing.T) {
	src := NewFallbackSource[overview](FallbackSourceParams{Name: "finance"})
	ctx := context.Background()
	src.Fetch(ctx, "a", func(context.Context) (overview, error) { return overview{Term: "a"}, nil }, nil)

	got := src.Fetch(ctx, "b", func(context.Context) (overview, error) {
		return overview{}, errors.New("down")
	}, func() overview { return overview{Term: "mock"} })
	assert.Equal(t, models.ProvenanceFallback, got.Provenance)
}

func TestFallbackSourceUsesCacheAcrossInstances(t *testing.T) {
	repo := newStubCacheRepo()
	cache := NewCacheService(CacheServiceParams{Repo: repo, Enabled: true, Metrics: NewMetricsService()})
	ctx := context.Background()

	first := NewFallbackSource[overview](FallbackSourceParams{Name: "finance", Cache: cache, CacheTTL: time.Hour})
	first.Fetch(ctx, "2024-1", func(context.Context) (overview, error) { return overview{Term: "2024-1", Billed: 99}, nil }, nil)
	assert.Equal(t, time.Hour, repo.ttls["hod:lkg:finance:2024-1"])

	second := NewFallbackSource[overview](FallbackSourceParams{Name: "finance", Cache: cache})
	got := second.Fetch(ctx, "2024-1", func(context.Context) (overview, error) {
		return overview{}, errors.New("down")
	}, func() overview { return overview{Term: "mock"} })

	assert.Equal(t, models.ProvenanceCached, got.Provenance)
	assert.Equal(t, 99.0, got.Value.Billed)
}
