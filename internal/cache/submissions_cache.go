package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"github.com/typeform-survey/survey-client/internal/models"
	"github.com/typeform-survey/survey-client/pkg/circuitbreaker"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"github.com/typeform-survey/survey-client/pkg/metrics"
	"go.uber.org/zap"
)

const (
	submissionsCacheKey  = "submissions"
	submissionsCacheName = "submissions"

	// DefaultSubmissionsTTL is how long a fetched list counts as fresh
	DefaultSubmissionsTTL = 5 * time.Minute
)

// SubmissionSource lists every stored submission
type SubmissionSource interface {
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
}

// SubmissionsCache holds the last successfully fetched submission list. The
// list never expires; ttl only decides when it is stale and worth refetching.
type SubmissionsCache struct {
	cache   *gocache.Cache
	source  SubmissionSource
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration

	mu        sync.RWMutex
	fetchedAt time.Time
}

// NewSubmissionsCache creates a cache in front of source. A zero ttl uses DefaultSubmissionsTTL.
func NewSubmissionsCache(source SubmissionSource, ttl time.Duration) *SubmissionsCache {
	if ttl <= 0 {
		ttl = DefaultSubmissionsTTL
	}

	return &SubmissionsCache{
		cache:   gocache.New(gocache.NoExpiration, 0),
		source:  source,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("survey-submissions")),
		ttl:     ttl,
	}
}

// Get returns the cached list; found is false until the first successful fetch
func (sc *SubmissionsCache) Get() ([]models.Submission, bool) {
	if data, found := sc.cache.Get(submissionsCacheKey); found {
		subs, ok := data.([]models.Submission)
		if !ok {
			logger.Error("Invalid submissions cache data type")
			sc.cache.Delete(submissionsCacheKey)
			metrics.CacheMisses.WithLabelValues(submissionsCacheName).Inc()
			return nil, false
		}
		metrics.CacheHits.WithLabelValues(submissionsCacheName).Inc()
		return subs, true
	}

	metrics.CacheMisses.WithLabelValues(submissionsCacheName).Inc()
	return nil, false
}

// Refresh fetches the full list and replaces the cached one. On failure the
// previous list is kept and keeps being served.
func (sc *SubmissionsCache) Refresh(ctx context.Context) ([]models.Submission, error) {
	subs, err := circuitbreaker.Execute(sc.breaker, func() ([]models.Submission, error) {
		return sc.source.ListSubmissions(ctx)
	})
	if err != nil {
		if circuitbreaker.IsCircuitOpen(sc.breaker) {
			logger.Warn("Submissions fetch skipped, circuit open")
		}
		return nil, fmt.Errorf("failed to refresh submissions: %w", err)
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	sc.cache.Set(submissionsCacheKey, subs, gocache.NoExpiration)
	metrics.CacheSize.WithLabelValues(submissionsCacheName).Set(float64(len(subs)))

	sc.mu.Lock()
	sc.fetchedAt = time.Now()
	sc.mu.Unlock()

	logger.Info("Submissions cache refreshed", zap.Int("count", len(subs)))
	return subs, nil
}

// FetchedAt is the time of the last successful refresh
func (sc *SubmissionsCache) FetchedAt() time.Time {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.fetchedAt
}

// Has reports whether a list is cached without touching the hit/miss metrics
func (sc *SubmissionsCache) Has() bool {
	_, found := sc.cache.Get(submissionsCacheKey)
	return found
}

// Stale reports whether the cached list is missing or older than the ttl
func (sc *SubmissionsCache) Stale() bool {
	fetchedAt := sc.FetchedAt()
	return fetchedAt.IsZero() || time.Since(fetchedAt) >= sc.ttl
}
