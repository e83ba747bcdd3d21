package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"recommend-service/metrics"
	"recommend-service/model"
)

// FetchFunc produces a fresh SourceResult for a cache key.
type FetchFunc func(ctx context.Context) (*model.SourceResult, error)

// Manager owns the last successful SourceResult per source key. Concurrent
// fetches for one key are coalesced into a single upstream call; when a
// fetch fails, the previous result is served stale for up to hardCeiling
// past its fetch time. Expiry is lazy, checked at read time.
type Manager struct {
	ttl         time.Duration
	hardCeiling time.Duration

	group singleflight.Group

	mu      sync.RWMutex // guards the entries map, not the entries
	entries map[string]*entry
}

// entry carries its own lock so unrelated keys never serialize each other.
type entry struct {
	mu        sync.RWMutex
	result    *model.SourceResult
	expiresAt time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:         ttl,
		hardCeiling: 10 * ttl,
		entries:     make(map[string]*entry),
	}
}

func (m *Manager) entry(key string) *entry {
	m.mu.RLock()
	e := m.entries[key]
	m.mu.RUnlock()
	if e != nil {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e = m.entries[key]; e == nil {
		e = &entry{}
		m.entries[key] = e
	}
	return e
}

// GetOrFetch returns the cached result for key while it is fresh, otherwise
// fetches through fetch. If the fetch fails and a previous result exists
// within the hard ceiling, that result is served with Stale=true.
func (m *Manager) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (*model.SourceResult, error) {
	e := m.entry(key)

	e.mu.RLock()
	if e.result != nil && time.Now().Before(e.expiresAt) {
		res := cachedCopy(e.result, false)
		e.mu.RUnlock()
		metrics.CacheRequestsTotal.WithLabelValues(key, "hit").Inc()
		return res, nil
	}
	e.mu.RUnlock()
	metrics.CacheRequestsTotal.WithLabelValues(key, "miss").Inc()

	// The shared fetch runs detached from the caller's deadline: a caller
	// that gives up must not cancel a fetch other waiters still need.
	ch := m.group.DoChan(key, func() (interface{}, error) {
		res, err := fetch(context.Background())
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.result = res
		e.expiresAt = time.Now().Add(m.ttl)
		e.mu.Unlock()
		return res, nil
	})

	select {
	case r := <-ch:
		if r.Shared {
			metrics.CacheCoalescedFetches.Inc()
		}
		if r.Err != nil {
			return m.staleFallback(key, e, r.Err)
		}
		return r.Val.(*model.SourceResult), nil
	case <-ctx.Done():
		// Local timeout only; the in-flight fetch keeps running.
		return m.staleFallback(key, e, ctx.Err())
	}
}

// Peek returns the last known good result for key regardless of TTL, as long
// as it is younger than the hard ceiling. Used as the pipeline's terminal
// fallback.
func (m *Manager) Peek(key string) (*model.SourceResult, bool) {
	m.mu.RLock()
	e := m.entries[key]
	m.mu.RUnlock()
	if e == nil {
		return nil, false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.result == nil || time.Since(e.result.FetchedAt) >= m.hardCeiling {
		return nil, false
	}
	return cachedCopy(e.result, !time.Now().Before(e.expiresAt)), true
}

func (m *Manager) staleFallback(key string, e *entry, cause error) (*model.SourceResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.result != nil && time.Since(e.result.FetchedAt) < m.hardCeiling {
		log.Printf("Serving stale cache entry for key=%s after fetch failure: %v", key, cause)
		metrics.CacheRequestsTotal.WithLabelValues(key, "stale").Inc()
		return cachedCopy(e.result, true), nil
	}
	return nil, cause
}

// cachedCopy rewraps a stored result without mutating it; stored results are
// shared between callers and stay immutable.
func cachedCopy(res *model.SourceResult, stale bool) *model.SourceResult {
	return &model.SourceResult{
		Origin:    model.OriginCache,
		Products:  res.Products,
		FetchedAt: res.FetchedAt,
		Stale:     stale,
	}
}
