package sheets

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/padelrpm/ranking/internal/domain/record"
	"github.com/padelrpm/ranking/pkg/logger"
	"github.com/padelrpm/ranking/pkg/metrics"
)

// Fetcher fetches every session row from the upstream source.
type Fetcher interface {
	Records(ctx context.Context) ([]record.Record, error)
}

// snapshot is one immutable cache fill. Readers share the slice and must
// not mutate it.
type snapshot struct {
	rows      []record.Record
	fetchedAt time.Time
}

// CachedSource serves rows from a single-cell TTL cache in front of a
// Fetcher. The cell is swapped atomically, so concurrent readers never block
// each other; simultaneous expiry may trigger duplicate fetches, which is
// acceptable for this source. When the upstream fails the last good fill is
// served regardless of its age, or an empty slice when there has never been
// one. Fetch errors are logged, never propagated.
type CachedSource struct {
	fetch Fetcher
	ttl   time.Duration
	log   logger.Logger
	now   func() time.Time

	cell atomic.Pointer[snapshot]
}

// Option applies a configuration option to the CachedSource.
type Option func(*CachedSource)

// WithLogger sets a custom logger for the cached source.
func WithLogger(log logger.Logger) Option {
	return func(s *CachedSource) {
		if log != nil {
			s.log = log
		}
	}
}

// withClock overrides the time source, for tests.
func withClock(now func() time.Time) Option {
	return func(s *CachedSource) {
		s.now = now
	}
}

// NewCachedSource wraps a fetcher with a TTL cache. A zero or negative ttl
// disables caching and every call goes upstream.
func NewCachedSource(fetch Fetcher, ttl time.Duration, opts ...Option) *CachedSource {
	s := &CachedSource{
		fetch: fetch,
		ttl:   ttl,
		log:   logger.Named("source"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rows returns the session rows, from cache when the last fill is non-empty
// and fresh, otherwise from upstream. force bypasses the freshness check.
// An empty fill is never considered fresh, so the next call retries.
func (s *CachedSource) Rows(ctx context.Context, force bool) ([]record.Record, error) {
	now := s.now()
	if !force && s.ttl > 0 {
		if c := s.cell.Load(); c != nil && len(c.rows) > 0 && now.Sub(c.fetchedAt) < s.ttl {
			metrics.RecordCacheHit()
			return c.rows, nil
		}
	}
	metrics.RecordCacheMiss()

	start := time.Now()
	rows, err := s.fetch.Records(ctx)
	if err != nil {
		metrics.RecordSheetFetchError()
		s.log.Error(ctx, "source fetch failed, serving stale data", logger.Error(err))
		if c := s.cell.Load(); c != nil {
			return c.rows, nil
		}
		return []record.Record{}, nil
	}

	metrics.RecordSheetFetch(float64(time.Since(start).Milliseconds()))
	metrics.UpdateSourceRows(len(rows))
	s.cell.Store(&snapshot{rows: rows, fetchedAt: now})
	return rows, nil
}
