// Package service provides the core business service that implements
// the dependencies required by the HTTP site and API.
package service

import (
	"context"
	"strings"
	"sync"

	"github.com/padelrpm/ranking/internal/domain/category"
	"github.com/padelrpm/ranking/internal/domain/dedupe"
	"github.com/padelrpm/ranking/internal/domain/movement"
	"github.com/padelrpm/ranking/internal/domain/ranking"
	"github.com/padelrpm/ranking/internal/domain/record"
	"github.com/padelrpm/ranking/pkg/logger"
	"github.com/padelrpm/ranking/pkg/metrics"
)

// Source produces the current session rows. force bypasses any caching the
// source carries.
type Source interface {
	Rows(ctx context.Context, force bool) ([]record.Record, error)
}

// Service implements the view and API dependencies for the ranking system.
// Every request recomputes its view from the source; the only durable state
// is the movement snapshot behind the tracker.
type Service struct {
	mu sync.RWMutex

	source  Source
	store   movement.Store
	tracker *movement.Tracker

	started  bool
	lastRows int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the session row source.
func WithSource(src Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithStore sets the snapshot store backing movement tracking.
func WithStore(store movement.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service. Source and store are required before Start.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates the wiring and builds the movement tracker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.source == nil {
		return ErrNoSource
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.tracker = movement.NewTracker(s.store, movement.WithLogger(s.logger.Named("tracker")))
	s.started = true
	s.logger.Info(ctx, "ranking service started")
	return nil
}

// Stop releases the store if it owns resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "ranking service stopped")
}

// rows fetches the current sessions and collapses each player to their best
// level per day.
func (s *Service) rows(ctx context.Context, force bool) ([]record.Record, error) {
	raw, err := s.source.Rows(ctx, force)
	if err != nil {
		return nil, err
	}
	out := dedupe.BestPerDay(raw)
	if collapsed := len(raw) - len(out); collapsed > 0 {
		metrics.RecordDedupeCollapsed(collapsed)
	}

	s.mu.Lock()
	s.lastRows = len(out)
	s.mu.Unlock()
	return out, nil
}

// Sessions returns the raw session rows as fetched, without deduplication
// or ordering. This is what the JSON endpoint serves.
func (s *Service) Sessions(ctx context.Context, force bool) ([]record.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.source.Rows(ctx, force)
}

// GeneralView is the data behind the single-table ranking page.
type GeneralView struct {
	// Rows are the enriched view rows, already ordered.
	Rows []ranking.Row

	// Gender and Category echo the active filters, empty when unfiltered.
	Gender   string
	Category string

	// Categories is the sorted set of distinct official labels across all
	// rows, for the filter control.
	Categories []string
}

// GeneralRanking builds the overall ranking. Movement flags and overall
// positions always come from the unfiltered scope; the optional gender and
// exact-category filters only narrow which rows the view shows.
func (s *Service) GeneralRanking(ctx context.Context, force bool, gender, cat string) (GeneralView, error) {
	if err := s.ready(); err != nil {
		return GeneralView{}, err
	}

	all, err := s.rows(ctx, force)
	if err != nil {
		return GeneralView{}, err
	}
	sorted := ranking.SortByLevel(all)

	flags, positions, err := s.tracker.Track(ctx, sorted, "ALL")
	if err != nil {
		return GeneralView{}, err
	}

	view := sorted
	gender = strings.ToUpper(strings.TrimSpace(gender))
	cat = strings.TrimSpace(cat)
	if gender != "" || cat != "" {
		view = ranking.SortByLevel(ranking.Filter(all, gender, cat))
	}

	labels := make([]string, 0, len(all))
	for _, r := range all {
		labels = append(labels, r.OfficialCategory())
	}

	return GeneralView{
		Rows:       ranking.Enrich(ranking.Wrap(view), flags, positions),
		Gender:     gender,
		Category:   cat,
		Categories: ranking.UniqueNonEmpty(labels),
	}, nil
}

// CategoryView is the data behind a gendered, tabbed ranking page.
type CategoryView struct {
	Gender string

	// Cats is the gender's ordered category taxonomy; Groups holds every
	// bucket so tabs can show counts.
	Cats   []string
	Groups map[string][]ranking.Row

	// CurrentCat is the selected tab and Rows its enriched table, tracked
	// in the per-category scope.
	CurrentCat string
	Rows       []ranking.Row
}

// CategoryRanking builds one gender's ranking bucketed by canonical
// category. An empty cat selects the first non-empty bucket; an unknown cat
// falls back to "1ra". Movement is tracked per gender and category scope.
func (s *Service) CategoryRanking(ctx context.Context, force bool, gender, cat string) (CategoryView, error) {
	if err := s.ready(); err != nil {
		return CategoryView{}, err
	}

	all, err := s.rows(ctx, force)
	if err != nil {
		return CategoryView{}, err
	}
	sorted := ranking.SortByLevel(ranking.Filter(all, gender, ""))

	cats := category.Codes(gender)
	groups, defaultCat := ranking.Buckets(sorted, cats, gender)

	current := strings.TrimSpace(cat)
	if current == "" {
		current = defaultCat
	}
	if _, ok := groups[current]; !ok {
		current = "1ra"
	}

	bucket := groups[current]
	scope := gender + ":" + current
	flags, positions, err := s.tracker.Track(ctx, ranking.Records(bucket), scope)
	if err != nil {
		return CategoryView{}, err
	}

	return CategoryView{
		Gender:     gender,
		Cats:       cats,
		Groups:     groups,
		CurrentCat: current,
		Rows:       ranking.Enrich(bucket, flags, positions),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":    s.started,
		"sourceRows": s.lastRows,
	}
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}
