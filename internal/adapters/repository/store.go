// Package repository persists ranking snapshots, movement flags and
// metadata in sqlite via bun.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/padelrpm/ranking/internal/domain/movement"
	"github.com/padelrpm/ranking/pkg/logger"
	"github.com/padelrpm/ranking/pkg/metrics"
)

// SQLStore implements movement.Store over a sqlite database.
type SQLStore struct {
	db  *bun.DB
	log logger.Logger
	now func() time.Time
}

var _ movement.Store = (*SQLStore)(nil)

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(s *SQLStore) {
		if log != nil {
			s.log = log
		}
	}
}

// New opens (creating if needed) the sqlite database at path and ensures
// the three tables exist. Migrations are idempotent create-if-missing.
func New(ctx context.Context, path string, opts ...Option) (*SQLStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	s := &SQLStore{
		db:  bun.NewDB(sqldb, sqlitedialect.New()),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, model := range []interface{}{
		(*PositionRow)(nil),
		(*MovementRow)(nil),
		(*MetaRow)(nil),
	} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			_ = s.db.Close()
			return nil, fmt.Errorf("%w: %w", ErrMigrate, err)
		}
	}
	if s.log != nil {
		s.log.Debug(ctx, "snapshot store ready", logger.String("path", path))
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Meta reads a metadata value; ok is false when the key is absent.
func (s *SQLStore) Meta(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	row := new(MetaRow)
	err := s.db.NewSelect().Model(row).Where("k = ?", key).Scan(ctx)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		metrics.RecordStoreError()
		return "", false, fmt.Errorf("repository.Meta: %w", err)
	}
	return row.V, true, nil
}

// SetMeta upserts a metadata value.
func (s *SQLStore) SetMeta(ctx context.Context, key, value string) error {
	start := time.Now()
	_, err := s.db.NewInsert().
		Model(&MetaRow{K: key, V: value}).
		On("CONFLICT (k) DO UPDATE").
		Set("v = EXCLUDED.v").
		Exec(ctx)
	metrics.RecordStoreUpsertLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("repository.SetMeta: %w", err)
	}
	return nil
}

// LastPositions returns every stored (scope, player) -> rank entry.
func (s *SQLStore) LastPositions(ctx context.Context) (map[movement.Key]int, error) {
	start := time.Now()
	var rows []PositionRow
	err := s.db.NewSelect().Model(&rows).Scan(ctx)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("repository.LastPositions: %w", err)
	}
	out := make(map[movement.Key]int, len(rows))
	for _, r := range rows {
		out[movement.Key{Scope: r.Scope, Player: r.Player}] = r.LastPos
	}
	return out, nil
}

// UpsertPositions overwrites the stored rank for each given key.
func (s *SQLStore) UpsertPositions(ctx context.Context, positions map[movement.Key]int) error {
	if len(positions) == 0 {
		return nil
	}
	now := s.now()
	rows := make([]PositionRow, 0, len(positions))
	for k, pos := range positions {
		rows = append(rows, PositionRow{
			Scope:     k.Scope,
			Player:    k.Player,
			LastPos:   pos,
			UpdatedAt: now,
		})
	}

	start := time.Now()
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (scope, player) DO UPDATE").
		Set("last_pos = EXCLUDED.last_pos").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	metrics.RecordStoreUpsertLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("repository.UpsertPositions: %w", err)
	}
	return nil
}

// Movements returns the cached flags for one scope, keyed by player.
func (s *SQLStore) Movements(ctx context.Context, scope string) (map[string]movement.Flag, error) {
	start := time.Now()
	var rows []MovementRow
	err := s.db.NewSelect().Model(&rows).Where("scope = ?", scope).Scan(ctx)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("repository.Movements: %w", err)
	}
	out := make(map[string]movement.Flag, len(rows))
	for _, r := range rows {
		out[r.Player] = movement.Flag(r.Movement)
	}
	return out, nil
}

// UpsertMovements overwrites the cached flag for each given key.
func (s *SQLStore) UpsertMovements(ctx context.Context, movements map[movement.Key]movement.Flag) error {
	if len(movements) == 0 {
		return nil
	}
	now := s.now()
	rows := make([]MovementRow, 0, len(movements))
	for k, mv := range movements {
		rows = append(rows, MovementRow{
			Scope:     k.Scope,
			Player:    k.Player,
			Movement:  string(mv),
			UpdatedAt: now,
		})
	}

	start := time.Now()
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (scope, player) DO UPDATE").
		Set("movement = EXCLUDED.movement").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	metrics.RecordStoreUpsertLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("repository.UpsertMovements: %w", err)
	}
	return nil
}
