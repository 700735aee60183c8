// Package movement tracks rank movement between ranking snapshots.
//
// Each view of the ranking (overall, or one gender/category bucket) is a
// scope with its own persisted snapshot and movement cache. A cheap hash of
// the sorted row set decides whether movement needs recomputing, so flags
// stay stable across page loads that do not change the underlying ranking.
package movement

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/padelrpm/ranking/internal/domain/record"
	"github.com/padelrpm/ranking/pkg/logger"
	"github.com/padelrpm/ranking/pkg/metrics"
)

// Flag is a movement direction relative to the previous snapshot.
type Flag string

const (
	None Flag = "none"
	Up   Flag = "up"
	Down Flag = "down"
	Same Flag = "same"
)

// Key identifies a snapshot entry: one player within one scope.
type Key struct {
	Scope  string
	Player string
}

// Store persists snapshots, movement flags and per-scope metadata.
// The repository adapter implements it over sqlite.
type Store interface {
	// Meta reads a metadata value. ok is false when the key is absent.
	Meta(ctx context.Context, key string) (value string, ok bool, err error)
	SetMeta(ctx context.Context, key, value string) error

	// LastPositions returns every stored (scope, player) -> rank entry.
	LastPositions(ctx context.Context) (map[Key]int, error)
	// UpsertPositions overwrites the stored rank for each given key.
	UpsertPositions(ctx context.Context, positions map[Key]int) error

	// Movements returns the cached flags for one scope, keyed by player.
	Movements(ctx context.Context, scope string) (map[string]Flag, error)
	// UpsertMovements overwrites the cached flag for each given key.
	UpsertMovements(ctx context.Context, movements map[Key]Flag) error
}

// Tracker derives movement flags from persisted position snapshots.
type Tracker struct {
	store Store
	log   logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithLogger sets a custom logger for the tracker.
func WithLogger(log logger.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// NewTracker creates a Tracker backed by the given store.
func NewTracker(store Store, opts ...Option) *Tracker {
	t := &Tracker{store: store}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// metaKey names the per-scope hash entry in the metadata table.
func metaKey(scope string) string {
	return "rank_hash:" + scope
}

// Hash digests the ordered (normalized name, level) pairs of a sorted row
// set. Identical row sets always hash identically; any reorder or level
// change flips the digest.
func Hash(rowsSorted []record.Record) string {
	parts := make([]string, len(rowsSorted))
	for i, r := range rowsSorted {
		parts[i] = fmt.Sprintf("%s:%.3f", r.Key(), r.Level())
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Positions assigns 1-based ranks to a sorted row set, keyed by the bare
// normalized player name.
func Positions(rowsSorted []record.Record) map[string]int {
	byName := make(map[string]int, len(rowsSorted))
	for i, r := range rowsSorted {
		byName[r.Key()] = i + 1
	}
	return byName
}

// Track computes movement flags for rowsSorted within scope.
//
// When the ranking hash for the scope changed (or was never stored), every
// player currently ranked is classified against the durable snapshot:
// absent -> none, improved -> up, worsened -> down, unchanged -> same; then
// the movement cache, snapshot and hash are overwritten. When the hash is
// unchanged, the stored state is left exactly as last computed.
//
// Either way, the returned movement map is read back from the store so two
// consecutive calls with the same rows agree. The second return value is
// the 1-based position per player within rowsSorted.
func (t *Tracker) Track(ctx context.Context, rowsSorted []record.Record, scope string) (map[string]Flag, map[string]int, error) {
	posByName := Positions(rowsSorted)
	newHash := Hash(rowsSorted)

	oldHash, hadHash, err := t.store.Meta(ctx, metaKey(scope))
	if err != nil {
		return nil, nil, fmt.Errorf("movement: read hash for scope %q: %w", scope, err)
	}

	if !hadHash || oldHash != newHash {
		if err := t.recompute(ctx, scope, rowsSorted, posByName, newHash); err != nil {
			return nil, nil, err
		}
		metrics.RecordSnapshotRecompute(scope)
	} else {
		metrics.RecordSnapshotSkip(scope)
	}

	movements, err := t.store.Movements(ctx, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("movement: read movements for scope %q: %w", scope, err)
	}
	return movements, posByName, nil
}

func (t *Tracker) recompute(ctx context.Context, scope string, rowsSorted []record.Record, posByName map[string]int, newHash string) error {
	last, err := t.store.LastPositions(ctx)
	if err != nil {
		return fmt.Errorf("movement: read snapshot: %w", err)
	}

	positions := make(map[Key]int, len(posByName))
	movements := make(map[Key]Flag, len(posByName))
	for _, r := range rowsSorted {
		k := Key{Scope: scope, Player: r.Key()}
		curr := posByName[r.Key()]
		positions[k] = curr

		prev, known := last[k]
		var mv Flag
		switch {
		case !known:
			mv = None
		case curr < prev:
			mv = Up
		case curr > prev:
			mv = Down
		default:
			mv = Same
		}
		movements[k] = mv
		metrics.RecordMovementFlag(string(mv))
	}

	if err := t.store.UpsertMovements(ctx, movements); err != nil {
		return fmt.Errorf("movement: write movements: %w", err)
	}
	if err := t.store.UpsertPositions(ctx, positions); err != nil {
		return fmt.Errorf("movement: write snapshot: %w", err)
	}
	if err := t.store.SetMeta(ctx, metaKey(scope), newHash); err != nil {
		return fmt.Errorf("movement: write hash: %w", err)
	}

	if t.log != nil {
		t.log.Debug(ctx, "movement recomputed",
			logger.String("scope", scope),
			logger.Int("players", len(positions)),
		)
	}
	return nil
}
