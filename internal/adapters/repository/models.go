package repository

import (
	"time"

	"github.com/uptrace/bun"
)

// PositionRow is the durable last-known rank of a player within a scope.
// Entries are never deleted; stale players simply stop being rendered.
type PositionRow struct {
	bun.BaseModel `bun:"table:player_positions,alias:pp"`

	Scope     string    `bun:"scope,pk"`
	Player    string    `bun:"player,pk"`
	LastPos   int       `bun:"last_pos,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// MovementRow caches the movement flag computed at the last hash change.
type MovementRow struct {
	bun.BaseModel `bun:"table:movement_cache,alias:mc"`

	Scope     string    `bun:"scope,pk"`
	Player    string    `bun:"player,pk"`
	Movement  string    `bun:"movement,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// MetaRow is a generic string key-value entry, e.g. per-scope ranking hashes.
type MetaRow struct {
	bun.BaseModel `bun:"table:meta,alias:m"`

	K string `bun:"k,pk"`
	V string `bun:"v,notnull"`
}
