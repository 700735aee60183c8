// Package demo generates plausible session rows for running the service
// without spreadsheet credentials.
package demo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/padelrpm/ranking/internal/domain/record"
)

// Labels are deliberately messy: the same variety of spellings the real
// worksheet carries, so canonicalization gets exercised.
var (
	maleLabels = []string{
		"1ra", "2da Caballeros", "2da y 3ra", "3ra", "3era", "Cuarta",
		"4ta", "5ta", "6ta", "7ma", "Cat. 5", "CAT 4ta",
	}
	femaleLabels = []string{
		"1ra Damas", "Femenino A", "Cat. B Femenina", "C", "Categoria D",
		"E Femenino", "B", "A",
	}
)

// Source builds a deterministic roster of players and a history of sessions
// spread over the last days. It satisfies the same fetch contract as the
// spreadsheet client, so the TTL cache wraps it unchanged.
type Source struct {
	players int
	days    int
	seed    uint64
	now     func() time.Time
}

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithSeed fixes the random seed so repeated runs produce the same roster.
func WithSeed(seed uint64) Option {
	return func(s *Source) {
		s.seed = seed
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		s.now = now
	}
}

// NewSource builds a demo source for the given roster size and history
// length. Non-positive values fall back to a small default roster.
func NewSource(players, days int, opts ...Option) *Source {
	if players <= 0 {
		players = 40
	}
	if days <= 0 {
		days = 21
	}
	s := &Source{
		players: players,
		days:    days,
		seed:    1927,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Records generates the full session history. Each player gets a stable
// name, gender and category label, a base level, and a handful of sessions
// on random days with small level drift. Some rows carry comma decimals
// and a few carry no date at all, matching what the worksheet produces.
func (s *Source) Records(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := gofakeit.New(s.seed)
	today := s.now().Truncate(24 * time.Hour)

	var out []record.Record
	for i := 0; i < s.players; i++ {
		name := f.FirstName() + " " + f.LastName()
		feminine := i%3 == 0

		gender := "Masculino"
		label := maleLabels[f.Number(0, len(maleLabels)-1)]
		if feminine {
			gender = "Femenino"
			label = femaleLabels[f.Number(0, len(femaleLabels)-1)]
		}

		base := f.Float64Range(1.0, 7.0)
		sessions := f.Number(2, 6)
		for j := 0; j < sessions; j++ {
			level := base + f.Float64Range(-0.4, 0.4)
			if level < 1.0 {
				level = 1.0
			}
			day := today.AddDate(0, 0, -f.Number(0, s.days-1))

			date := day.Format("2006-01-02")
			if f.Bool() {
				date = day.Format("02/01/2006") + " " + fmt.Sprintf("%02d:%02d", f.Number(8, 22), f.Number(0, 59))
			}
			// Roughly one row in ten lacks a date, like manual entries do.
			if f.Number(0, 9) == 0 {
				date = ""
			}

			levelText := fmt.Sprintf("%.2f", level)
			if f.Bool() {
				levelText = strings.ReplaceAll(levelText, ".", ",")
			}

			out = append(out, record.New(map[string]string{
				record.NameField:        name,
				record.GenderField:      gender,
				record.OfficialCatField: label,
				record.LevelField:       levelText,
				"Fecha":                 date,
			}))
		}
	}
	return out, nil
}
