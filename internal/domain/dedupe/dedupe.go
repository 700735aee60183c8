// Package dedupe collapses multiple same-day sessions for a player down to
// the best one.
package dedupe

import (
	"strings"
	"time"

	"github.com/padelrpm/ranking/internal/domain/record"
)

// datePatterns are the accepted date and datetime layouts, tried in order.
var datePatterns = []string{
	"2006-01-02", "02/01/2006", "01/02/2006", "2006/01/02", "02-01-2006",
	"2006-01-02 15:04:05", "02/01/2006 15:04:05", "01/02/2006 15:04:05",
}

// minutePatterns are retried when no second-resolution layout matches.
var minutePatterns = []string{
	"2006-01-02 15:04", "02/01/2006 15:04", "01/02/2006 15:04",
}

// isoPrefixPatterns back the final ISO-prefix fallback parse.
var isoPrefixPatterns = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDayKey extracts an ISO calendar-day key from a raw date value.
// Returns "" when nothing parses.
func ParseDayKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	sTry := strings.TrimSpace(strings.ReplaceAll(s, "T", " "))
	for _, layout := range datePatterns {
		if t, err := time.Parse(layout, sTry); err == nil {
			return t.Format("2006-01-02")
		}
	}
	for _, layout := range minutePatterns {
		if t, err := time.Parse(layout, sTry); err == nil {
			return t.Format("2006-01-02")
		}
	}
	// ISO-prefix fallback: parse the leading token of the original value.
	tok, _, _ := strings.Cut(s, " ")
	for _, layout := range isoPrefixPatterns {
		if t, err := time.Parse(layout, tok); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// DayKey resolves the calendar-day key of a row by scanning the candidate
// date fields in order. A candidate that is present but unparsable falls
// through to the next one. Returns "" when no candidate parses.
func DayKey(r record.Record) string {
	for _, cand := range record.DateCandidates {
		if r.Has(cand) && strings.TrimSpace(r.Field(cand)) != "" {
			if dk := ParseDayKey(r.Field(cand)); dk != "" {
				return dk
			}
		}
	}
	return ""
}

type groupKey struct {
	player string
	day    string
}

// BestPerDay keeps, per (player, day), the single row with the highest
// level. Rows without a resolvable day key pass through untouched and are
// never deduplicated against anything. Ties keep the first row seen, since
// the comparison is strict greater-than. Output order beyond "passthrough
// first" is unspecified; callers re-sort.
func BestPerDay(rows []record.Record) []record.Record {
	best := make(map[groupKey]record.Record)
	order := make([]groupKey, 0, len(rows))
	var passthrough []record.Record

	for _, r := range rows {
		day := DayKey(r)
		if day == "" {
			passthrough = append(passthrough, r)
			continue
		}
		k := groupKey{player: r.Key(), day: day}
		prev, seen := best[k]
		if !seen {
			best[k] = r
			order = append(order, k)
			continue
		}
		if r.Level() > prev.Level() {
			best[k] = r
		}
	}

	out := make([]record.Record, 0, len(passthrough)+len(best))
	out = append(out, passthrough...)
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}
