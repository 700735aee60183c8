// Package ranking sorts, filters and buckets session rows, and builds the
// enriched presentation rows served by the views.
package ranking

import (
	"sort"
	"strings"

	"github.com/padelrpm/ranking/internal/domain/category"
	"github.com/padelrpm/ranking/internal/domain/movement"
	"github.com/padelrpm/ranking/internal/domain/record"
)

// Row is one presentation row: the source record plus derived fields. The
// source record is never mutated; enrichment builds fresh rows.
type Row struct {
	record.Record

	// Cat and PosInCat are set by bucketing only.
	Cat      string
	PosInCat int

	// Pos is the 1-based index within the rendered view. PosOverall is the
	// player's position in the tracker's scope, not this view.
	Pos        int
	PosOverall int
	Movement   movement.Flag
}

// SortByLevel returns the rows stably ordered by level descending, ties
// broken by ascending case-insensitive trimmed player name. The input
// slice is not modified.
func SortByLevel(rows []record.Record) []record.Record {
	out := make([]record.Record, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].Level(), out[j].Level()
		if li != lj {
			return li > lj
		}
		ni := strings.ToLower(strings.TrimSpace(out[i].Name()))
		nj := strings.ToLower(strings.TrimSpace(out[j].Name()))
		return ni < nj
	})
	return out
}

// isFeminine reports whether a row reads as feminine, in either the gender
// field or the category label.
func isFeminine(r record.Record) bool {
	g := strings.ToLower(strings.TrimSpace(r.Gender()))
	c := strings.ToLower(strings.TrimSpace(r.OfficialCategory()))
	return strings.Contains(g, "fem") || strings.Contains(g, "femen") ||
		strings.Contains(c, "fem") || strings.Contains(c, "femen") ||
		g == "f"
}

// Filter narrows rows by gender and/or exact official category.
// gender "M" excludes any feminine row; "F" keeps only feminine rows;
// anything else skips the gender filter.
func Filter(rows []record.Record, gender, officialCat string) []record.Record {
	gender = strings.ToUpper(strings.TrimSpace(gender))
	officialCat = strings.TrimSpace(officialCat)

	var out []record.Record
	for _, r := range rows {
		switch gender {
		case category.GenderMale:
			if isFeminine(r) {
				continue
			}
		case category.GenderFemale:
			if !isFeminine(r) {
				continue
			}
		}
		if officialCat != "" {
			c := strings.ToLower(strings.TrimSpace(r.OfficialCategory()))
			if c != strings.ToLower(officialCat) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Buckets groups already-sorted rows into the ordered category list for a
// gender. Unrecognized labels coerce into cats[0] so no row drops. Rows
// keep their sorted order inside each group and get a 1-based position
// within the category. There is no cap on bucket size. The second return
// value is the first non-empty category, for default tab selection.
func Buckets(rowsSorted []record.Record, cats []string, gender string) (map[string][]Row, string) {
	groups := make(map[string][]Row, len(cats))
	for _, c := range cats {
		groups[c] = nil
	}
	canon := category.Canon(gender)

	for _, r := range rowsSorted {
		code, ok := canon(r.OfficialCategory())
		if !ok {
			code = cats[0]
		}
		if _, known := groups[code]; !known {
			code = cats[0]
		}
		groups[code] = append(groups[code], Row{
			Record:   r,
			Cat:      code,
			PosInCat: len(groups[code]) + 1,
		})
	}

	defaultCat := cats[0]
	for _, c := range cats {
		if len(groups[c]) > 0 {
			defaultCat = c
			break
		}
	}
	return groups, defaultCat
}

// Wrap lifts plain records into presentation rows, for unbucketed views.
func Wrap(rows []record.Record) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{Record: r}
	}
	return out
}

// Enrich attaches view position, overall position and movement flag to each
// row. Missing movement defaults to none; a missing overall position stays
// zero. The input rows are copied, not mutated.
func Enrich(view []Row, movements map[string]movement.Flag, positions map[string]int) []Row {
	out := make([]Row, len(view))
	for i, row := range view {
		row.Pos = i + 1
		row.PosOverall = positions[row.Key()]
		mv, ok := movements[row.Key()]
		if !ok {
			mv = movement.None
		}
		row.Movement = mv
		out[i] = row
	}
	return out
}

// Records extracts the underlying source records from presentation rows,
// e.g. to feed a bucket's rows back into the movement tracker.
func Records(rows []Row) []record.Record {
	out := make([]record.Record, len(rows))
	for i, row := range rows {
		out[i] = row.Record
	}
	return out
}

// UniqueNonEmpty returns the sorted set of non-blank trimmed values.
func UniqueNonEmpty(values []string) []string {
	set := make(map[string]struct{})
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
