// Package record contains the immutable session record passed between layers.
package record

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Sheet field names consumed by the ranking pipeline. These mirror the
// column headers of the source worksheet.
const (
	LevelField       = "Nivel de la sesión" // 7.0 high, 1.0 low
	NameField        = "Nombre del jugador"
	GenderField      = "Género"
	OfficialCatField = "CAT. RPM OFICIAL"
)

// DateCandidates lists the accepted date column headers, tried in order.
var DateCandidates = []string{
	"Fecha", "fecha", "FECHA", "Día", "Dia", "Día de la sesión", "Dia de la sesión",
	"Fecha de la sesión", "Fecha de la sesion", "Timestamp", "Marca temporal", "Date",
}

// Record is one session row as received from the source. It is immutable:
// the field map is copied on construction and only exposed through accessors.
type Record struct {
	fields map[string]string
}

// New builds a Record from a field map. The map is copied.
func New(fields map[string]string) Record {
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Record{fields: cp}
}

// Field returns the raw value of a named field, or "" when absent.
func (r Record) Field(name string) string {
	return r.fields[name]
}

// Has reports whether a named field is present, even if blank.
func (r Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Name returns the raw player name field.
func (r Record) Name() string {
	return r.fields[NameField]
}

// Gender returns the raw gender field.
func (r Record) Gender() string {
	return r.fields[GenderField]
}

// OfficialCategory returns the raw official category label.
func (r Record) OfficialCategory() string {
	return r.fields[OfficialCatField]
}

// Level parses the session level. Comma is accepted as the decimal
// separator; absent or unparsable values degrade to 0.0, never an error.
func (r Record) Level() float64 {
	s := strings.TrimSpace(r.fields[LevelField])
	if s == "" {
		return 0.0
	}
	s = strings.ReplaceAll(s, ",", ".")
	lvl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return lvl
}

// Key returns the normalized player name used as the ranking identity.
func (r Record) Key() string {
	return NormalizeName(r.fields[NameField])
}

// MarshalJSON emits the raw field map, keeping the JSON endpoint a faithful
// passthrough of the source rows.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields)
}

// NormalizeName collapses internal whitespace runs to single spaces, trims,
// and lowercases. Names differing only in casing or spacing normalize alike.
func NormalizeName(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}
