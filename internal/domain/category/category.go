// Package category canonicalizes free-text category labels into the fixed
// per-gender taxonomies used for bucketing.
package category

import (
	"strings"
)

// Ordered category codes, strongest first. The order drives bucket layout
// and the default tab selection.
var (
	Male   = []string{"1ra", "2da", "2_3", "3ra", "4ta", "5ta", "6ta", "7ma"}
	Female = []string{"1ra", "A", "B", "C", "D", "E"}
)

// Canonical gender codes used across filters and movement scopes.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// maleReplacer strips ordinal marks and normalizes separators before the
// male matching rules run.
var maleReplacer = strings.NewReplacer(
	"º", "", "°", "",
	"–", "-", "—", "-",
	"/", "-",
	" ", "",
)

// CanonMale maps a free-text male category label to one of the Male codes.
// Returns ok=false when no rule matches.
func CanonMale(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	s = maleReplacer.Replace(s)

	// The combined 2da-3ra category wins over any prefix rule.
	if (strings.Contains(s, "2") && strings.Contains(s, "3")) ||
		strings.Contains(s, "2-3") || strings.Contains(s, "2da3ra") || strings.Contains(s, "2da-3ra") {
		return "2_3", true
	}
	switch {
	case strings.HasPrefix(s, "7"):
		return "7ma", true
	case strings.HasPrefix(s, "6"):
		return "6ta", true
	case strings.HasPrefix(s, "5"):
		return "5ta", true
	case strings.HasPrefix(s, "4"):
		return "4ta", true
	case strings.HasPrefix(s, "3"):
		return "3ra", true
	case strings.HasPrefix(s, "2"):
		return "2da", true
	case strings.HasPrefix(s, "1") || strings.HasPrefix(s, "1a"):
		return "1ra", true
	}
	// Spelled-out ordinals, e.g. "séptima" shorthand with a digit elsewhere.
	switch {
	case strings.Contains(s, "ma") && strings.Contains(s, "7"):
		return "7ma", true
	case strings.Contains(s, "ta") && strings.Contains(s, "6"):
		return "6ta", true
	case strings.Contains(s, "ta") && strings.Contains(s, "5"):
		return "5ta", true
	case strings.Contains(s, "ta") && strings.Contains(s, "4"):
		return "4ta", true
	case strings.Contains(s, "ra") && strings.Contains(s, "3"):
		return "3ra", true
	case strings.Contains(s, "da") && strings.Contains(s, "2"):
		return "2da", true
	case strings.Contains(s, "ra") && strings.Contains(s, "1"):
		return "1ra", true
	}
	return "", false
}

// femaleStripTokens are removed, in order, before the female matching rules.
var femaleStripTokens = []string{"femenino", "categoria", "categoría", "cat", ".", "_", "-", " "}

// femaleAliases maps stripped labels to their canonical codes.
var femaleAliases = map[string]string{
	"1": "1ra", "1a": "1ra", "1ra": "1ra", "primera": "1ra", "open": "1ra",
	"a": "A",
	"b": "B", "2": "B", "2a": "B", "2da": "B",
	"c": "C", "3": "C", "3a": "C", "3ra": "C",
	"d": "D", "4": "D", "4a": "D", "4ta": "D",
	"e": "E", "5": "E", "5a": "E", "5ta": "E",
}

// CanonFemale maps a free-text female category label to one of the Female
// codes. Returns ok=false when no rule matches.
func CanonFemale(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	for _, token := range femaleStripTokens {
		s = strings.ReplaceAll(s, token, "")
	}
	s = strings.TrimSpace(s)
	if code, ok := femaleAliases[s]; ok {
		return code, true
	}
	if s != "" && strings.ContainsRune("abcde", rune(s[0])) {
		return strings.ToUpper(s[:1]), true
	}
	return "", false
}

// Canon selects the canonicalizer for a gender code. Anything other than
// GenderFemale uses the male taxonomy, matching the bucketing defaults.
func Canon(gender string) func(string) (string, bool) {
	if gender == GenderFemale {
		return CanonFemale
	}
	return CanonMale
}

// Codes returns the ordered taxonomy for a gender code.
func Codes(gender string) []string {
	if gender == GenderFemale {
		return Female
	}
	return Male
}
