package schema

import (
	"strings"
	"time"
)

// dateFormats is the ordered list of layouts tried when coercing a date cell.
// Spreadsheet exports are inconsistent; day-first is tried before month-first
// because that is what the supported upstream exports produce.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate coerces a raw cell into a date. The second return is false when
// the value is empty or matches no known layout; callers treat that as
// "never observed" rather than an error.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CanonicalID casts a raw identifier cell to canonical string form so numeric
// and text ids compare equally. Integer ids serialized by spreadsheet tools
// as "7.0" are folded back to "7". An empty result means the row has no
// identifier and must be dropped.
func CanonicalID(raw string) string {
	s := strings.TrimSpace(raw)
	if trimmed, ok := strings.CutSuffix(s, ".0"); ok && isDigits(trimmed) {
		return trimmed
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
