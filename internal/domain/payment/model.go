package payment

import (
	"strconv"
	"strings"
)

// Record is one payment row. Amount is always a coerced, non-negative value.
type Record struct {
	MemberID string
	Amount   float64
}

// ParseAmount coerces a raw amount cell to a non-negative number. The second
// return reports whether the value parsed cleanly; malformed, empty and
// negative values all default to 0 so a single bad row can never poison a
// revenue sum.
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
