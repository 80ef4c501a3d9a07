package payment_test

import (
	"testing"

	"fitinsight/internal/domain/payment"
)

// TestParseAmount tests amount coercion and its zero default on malformed
// or negative input.
func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		parsed bool
	}{
		{"integer", "100", 100, true},
		{"decimal", "49.99", 49.99, true},
		{"zero", "0", 0, true},
		{"whitespace", " 250 ", 250, true},
		{"malformed text", "bad", 0, false},
		{"empty", "", 0, false},
		{"negative clamped", "-5", 0, false},
		{"currency symbol rejected", "$100", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := payment.ParseAmount(tt.raw)
			if got != tt.want || ok != tt.parsed {
				t.Errorf("ParseAmount(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.parsed)
			}
		})
	}
}

// TestAmountSumUnaffectedByMalformedRows tests that malformed amounts
// contribute 0 to a sum instead of being skipped or failing.
func TestAmountSumUnaffectedByMalformedRows(t *testing.T) {
	raws := []string{"100", "bad", "50"}
	var sum float64
	for _, r := range raws {
		v, _ := payment.ParseAmount(r)
		sum += v
	}
	if sum != 150 {
		t.Errorf("sum = %v, want 150", sum)
	}
}
