package schema_test

import (
	"testing"
	"time"

	"fitinsight/internal/domain/schema"
)

// TestParseDate tests date coercion across the supported layouts and its
// degradation to "unknown" on malformed input.
func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // YYYY-MM-DD, or "" when parsing must fail
	}{
		{"iso date", "2024-03-15", "2024-03-15"},
		{"iso datetime", "2024-03-15 09:30:00", "2024-03-15"},
		{"rfc3339", "2024-03-15T09:30:00Z", "2024-03-15"},
		{"day first slash", "15/03/2024", "2024-03-15"},
		{"slash iso", "2024/03/15", "2024-03-15"},
		{"whitespace", "  2024-03-15  ", "2024-03-15"},
		{"empty", "", ""},
		{"garbage", "last tuesday", ""},
		{"number", "42", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := schema.ParseDate(tt.raw)
			if tt.want == "" {
				if ok {
					t.Errorf("ParseDate(%q) = %v, want failure", tt.raw, got)
				}
				return
			}
			if !ok {
				t.Fatalf("ParseDate(%q) failed, want %s", tt.raw, tt.want)
			}
			if got.Format(time.DateOnly) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.raw, got.Format(time.DateOnly), tt.want)
			}
		})
	}
}

// TestCanonicalID tests identifier casting, including the spreadsheet
// float-serialization quirk.
func TestCanonicalID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain number", "7", "7"},
		{"float serialized int", "7.0", "7"},
		{"text id", "M-104", "M-104"},
		{"whitespace", "  3 ", "3"},
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"dot zero alone", ".0", ".0"},
		{"version-like text", "v1.0", "v1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := schema.CanonicalID(tt.raw); got != tt.want {
				t.Errorf("CanonicalID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
