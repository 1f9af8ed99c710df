package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNullSentinel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"nan lowercase", "nan", true},
		{"nan uppercase", "NaN", true},
		{"none", "None", true},
		{"null", "NULL", true},
		{"zero is a value", "0", false},
		{"regular text", "abc", false},
		{"number", "123.45", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNullSentinel(tt.raw))
		})
	}
}

func TestCanonicalSeqNum(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain integer", "123", "123", true},
		{"float export with .0", "123.0", "123", true},
		{"float export with .00", "123.00", "123", true},
		{"scientific notation", "1.23e2", "123", true},
		{"leading whitespace", "  123  ", "123", true},
		{"large sequence number", "900412345678", "900412345678", true},
		{"fractional keeps normalized text", "123.5", "123.5", true},
		{"non-numeric passes verbatim", "ABC-123", "ABC-123", true},
		{"empty is null", "", "", false},
		{"nan is null", "nan", "", false},
		{"none is null", "None", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalSeqNum(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalSeqNum_EquivalentEncodings(t *testing.T) {
	// Every encoding the processor has shipped for the same key must
	// canonicalize identically, or duplicate detection silently breaks.
	encodings := []string{"123", "123.0", "123.00", " 123"}
	for _, raw := range encodings {
		got, ok := CanonicalSeqNum(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, "123", got, raw)
	}
}
