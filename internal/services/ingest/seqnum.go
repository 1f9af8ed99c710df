package ingest

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IsNullSentinel reports whether a raw cell value stands for SQL NULL.
// Spreadsheet engines leak "nan"/"none" tokens into exports, so those are
// treated as null alongside the empty string.
func IsNullSentinel(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}

// CanonicalSeqNum normalizes a sequence number to its decimal-free text
// form so comparisons against the stored key are exact regardless of the
// source encoding: 123, 123.0, "123" and 123.00 all canonicalize to "123".
// The second return is false when the row carries no usable sequence
// number at all.
func CanonicalSeqNum(raw string) (string, bool) {
	if IsNullSentinel(raw) {
		return "", false
	}
	s := strings.TrimSpace(raw)
	if d, err := decimal.NewFromString(s); err == nil {
		if d.IsInteger() {
			return d.Truncate(0).String(), true
		}
		// A fractional sequence number is malformed upstream data; keep
		// its normalized text so it still round-trips as a stable key.
		return d.String(), true
	}
	// Non-numeric keys pass through verbatim.
	return s, true
}
