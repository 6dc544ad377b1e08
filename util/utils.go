package util

import (
	"fmt"
	"strings"
)

func StrNotSet(value string) bool {
	return len(strings.TrimSpace(value)) == 0
}

// SameAddress compares two chain addresses case-insensitively. Empty values never match.
func SameAddress(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ShortAddress keeps the first and last characters of an address for human-readable notes.
func ShortAddress(address string) string {
	if len(address) <= 14 {
		return address
	}
	return fmt.Sprintf("%s...%s", address[:8], address[len(address)-6:])
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if !StrNotSet(v) {
			return v
		}
	}
	return ""
}
