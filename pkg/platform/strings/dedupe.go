// Package strings provides string slice helpers for id lists.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  ref-1 ", "ref-2", "ref-1", "", "  "})
//	// Returns: []string{"ref-1", "ref-2"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// Without returns values with every occurrence of drop removed.
func Without(values []string, drop string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v != drop {
			result = append(result, v)
		}
	}
	return result
}

// Limit truncates values to at most n elements; n <= 0 means no limit.
func Limit(values []string, n int) []string {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[:n]
}
