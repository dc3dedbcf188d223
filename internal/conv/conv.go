// Package conv provides the lenient string-to-number parsing and
// closed-vocabulary column-name matching shared by catalog and station
// metadata ingestion.
package conv

import (
	"strconv"
	"strings"
)

// FloatOrNil parses s as a float64, returning nil if s does not parse
// (including the empty string).
func FloatOrNil(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// IntOrNil parses s as an int, returning nil if s does not parse.
func IntOrNil(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// FieldMatchScore scores how well field matches any name in candidates:
// 999 for an exact match (case-insensitive, trimmed), otherwise the
// length of the longest candidate that appears as a substring of field,
// or 0 if none do.
func FieldMatchScore(field string, candidates []string) int {
	normalized := strings.ToLower(strings.TrimSpace(field))
	for _, c := range candidates {
		if normalized == c {
			return 999
		}
	}
	best := 0
	for _, c := range candidates {
		if strings.Contains(normalized, c) && len(c) > best {
			best = len(c)
		}
	}
	return best
}
