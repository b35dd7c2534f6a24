package utils

import "strings"

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for optional query parameters that should not reach the SQL at all when absent.
func NewNullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// SplitCSV splits a comma separated value, trimming spaces and dropping empty items.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
