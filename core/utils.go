package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// OptionalString returns nil for a blank `s`, a pointer to the cleaned value otherwise.
func OptionalString(s string) *string {
	s = CleanString(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences `s`, nil being the empty string.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
