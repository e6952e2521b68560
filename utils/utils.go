// Package utils provides utility functions for the application.
package utils

import "strings"

// ToPtr returns a pointer to a copy of v
func ToPtr[T any](v T) *T {
	return &v
}

// SplitCSV splits a comma separated list, trimming blanks and dropping empty items.
func SplitCSV(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
