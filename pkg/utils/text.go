// Package utils provides shared utilities for text, math, and logging.
package utils

import "strings"

// sentenceTrailer holds the characters stripped from the end of a sentence
// before a single terminating period is appended.
const sentenceTrailer = ".!?;:, \t"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// EnsurePeriod trims trailing punctuation and whitespace from s and terminates it
// with exactly one period. An empty or punctuation-only input returns "".
func EnsurePeriod(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), sentenceTrailer)
	if s == "" {
		return ""
	}
	return s + "."
}

// IsBlank reports whether s contains only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
