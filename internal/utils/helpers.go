// Package utils provides utility functions and helpers for common operations
// used throughout the application: error types, logging, responses,
// validation and small string helpers.
package utils

import (
	"strconv"
	"strings"
)

// FormatInt64 formats an int64 as a string.
func FormatInt64(i int64) string {
	return strconv.FormatInt(i, 10)
}

// TruncateString truncates a string to maxLen runes, adding "..." when cut.
//
// Parameters:
//   - s: the string to truncate
//   - maxLen: the maximum length of the result, including the ellipsis
//
// Returns:
//   - the original string if it fits, otherwise a truncated copy
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// MaskEmail masks the local part of an email address for logging.
// For example: "user@example.com" becomes "u**r@example.com"
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	user := parts[0]
	if len(user) <= 2 {
		return email
	}

	return string(user[0]) + strings.Repeat("*", len(user)-2) + string(user[len(user)-1]) + "@" + parts[1]
}

// ContainsString checks if a string is present in a slice.
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}
