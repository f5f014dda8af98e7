package internal

import (
	"path/filepath"
	"strings"
)

// HasAnyOfSuffixes returns an indication if the given string has any of the given suffixes.
func HasAnyOfSuffixes(input string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(input, suffix) {
			return true
		}
	}

	return false
}

// HasAnyOfPrefixes returns an indication if the given string has any of the given prefixes.
func HasAnyOfPrefixes(input string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(input, prefix) {
			return true
		}
	}

	return false
}

// IsRemoteSource indicates if the given user input should be fetched over the network rather than read from disk.
func IsRemoteSource(input string) bool {
	return HasAnyOfPrefixes(strings.ToLower(input), "http://", "https://", "s3::", "gcs::")
}

// Stem returns the base name of the given path without its extension (e.g. "/tmp/app.apk" -> "app").
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Truncate shortens the given string to at most n runes, appending an ellipsis when something was removed.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SplitCommaSeparatedString returns the non-empty, trimmed items of a comma separated string.
func SplitCommaSeparatedString(input string) []string {
	output := make([]string, 0)
	for _, inputItem := range strings.Split(input, ",") {
		if item := strings.TrimSpace(inputItem); len(item) > 0 {
			output = append(output, item)
		}
	}
	return output
}
