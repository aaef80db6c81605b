package utils

import "os"

// ParseWithFallback reads an environment variable, falling back to the
// given default when it is unset or empty.
func ParseWithFallback(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}

	return fallback
}
