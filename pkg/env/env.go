package env

import (
	"os"
	"strconv"
	"strings"
)

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// GetBool parses a boolean variable, returning fallback when unset or unparsable.
func GetBool(key string, fallback bool) bool {
	val, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return val
}
