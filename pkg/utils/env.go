package utils

import (
	"os"
	"strconv"
	"strings"
)

// Getenv retrieves the value of the environment variable named by the key.
// If the variable is not present or its value is empty, Getenv returns the fallback string.
func Getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// GetenvInt is Getenv for integer settings. Unparseable values fall back too.
func GetenvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		LogInfo("Ignoring non-numeric environment value", map[string]interface{}{"key": key, "value": value})
		return fallback
	}
	return n
}

// GetenvList splits a comma separated variable, dropping empty entries.
func GetenvList(key string, fallback []string) []string {
	items := SplitCSV(os.Getenv(key))
	if len(items) == 0 {
		return fallback
	}
	return items
}
