// Package env reads process environment variables with fallbacks for the
// pieces of bootstrap that run before envconfig does.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or blank.
func Get(name, fallback string) string {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback
	}
	return v
}
