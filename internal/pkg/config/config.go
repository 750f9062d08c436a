package config

import (
	"io"
	"time"
)

// Config is the read-only view of the service configuration.
//
// Lookups never fail: a missing or malformed key yields the zero value and the
// caller decides the fallback.
type Config interface {
	io.Closer

	// GetSecond reads an integer key as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer key as a number of minutes.
	GetMinute(key string) time.Duration

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetArray reads a YAML list or a comma separated string. Items are
	// trimmed, and empty and duplicate items are dropped.
	GetArray(key string) []string

	// GetMap reads a YAML map or a "k:v,k:v" string.
	GetMap(key string) map[string]string
}
