// Package uid generates identifiers: UUIDs for correlation and token ids,
// snowflakes for events and delivery records.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates roughly time-ordered numeric identifiers.
type NumberID interface {
	Generate() int64
}
