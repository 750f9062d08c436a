// Package kvstore is a small TTL key-value store abstraction.
//
// Every value written through a Store carries its own expiry, and counters are
// incremented atomically with the expiry applied only when the key is created.
// The Redis implementation is the production backend; tests run it against
// miniredis.
package kvstore
