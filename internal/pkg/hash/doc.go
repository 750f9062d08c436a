// Package hash derives keyed digests of short-lived secrets.
//
// One-time codes are never stored in clear: the store keeps the digest and a
// submitted code is checked by recomputing it under the same key.
package hash
