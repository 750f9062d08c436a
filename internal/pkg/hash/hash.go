package hash

// Digester computes and checks keyed digests.
type Digester interface {
	// Digest returns the hex encoded digest of plain.
	Digest(plain string) string
	// Match reports whether digest was produced from plain. It runs in
	// constant time with respect to the digest contents.
	Match(digest, plain string) bool
}
