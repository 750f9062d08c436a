package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrEmptySecret is returned when the HMAC key is empty.
var ErrEmptySecret = errors.New("hash: hmac secret is required")

// HMACSHA256 is a Digester keyed with a server-side secret.
type HMACSHA256 struct {
	secret []byte
}

func NewHMACSHA256(secret string) (*HMACSHA256, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &HMACSHA256{secret: []byte(secret)}, nil
}

func (s *HMACSHA256) Digest(plain string) string {
	return hex.EncodeToString(s.sum(plain))
}

func (s *HMACSHA256) Match(digest, plain string) bool {
	raw, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}

	return hmac.Equal(raw, s.sum(plain))
}

func (s *HMACSHA256) sum(plain string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(plain))
	return mac.Sum(nil)
}
