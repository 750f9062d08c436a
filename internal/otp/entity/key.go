package entity

import "strings"

// Redis key prefixes, one per piece of identity state.
const (
	prefixLock         = "otp_lock:"
	prefixSpamLock     = "otp_spam_lock:"
	prefixCooldown     = "otp_cooldown:"
	prefixRequestCount = "otp_request_count:"
	prefixCode         = "otp:"
	prefixAttempts     = "otp_attempts:"
)

// Keys names every store key that belongs to one identity.
type Keys struct {
	Lock         string
	SpamLock     string
	Cooldown     string
	RequestCount string
	Code         string
	Attempts     string
}

// NormalizeEmail lower-cases and trims an identity.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// KeysFor builds the keys of a normalized identity.
func KeysFor(email string) Keys {
	return Keys{
		Lock:         prefixLock + email,
		SpamLock:     prefixSpamLock + email,
		Cooldown:     prefixCooldown + email,
		RequestCount: prefixRequestCount + email,
		Code:         prefixCode + email,
		Attempts:     prefixAttempts + email,
	}
}

// All returns the six keys in a fixed order.
func (k Keys) All() []string {
	return []string{k.Lock, k.SpamLock, k.Cooldown, k.RequestCount, k.Code, k.Attempts}
}
