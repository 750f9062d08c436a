package entity

import (
	"fmt"
	"time"
)

// Policy holds every threshold and TTL of the gate.
type Policy struct {
	LockTTL               time.Duration
	SpamLockTTL           time.Duration
	CooldownTTL           time.Duration
	RequestWindow         time.Duration
	RequestLimit          int64
	CodeTTL               time.Duration
	MaxFailures           int64
	RollbackOnSendFailure bool
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		LockTTL:               30 * time.Minute,
		SpamLockTTL:           time.Hour,
		CooldownTTL:           time.Minute,
		RequestWindow:         time.Minute,
		RequestLimit:          2,
		CodeTTL:               5 * time.Minute,
		MaxFailures:           3,
		RollbackOnSendFailure: true,
	}
}

// WithDefaults replaces zero or negative values with the defaults.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()

	if p.LockTTL <= 0 {
		p.LockTTL = d.LockTTL
	}
	if p.SpamLockTTL <= 0 {
		p.SpamLockTTL = d.SpamLockTTL
	}
	if p.CooldownTTL <= 0 {
		p.CooldownTTL = d.CooldownTTL
	}
	if p.RequestWindow <= 0 {
		p.RequestWindow = d.RequestWindow
	}
	if p.RequestLimit <= 0 {
		p.RequestLimit = d.RequestLimit
	}
	if p.CodeTTL <= 0 {
		p.CodeTTL = d.CodeTTL
	}
	if p.MaxFailures <= 0 {
		p.MaxFailures = d.MaxFailures
	}

	return p
}

const MsgNoActiveCode = "no active code / expired"

func (p Policy) LockedMessage() string {
	return "locked, retry after " + HumanDuration(p.LockTTL)
}

func (p Policy) SpamLockedMessage() string {
	return "too many requests, retry after " + HumanDuration(p.SpamLockTTL)
}

func (p Policy) CooldownMessage() string {
	return "retry after " + HumanDuration(p.CooldownTTL)
}

func (p Policy) LockedOutMessage() string {
	return "too many failed attempts, locked, retry after " + HumanDuration(p.LockTTL)
}

func IncorrectCodeMessage(triesLeft int64) string {
	return fmt.Sprintf("incorrect code, %d tries left", triesLeft)
}

// HumanDuration renders whole hours or minutes ("1 hour", "30 minutes"),
// falling back to seconds.
func HumanDuration(d time.Duration) string {
	unit, n := "second", int64(d/time.Second)
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		unit, n = "hour", int64(d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		unit, n = "minute", int64(d/time.Minute)
	}

	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
