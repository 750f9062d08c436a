package entity

import "errors"

var (
	ErrNoActiveCode = errors.New("otp: no active code")
	ErrLocked       = errors.New("otp: identity is locked")
	ErrEventUnknown = errors.New("otp: event is unknown")
)

// State is the OTP sub-lifecycle of one identity.
type State int

const (
	StateNoCode State = iota
	StateIssued
	StateFailing
	StateVerified
	StateLockedOut
)

func (s State) String() string {
	switch s {
	case StateIssued:
		return "issued"
	case StateFailing:
		return "failing"
	case StateVerified:
		return "verified"
	case StateLockedOut:
		return "locked_out"
	default:
		return "no_code"
	}
}

type Event int

const (
	// EventIssue is a code being stored for the identity.
	EventIssue Event = iota
	EventVerifyMatch
	EventVerifyMismatch
	// EventExpire is the code TTL elapsing.
	EventExpire
	// EventUnlock is the lock TTL elapsing.
	EventUnlock
	// EventReset is an operator clearing every key.
	EventReset
)

// Snapshot is a state with its failure count.
type Snapshot struct {
	State    State
	Failures int64
}

// Transition applies ev to s. Rejected pairs return s unchanged with
// ErrNoActiveCode or ErrLocked.
func Transition(s Snapshot, ev Event, maxFailures int64) (Snapshot, error) {
	if ev == EventReset {
		return Snapshot{State: StateNoCode}, nil
	}

	switch s.State {
	case StateLockedOut:
		switch ev {
		case EventUnlock:
			return Snapshot{State: StateNoCode}, nil
		case EventExpire:
			return s, nil
		case EventIssue, EventVerifyMatch, EventVerifyMismatch:
			return s, ErrLocked
		}

	case StateNoCode, StateVerified:
		switch ev {
		case EventIssue:
			return Snapshot{State: StateIssued}, nil
		case EventExpire, EventUnlock:
			return Snapshot{State: StateNoCode}, nil
		case EventVerifyMatch, EventVerifyMismatch:
			return s, ErrNoActiveCode
		}

	case StateIssued, StateFailing:
		switch ev {
		case EventIssue:
			return Snapshot{State: StateIssued}, nil
		case EventVerifyMatch:
			return Snapshot{State: StateVerified}, nil
		case EventVerifyMismatch:
			n := s.Failures + 1
			if n >= maxFailures {
				return Snapshot{State: StateLockedOut, Failures: n}, nil
			}
			return Snapshot{State: StateFailing, Failures: n}, nil
		case EventExpire:
			return Snapshot{State: StateNoCode}, nil
		case EventUnlock:
			return s, nil
		}
	}

	return s, ErrEventUnknown
}

// Response is how a state answers an incoming request or verification.
type Response int

const (
	ResponseProceed Response = iota
	ResponseRejectNoCode
	ResponseRejectLocked
)

// RequestResponse answers a new code request. Spam-lock and cooldown are
// checked separately by the gate.
func (s State) RequestResponse() Response {
	if s == StateLockedOut {
		return ResponseRejectLocked
	}
	return ResponseProceed
}

// VerifyResponse answers a submitted code.
func (s State) VerifyResponse() Response {
	switch s {
	case StateIssued, StateFailing:
		return ResponseProceed
	case StateLockedOut:
		return ResponseRejectLocked
	default:
		return ResponseRejectNoCode
	}
}

// Derive reconstructs a snapshot from key presence. Verified is never
// observable because success deletes the code.
func Derive(locked, hasCode bool, attempts int64) Snapshot {
	switch {
	case locked:
		return Snapshot{State: StateLockedOut, Failures: attempts}
	case !hasCode:
		return Snapshot{State: StateNoCode}
	case attempts > 0:
		return Snapshot{State: StateFailing, Failures: attempts}
	default:
		return Snapshot{State: StateIssued}
	}
}
