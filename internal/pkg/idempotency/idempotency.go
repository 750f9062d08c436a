// Package idempotency guards handlers that may see the same message twice.
//
// A key moves from absent to in_progress (SET NX) to completed. A failed run
// releases the key so a redelivery can try again.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInProgress = errors.New("idempotency: operation already in progress")
	ErrCompleted  = errors.New("idempotency: operation already completed")
	ErrBadState   = errors.New("idempotency: unknown state")
)

// State of a tracked key.
type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Idempotency runs fn at most once per key until the key expires.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	defaultLockDuration = time.Minute
	defaultDoneTTL      = 24 * time.Hour
)

type execOptions struct {
	lock time.Duration
	done time.Duration
}

// Option customises Exec.
type Option func(*execOptions)

// WithLockDuration bounds how long an in-progress marker survives a crashed worker.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) {
		if d > 0 {
			o.lock = d
		}
	}
}

// WithCompletedTTL sets how long a completed key blocks duplicates.
func WithCompletedTTL(d time.Duration) Option {
	return func(o *execOptions) {
		if d > 0 {
			o.done = d
		}
	}
}

// StateTracker is a Redis-backed Idempotency.
type StateTracker struct {
	client redis.UniversalClient
	prefix string
}

func New(client redis.UniversalClient, prefix string) *StateTracker {
	if prefix == "" {
		prefix = "idempotency:"
	}

	return &StateTracker{client: client, prefix: prefix}
}

// Acquire marks key in progress if it is free and otherwise reports its state.
func (s *StateTracker) Acquire(ctx context.Context, key string, lock time.Duration) (State, error) {
	fk := s.prefix + key

	ok, err := s.client.SetNX(ctx, fk, string(StateInProgress), lock).Result()
	if err != nil {
		return "", fmt.Errorf("acquire %s: %w", key, err)
	}
	if ok {
		return StateNone, nil
	}

	val, err := s.client.Get(ctx, fk).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return s.Acquire(ctx, key, lock)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}

	switch st := State(val); st {
	case StateInProgress, StateCompleted:
		return st, nil
	default:
		return "", ErrBadState
	}
}

func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := execOptions{lock: defaultLockDuration, done: defaultDoneTTL}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := s.Acquire(ctx, key, o.lock)
	if err != nil {
		return err
	}

	switch st {
	case StateInProgress:
		return ErrInProgress
	case StateCompleted:
		return ErrCompleted
	}

	if err := fn(ctx); err != nil {
		if delErr := s.client.Del(ctx, s.prefix+key).Err(); delErr != nil {
			return errors.Join(err, fmt.Errorf("release %s: %w", key, delErr))
		}
		return err
	}

	if err := s.client.Set(ctx, s.prefix+key, string(StateCompleted), o.done).Err(); err != nil {
		return fmt.Errorf("complete %s: %w", key, err)
	}

	return nil
}
