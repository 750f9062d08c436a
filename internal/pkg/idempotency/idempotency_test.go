package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, ""), mr
}

func TestStateTracker_ExecOnce(t *testing.T) {
	// Arrange
	tr, mr := newTracker(t)
	calls := 0
	fn := func(context.Context) error { calls++; return nil }

	// Act
	first := tr.Exec(context.Background(), "evt-1", fn, WithCompletedTTL(time.Hour))
	second := tr.Exec(context.Background(), "evt-1", fn)

	// Assert
	assert.NoError(t, first)
	assert.ErrorIs(t, second, ErrCompleted)
	assert.Equal(t, 1, calls)
	val, err := mr.Get("idempotency:evt-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", val)

	mr.FastForward(time.Hour + time.Second)
	assert.NoError(t, tr.Exec(context.Background(), "evt-1", fn))
	assert.Equal(t, 2, calls)
}

func TestStateTracker_FailureReleases(t *testing.T) {
	tr, mr := newTracker(t)
	errSend := errors.New("smtp down")

	err := tr.Exec(context.Background(), "evt-2", func(context.Context) error { return errSend })

	assert.ErrorIs(t, err, errSend)
	assert.False(t, mr.Exists("idempotency:evt-2"))
	assert.NoError(t, tr.Exec(context.Background(), "evt-2", func(context.Context) error { return nil }))
}

func TestStateTracker_InProgress(t *testing.T) {
	tr, mr := newTracker(t)
	require.NoError(t, mr.Set("idempotency:evt-3", "in_progress"))

	err := tr.Exec(context.Background(), "evt-3", func(context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrInProgress)
}

func TestStateTracker_BadState(t *testing.T) {
	tr, mr := newTracker(t)
	require.NoError(t, mr.Set("idempotency:evt-4", "weird"))

	_, err := tr.Acquire(context.Background(), "evt-4", time.Minute)

	assert.ErrorIs(t, err, ErrBadState)
}
