package kvstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client), mr
}

func TestRedis_GetSetTTL(t *testing.T) {
	// Arrange
	s, mr := newStore(t)
	ctx := context.Background()

	// Act
	require.NoError(t, s.Set(ctx, "otp:a@b.co", "digest", 5*time.Minute))
	val, err := s.Get(ctx, "otp:a@b.co")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "digest", val)

	ttl, err := s.TTL(ctx, "otp:a@b.co")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)

	mr.FastForward(5 * time.Minute)
	_, err = s.Get(ctx, "otp:a@b.co")
	assert.ErrorIs(t, err, ErrNotFound)

	ttl, err = s.TTL(ctx, "otp:a@b.co")
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestRedis_SetRejectsNonPositiveTTL(t *testing.T) {
	s, _ := newStore(t)

	assert.ErrorIs(t, s.Set(context.Background(), "k", "v", 0), ErrInvalidTTL)
	_, err := s.IncrWithExpiry(context.Background(), "k", -time.Second)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestRedis_DelExists(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, s.Set(ctx, "b", "1", time.Minute))

	n, err := s.Exists(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Del(ctx, "a", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Del(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedis_IncrWithExpiry_FixedWindow(t *testing.T) {
	// Arrange
	s, mr := newStore(t)
	ctx := context.Background()

	// Act
	first, err := s.IncrWithExpiry(ctx, "otp_request_count:a@b.co", time.Minute)
	require.NoError(t, err)
	mr.FastForward(40 * time.Second)
	second, err := s.IncrWithExpiry(ctx, "otp_request_count:a@b.co", time.Minute)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	// the second hit does not extend the window
	assert.Equal(t, 20*time.Second, mr.TTL("otp_request_count:a@b.co"))

	mr.FastForward(20 * time.Second)
	third, err := s.IncrWithExpiry(ctx, "otp_request_count:a@b.co", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), third)
}

func TestRedis_IncrWithExpiry_Concurrent(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, err := s.IncrWithExpiry(ctx, "counter", time.Minute)
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	val, err := mr.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, "20", val)
	assert.Equal(t, time.Minute, mr.TTL("counter"))
}

func TestRedis_Unavailable(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.Ping(context.Background()), ErrUnavailable)
}
