package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

func TestAdmitOtpRequest(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		want  entity.Admission
	}{
		{
			name:  "Fresh",
			setup: func(*fixture) {},
			want:  entity.Admission{Admitted: true},
		},
		{
			name:  "Locked",
			setup: func(f *fixture) { _ = f.mr.Set(f.keys.Lock, "1") },
			want:  entity.Admission{Block: entity.BlockLock, Reason: "locked, retry after 30 minutes"},
		},
		{
			name:  "SpamLocked",
			setup: func(f *fixture) { _ = f.mr.Set(f.keys.SpamLock, "1") },
			want:  entity.Admission{Block: entity.BlockSpamLock, Reason: "too many requests, retry after 1 hour"},
		},
		{
			name:  "CoolingDown",
			setup: func(f *fixture) { _ = f.mr.Set(f.keys.Cooldown, "1") },
			want:  entity.Admission{Block: entity.BlockCooldown, Reason: "retry after 1 minute"},
		},
		{
			name: "LockWinsOverOthers",
			setup: func(f *fixture) {
				_ = f.mr.Set(f.keys.Cooldown, "1")
				_ = f.mr.Set(f.keys.SpamLock, "1")
				_ = f.mr.Set(f.keys.Lock, "1")
			},
			want: entity.Admission{Block: entity.BlockLock, Reason: "locked, retry after 30 minutes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, entity.DefaultPolicy())
			tt.setup(f)
			before := f.mr.Keys()

			// Act
			first, err1 := f.uc.AdmitOtpRequest(context.Background(), AdmitOtpRequestInput{Email: " Ann@Example.com "})
			second, err2 := f.uc.AdmitOtpRequest(context.Background(), AdmitOtpRequestInput{Email: testEmail})

			// Assert
			require.NoError(t, err1)
			require.NoError(t, err2)
			assert.Equal(t, tt.want, first)
			assert.Equal(t, first, second)
			assert.Equal(t, before, f.mr.Keys())
		})
	}
}

func TestAdmitOtpRequest_InvalidEmail(t *testing.T) {
	f := newFixture(t, entity.DefaultPolicy())

	_, err := f.uc.AdmitOtpRequest(context.Background(), AdmitOtpRequestInput{Email: "not-an-email"})

	assertCode(t, err, goerror.CodeInvalidInput, "")
}

func TestAdmitOtpRequest_StoreFault(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	f.mr.SetError("ERR store down")

	// Act
	_, err := f.uc.AdmitOtpRequest(context.Background(), AdmitOtpRequestInput{Email: testEmail})

	// Assert
	assertCode(t, err, goerror.CodeInternal, "Internal server error")
}

func TestAdmitOtpRequest_CooldownAfterIssue(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	ctx := context.Background()

	_, err := f.uc.IssueOtp(ctx, IssueOtpInput{Email: testEmail, DisplayName: "Ann", Purpose: "activation"})
	require.NoError(t, err)

	// Act
	during, err := f.uc.AdmitOtpRequest(ctx, AdmitOtpRequestInput{Email: testEmail})
	require.NoError(t, err)
	f.mr.FastForward(59 * time.Second)
	stillDuring, err := f.uc.AdmitOtpRequest(ctx, AdmitOtpRequestInput{Email: testEmail})
	require.NoError(t, err)
	f.mr.FastForward(time.Second)
	after, err := f.uc.AdmitOtpRequest(ctx, AdmitOtpRequestInput{Email: testEmail})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, entity.BlockCooldown, during.Block)
	assert.Equal(t, entity.BlockCooldown, stillDuring.Block)
	assert.True(t, after.Admitted)
}

func TestTrackOtpRequest_ThirdCallEscalates(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	ctx := context.Background()
	in := TrackOtpRequestInput{Email: testEmail}

	// Act
	first, err := f.uc.TrackOtpRequest(ctx, in)
	require.NoError(t, err)
	second, err := f.uc.TrackOtpRequest(ctx, in)
	require.NoError(t, err)
	third, err := f.uc.TrackOtpRequest(ctx, in)
	require.NoError(t, err)
	fourth, err := f.uc.TrackOtpRequest(ctx, in)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, entity.TrackOutcome{Allowed: true, Count: 1}, first)
	assert.Equal(t, entity.TrackOutcome{Allowed: true, Count: 2}, second)
	assert.Equal(t, entity.TrackOutcome{Escalated: true, Count: 3}, third)
	assert.Equal(t, entity.TrackOutcome{Count: 4}, fourth)

	assert.Equal(t, time.Hour, f.mr.TTL(f.keys.SpamLock))
	assert.Equal(t, time.Minute, f.mr.TTL(f.keys.RequestCount))

	adm, err := f.uc.AdmitOtpRequest(ctx, AdmitOtpRequestInput{Email: testEmail})
	require.NoError(t, err)
	assert.Equal(t, entity.BlockSpamLock, adm.Block)

	f.mr.FastForward(59 * time.Minute)
	adm, err = f.uc.AdmitOtpRequest(ctx, AdmitOtpRequestInput{Email: testEmail})
	require.NoError(t, err)
	assert.Equal(t, entity.BlockSpamLock, adm.Block)

	f.mr.FastForward(time.Minute)
	adm, err = f.uc.AdmitOtpRequest(ctx, AdmitOtpRequestInput{Email: testEmail})
	require.NoError(t, err)
	assert.True(t, adm.Admitted)
}

func TestTrackOtpRequest_EscalationKeepsLock(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	require.NoError(t, f.mr.Set(f.keys.Lock, "1"))
	f.mr.SetTTL(f.keys.Lock, 30*time.Minute)
	ctx := context.Background()
	in := TrackOtpRequestInput{Email: testEmail}

	// Act
	var last entity.TrackOutcome
	for range 3 {
		out, err := f.uc.TrackOtpRequest(ctx, in)
		require.NoError(t, err)
		last = out
	}

	// Assert
	assert.True(t, last.Escalated)
	assert.Equal(t, 30*time.Minute, f.mr.TTL(f.keys.Lock))
	assert.Equal(t, time.Hour, f.mr.TTL(f.keys.SpamLock))

	f.mr.FastForward(30 * time.Minute)
	assert.False(t, f.mr.Exists(f.keys.Lock))
	assert.True(t, f.mr.Exists(f.keys.SpamLock))
}

func TestTrackOtpRequest_WindowResets(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	ctx := context.Background()
	in := TrackOtpRequestInput{Email: testEmail}

	_, err := f.uc.TrackOtpRequest(ctx, in)
	require.NoError(t, err)
	_, err = f.uc.TrackOtpRequest(ctx, in)
	require.NoError(t, err)

	// Act
	f.mr.FastForward(time.Minute)
	out, err := f.uc.TrackOtpRequest(ctx, in)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.TrackOutcome{Allowed: true, Count: 1}, out)
	assert.False(t, f.mr.Exists(f.keys.SpamLock))
}

func TestTrackOtpRequest_Concurrent(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	const n = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		allowed   int
		escalated int
	)

	// Act
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.uc.TrackOtpRequest(context.Background(), TrackOtpRequestInput{Email: testEmail})
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			if out.Allowed {
				allowed++
			}
			if out.Escalated {
				escalated++
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 2, allowed)
	assert.Equal(t, 1, escalated)
	count, err := f.mr.Get(f.keys.RequestCount)
	require.NoError(t, err)
	assert.Equal(t, "20", count)
}
