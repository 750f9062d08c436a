package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

func TestInspectIdentity(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	seedCode(t, f)
	require.NoError(t, f.mr.Set(f.keys.Attempts, "2"))
	require.NoError(t, f.mr.Set(f.keys.RequestCount, "1"))
	f.mr.SetTTL(f.keys.RequestCount, 40*time.Second)

	// Act
	out, err := f.uc.InspectIdentity(withRole("support"), InspectIdentityInput{Email: testEmail})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.StateFailing, out.State)
	assert.Equal(t, int64(2), out.Attempts)
	assert.Equal(t, int64(1), out.RequestCount)
	assert.Equal(t, KeyStatus{Present: true, TTL: 5 * time.Minute}, out.Keys["otp_value"])
	assert.Equal(t, KeyStatus{Present: true, TTL: 40 * time.Second}, out.Keys["request_count"])
	assert.Equal(t, KeyStatus{}, out.Keys["lock"])
	assert.Len(t, out.Keys, 6)
}

func TestInspectIdentity_Authorization(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		code goerror.Code
	}{
		{name: "Anonymous", ctx: context.Background(), code: goerror.CodeUnauthorized},
		{name: "UnknownRole", ctx: withRole("guest"), code: goerror.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, entity.DefaultPolicy())

			_, err := f.uc.InspectIdentity(tt.ctx, InspectIdentityInput{Email: testEmail})

			assertCode(t, err, tt.code, "")
		})
	}
}

func TestResetIdentity(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	for _, k := range f.keys.All() {
		require.NoError(t, f.mr.Set(k, "1"))
	}
	require.NoError(t, f.mr.Set("otp:someone@else.com", "x"))

	// Act
	err := f.uc.ResetIdentity(withRole("admin"), ResetIdentityInput{Email: testEmail})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"otp:someone@else.com"}, f.mr.Keys())
}

func TestResetIdentity_SupportCannotDelete(t *testing.T) {
	// Arrange
	f := newFixture(t, entity.DefaultPolicy())
	require.NoError(t, f.mr.Set(f.keys.Lock, "1"))

	// Act
	err := f.uc.ResetIdentity(withRole("support"), ResetIdentityInput{Email: testEmail})

	// Assert
	assertCode(t, err, goerror.CodeForbidden, "Account not allowed")
	assert.True(t, f.mr.Exists(f.keys.Lock))
}
