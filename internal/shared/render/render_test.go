package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	// Arrange
	r, err := New(map[string]any{"company_name": "OTPGate", "support_email": "support@otpgate.dev"})
	require.NoError(t, err)

	// Act
	out, err := r.Render("forgot-password-user-mail", map[string]any{
		"name":               "<Ann>",
		"otp":                "123456",
		"expires_in_minutes": 5,
	})

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.HTML, "123456")
	assert.Contains(t, out.HTML, "&lt;Ann&gt;")
	assert.Contains(t, out.Text, "Hi <Ann>,")
	assert.Contains(t, out.Text, "expires in 5 minutes")
	assert.Contains(t, out.Text, "OTPGate - support@otpgate.dev")
}

func TestRenderer_MissingName(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	out, err := r.Render("user-activation-email", map[string]any{"otp": "654321"})

	require.NoError(t, err)
	assert.Contains(t, out.Text, "Hi there,")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	_, err = r.Render("welcome", nil)

	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
