package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	from string
	to   []string
	raw  string
}

func newTestSMTP(t *testing.T, sendErr error) (*SMTP, *captured) {
	t.Helper()

	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025, From: "no-reply@otpgate.local"})
	require.NoError(t, err)

	c := &captured{}
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.from, c.to, c.raw = addr, from, to, string(msg)
		return sendErr
	}

	return s, c
}

func TestSMTP_SendMultipart(t *testing.T) {
	// Arrange
	s, c := newTestSMTP(t, nil)

	// Act
	err := s.Send(context.Background(), Message{
		To:       []string{"ann@example.com"},
		Bcc:      []string{"audit@example.com"},
		Subject:  "Verify your email",
		TextBody: "code 123456",
		HTMLBody: "<b>123456</b>",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "localhost:1025", c.addr)
	assert.Equal(t, "no-reply@otpgate.local", c.from)
	assert.Equal(t, []string{"ann@example.com", "audit@example.com"}, c.to)
	assert.Contains(t, c.raw, "Subject: Verify your email\r\n")
	assert.Contains(t, c.raw, "multipart/alternative; boundary=")
	assert.Contains(t, c.raw, "<b>123456</b>")
	assert.NotContains(t, c.raw, "audit@example.com")
}

func TestSMTP_SendErrors(t *testing.T) {
	errDial := errors.New("dial tcp: refused")
	s, _ := newTestSMTP(t, errDial)

	assert.ErrorIs(t, s.Send(context.Background(), Message{Subject: "x"}), ErrSMTPNoRecipients)
	assert.ErrorIs(t, s.Send(context.Background(), Message{To: []string{"a@b.co"}, TextBody: "x"}), errDial)

	s.defaultFrom = ""
	assert.ErrorIs(t, s.Send(context.Background(), Message{To: []string{"a@b.co"}}), ErrSMTPNoSender)
}

func TestNewSMTP_RequiresHost(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{})

	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)
}
