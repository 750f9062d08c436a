package entity

import "errors"

var ErrPurposeUnknown = errors.New("otp: purpose is unknown")

// Purpose selects the flow a code is issued for.
type Purpose string

const (
	PurposeActivation    Purpose = "activation"
	PurposePasswordReset Purpose = "password_reset"
)

const (
	TemplateActivation    = "user-activation-email"
	TemplatePasswordReset = "forgot-password-user-mail"
)

func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case PurposeActivation, PurposePasswordReset:
		return Purpose(s), nil
	default:
		return "", ErrPurposeUnknown
	}
}

func (p Purpose) String() string { return string(p) }

// TemplateID names the notification template of the purpose.
func (p Purpose) TemplateID() string {
	if p == PurposePasswordReset {
		return TemplatePasswordReset
	}
	return TemplateActivation
}

func (p Purpose) Subject() string {
	if p == PurposePasswordReset {
		return "Reset your password"
	}
	return "Verify your email"
}
