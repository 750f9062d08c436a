package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type (
	ConfirmCodeInput struct {
		Email string `validate:"required,email"`
		Code  string `validate:"required,otpcode"`
	}

	ConfirmCodeOutput struct {
		Email string
	}
)

// ConfirmCode rejects locked identities before any code comparison, then
// verifies the submitted code.
func (s *Usecase) ConfirmCode(ctx context.Context, in ConfirmCodeInput) (*ConfirmCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "ConfirmCode")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	locked, err := s.store.Exists(ctx, entity.KeysFor(in.Email).Lock)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check otp lock", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}
	if locked > 0 {
		slog.WarnContext(ctx, "otp confirmation on locked identity", "email", in.Email)
		return nil, goerror.NewBusiness(s.policy.LockedMessage(), goerror.CodeTooManyRequest)
	}

	out, err := s.VerifyOtp(ctx, VerifyOtpInput(in))
	if err != nil {
		return nil, err
	}

	switch out.Result {
	case entity.VerifyResultVerified:
		return &ConfirmCodeOutput{Email: in.Email}, nil
	case entity.VerifyResultLockedOut:
		return nil, goerror.NewBusiness(s.policy.LockedOutMessage(), goerror.CodeTooManyRequest)
	default:
		return nil, goerror.NewBusiness(out.Reason, goerror.CodeInvalidInput)
	}
}
