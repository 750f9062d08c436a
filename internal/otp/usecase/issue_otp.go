package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type IssueOtpInput struct {
	Email       string `validate:"required,email"`
	DisplayName string `validate:"max=100"`
	Purpose     string `validate:"required,otppurpose"`
}

// IssueOtp stores a fresh code digest, starts the cooldown, drops stale
// attempts and sends the code. Rate limits are the caller's concern.
func (s *Usecase) IssueOtp(ctx context.Context, in IssueOtpInput) (entity.IssueOutcome, error) {
	ctx, span := s.startSpan(ctx, "IssueOtp")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return entity.IssueOutcome{}, goerror.NewInvalidInput(err)
	}

	purpose, err := entity.ParsePurpose(in.Purpose)
	if err != nil {
		return entity.IssueOutcome{}, goerror.NewInvalidInput(nil, "purpose", "purpose must be one of activation, password_reset")
	}

	code, err := s.newCode()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "email", in.Email, "error", err)
		return entity.IssueOutcome{}, goerror.NewServer(err)
	}

	keys := entity.KeysFor(in.Email)

	if err := s.store.Set(ctx, keys.Code, s.digester.Digest(code), s.policy.CodeTTL); err != nil {
		slog.ErrorContext(ctx, "failed to store otp code", "email", in.Email, "error", err)
		return entity.IssueOutcome{}, goerror.NewServer(err)
	}

	if err := s.store.Set(ctx, keys.Cooldown, "1", s.policy.CooldownTTL); err != nil {
		slog.ErrorContext(ctx, "failed to set otp cooldown", "email", in.Email, "error", err)
		return entity.IssueOutcome{}, goerror.NewServer(err)
	}

	if _, err := s.store.Del(ctx, keys.Attempts); err != nil {
		slog.ErrorContext(ctx, "failed to clear stale otp attempts", "email", in.Email, "error", err)
		return entity.IssueOutcome{}, goerror.NewServer(err)
	}

	sendErr := s.notifier.Send(ctx, entity.Notification{
		Address:    in.Email,
		Name:       in.DisplayName,
		Subject:    purpose.Subject(),
		TemplateID: purpose.TemplateID(),
		Data: map[string]any{
			"name":               in.DisplayName,
			"otp":                code,
			"expires_in_minutes": int64(s.policy.CodeTTL.Minutes()),
			"purpose":            purpose.String(),
		},
	})
	if sendErr == nil {
		s.record(ctx, "sent")
		return entity.IssueOutcome{Sent: true}, nil
	}

	slog.ErrorContext(ctx, "failed to send otp notification", "email", in.Email, "purpose", purpose.String(), "error", sendErr)
	span.RecordError(sendErr)
	s.record(ctx, "send_failed")

	if !s.policy.RollbackOnSendFailure {
		return entity.IssueOutcome{}, nil
	}

	// request_count stays so failed sends still count toward the spam-lock.
	if _, err := s.store.Del(ctx, keys.Code, keys.Cooldown); err != nil {
		slog.ErrorContext(ctx, "failed to roll back otp issuance", "email", in.Email, "error", err)
		return entity.IssueOutcome{}, goerror.NewServer(err)
	}

	return entity.IssueOutcome{RolledBack: true}, nil
}
