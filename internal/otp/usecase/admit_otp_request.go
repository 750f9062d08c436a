package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type AdmitOtpRequestInput struct {
	Email string `validate:"required,email"`
}

// AdmitOtpRequest checks lock, spam-lock and cooldown in that order. It
// only reads.
func (s *Usecase) AdmitOtpRequest(ctx context.Context, in AdmitOtpRequestInput) (entity.Admission, error) {
	ctx, span := s.startSpan(ctx, "AdmitOtpRequest")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return entity.Admission{}, goerror.NewInvalidInput(err)
	}

	keys := entity.KeysFor(in.Email)
	checks := []struct {
		key    string
		block  entity.Block
		reason string
	}{
		{key: keys.Lock, block: entity.BlockLock, reason: s.policy.LockedMessage()},
		{key: keys.SpamLock, block: entity.BlockSpamLock, reason: s.policy.SpamLockedMessage()},
		{key: keys.Cooldown, block: entity.BlockCooldown, reason: s.policy.CooldownMessage()},
	}

	for _, c := range checks {
		n, err := s.store.Exists(ctx, c.key)
		if err != nil {
			slog.ErrorContext(ctx, "failed to check otp block", "email", in.Email, "block", string(c.block), "error", err)
			return entity.Admission{}, goerror.NewServer(err)
		}

		if n > 0 {
			s.record(ctx, "denied_"+string(c.block))
			return entity.Admission{Block: c.block, Reason: c.reason}, nil
		}
	}

	s.record(ctx, "admitted")

	return entity.Admission{Admitted: true}, nil
}
