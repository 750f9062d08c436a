package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type TrackOtpRequestInput struct {
	Email string `validate:"required,email"`
}

// TrackOtpRequest counts a request in the current window. The call whose
// count first exceeds the limit sets the spam-lock; later calls in the same
// window are throttled without touching it.
func (s *Usecase) TrackOtpRequest(ctx context.Context, in TrackOtpRequestInput) (entity.TrackOutcome, error) {
	ctx, span := s.startSpan(ctx, "TrackOtpRequest")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return entity.TrackOutcome{}, goerror.NewInvalidInput(err)
	}

	keys := entity.KeysFor(in.Email)

	n, err := s.store.IncrWithExpiry(ctx, keys.RequestCount, s.policy.RequestWindow)
	if err != nil {
		slog.ErrorContext(ctx, "failed to increment otp request count", "email", in.Email, "error", err)
		return entity.TrackOutcome{}, goerror.NewServer(err)
	}

	if n <= s.policy.RequestLimit {
		s.record(ctx, "allowed")
		return entity.TrackOutcome{Allowed: true, Count: n}, nil
	}

	if n > s.policy.RequestLimit+1 {
		s.record(ctx, "throttled")
		return entity.TrackOutcome{Count: n}, nil
	}

	if err := s.store.Set(ctx, keys.SpamLock, "1", s.policy.SpamLockTTL); err != nil {
		slog.ErrorContext(ctx, "failed to set otp spam lock", "email", in.Email, "error", err)
		return entity.TrackOutcome{}, goerror.NewServer(err)
	}

	slog.WarnContext(ctx, "otp requests exceeded window limit, spam lock set", "email", in.Email, "count", n)
	s.record(ctx, "escalated")

	return entity.TrackOutcome{Escalated: true, Count: n}, nil
}
