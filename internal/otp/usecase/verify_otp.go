package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/kvstore"
)

// VerifyOtpInput accepts any non-empty code; a malformed one is a mismatch
// like any other. ConfirmCode enforces the six-digit format at the edge.
type VerifyOtpInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required"`
}

func (s *Usecase) VerifyOtp(ctx context.Context, in VerifyOtpInput) (entity.VerifyOutcome, error) {
	ctx, span := s.startSpan(ctx, "VerifyOtp")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return entity.VerifyOutcome{}, goerror.NewInvalidInput(err)
	}

	keys := entity.KeysFor(in.Email)

	digest, err := s.store.Get(ctx, keys.Code)
	if errors.Is(err, kvstore.ErrNotFound) {
		s.record(ctx, "invalid")
		return entity.VerifyOutcome{Reason: entity.MsgNoActiveCode}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to read otp code", "email", in.Email, "error", err)
		return entity.VerifyOutcome{}, goerror.NewServer(err)
	}

	if s.digester.Match(digest, in.Code) {
		return s.consume(ctx, in.Email, keys)
	}

	n, err := s.store.IncrWithExpiry(ctx, keys.Attempts, s.policy.CodeTTL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to increment otp attempts", "email", in.Email, "error", err)
		return entity.VerifyOutcome{}, goerror.NewServer(err)
	}

	before := entity.Derive(false, true, n-1)
	next, err := entity.Transition(before, entity.EventVerifyMismatch, s.policy.MaxFailures)
	if err != nil {
		slog.ErrorContext(ctx, "unexpected otp transition", "email", in.Email, "state", before.State.String(), "error", err)
		return entity.VerifyOutcome{}, goerror.NewServer(err)
	}

	if next.State != entity.StateLockedOut {
		left := s.policy.MaxFailures - next.Failures
		slog.WarnContext(ctx, "incorrect otp code submitted", "email", in.Email, "attempts", next.Failures)
		s.record(ctx, "invalid")
		return entity.VerifyOutcome{Reason: entity.IncorrectCodeMessage(left), TriesLeft: left}, nil
	}

	if err := s.store.Set(ctx, keys.Lock, "1", s.policy.LockTTL); err != nil {
		slog.ErrorContext(ctx, "failed to set otp lock", "email", in.Email, "error", err)
		return entity.VerifyOutcome{}, goerror.NewServer(err)
	}

	if _, err := s.store.Del(ctx, keys.Code, keys.Attempts); err != nil {
		slog.ErrorContext(ctx, "failed to clear otp state after lock", "email", in.Email, "error", err)
		return entity.VerifyOutcome{}, goerror.NewServer(err)
	}

	slog.WarnContext(ctx, "otp verification locked out", "email", in.Email, "attempts", next.Failures)
	s.record(ctx, "locked_out")

	return entity.VerifyOutcome{Result: entity.VerifyResultLockedOut}, nil
}

// consume deletes the code. A delete that removed nothing means a
// concurrent verifier consumed it first.
func (s *Usecase) consume(ctx context.Context, email string, keys entity.Keys) (entity.VerifyOutcome, error) {
	n, err := s.store.Del(ctx, keys.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume otp code", "email", email, "error", err)
		return entity.VerifyOutcome{}, goerror.NewServer(err)
	}

	if n == 0 {
		s.record(ctx, "invalid")
		return entity.VerifyOutcome{Reason: entity.MsgNoActiveCode}, nil
	}

	if _, err := s.store.Del(ctx, keys.Attempts); err != nil {
		slog.ErrorContext(ctx, "failed to clear otp attempts", "email", email, "error", err)
		return entity.VerifyOutcome{}, goerror.NewServer(err)
	}

	s.record(ctx, "verified")

	return entity.VerifyOutcome{Result: entity.VerifyResultVerified}, nil
}
