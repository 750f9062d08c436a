package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type ResetIdentityInput struct {
	Email string `validate:"required,email"`
}

// ResetIdentity deletes every key of the identity, lifting locks early.
func (s *Usecase) ResetIdentity(ctx context.Context, in ResetIdentityInput) error {
	ctx, span := s.startSpan(ctx, "ResetIdentity")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, "otp.identity", "delete")
	if err != nil {
		return err
	}

	in.Email = entity.NormalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	n, err := s.store.Del(ctx, entity.KeysFor(in.Email).All()...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to reset otp identity", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp identity reset", "email", in.Email, "by", clm.Subject, "deleted_keys", n)
	s.record(ctx, "reset")

	return nil
}
