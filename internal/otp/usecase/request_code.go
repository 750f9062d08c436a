package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const msgSendFailed = "failed to send code, please try again"

type RequestCodeInput struct {
	Email   string `validate:"required,email"`
	Name    string `validate:"max=100"`
	Purpose string `validate:"required,otppurpose"`
}

// RequestCode runs admission, counting and issuance for one request.
func (s *Usecase) RequestCode(ctx context.Context, in RequestCodeInput) error {
	ctx, span := s.startSpan(ctx, "RequestCode")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	adm, err := s.AdmitOtpRequest(ctx, AdmitOtpRequestInput{Email: in.Email})
	if err != nil {
		return err
	}
	if !adm.Admitted {
		slog.WarnContext(ctx, "otp request denied", "email", in.Email, "block", string(adm.Block))
		return goerror.NewBusiness(adm.Reason, goerror.CodeTooManyRequest)
	}

	track, err := s.TrackOtpRequest(ctx, TrackOtpRequestInput{Email: in.Email})
	if err != nil {
		return err
	}
	if !track.Allowed {
		slog.WarnContext(ctx, "otp request throttled", "email", in.Email, "count", track.Count)
		return goerror.NewBusiness(s.policy.SpamLockedMessage(), goerror.CodeTooManyRequest)
	}

	out, err := s.IssueOtp(ctx, IssueOtpInput{Email: in.Email, DisplayName: in.Name, Purpose: in.Purpose})
	if err != nil {
		return err
	}
	if !out.Sent {
		return goerror.NewBusiness(msgSendFailed, goerror.CodeUnavailable)
	}

	return nil
}
