package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/otpgate/internal/notification/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/shared/render"
)

type ConsumeOtpIssuedInput struct {
	EventID    int64  `validate:"required,gt=0"`
	Email      string `validate:"required,email"`
	Name       string `validate:"max=100"`
	TemplateID string `validate:"required"`
	Subject    string `validate:"required"`
	Data       map[string]any
}

// ConsumeOtpIssued delivers one issued code by mail. A returned error asks
// the broker to redeliver; malformed events and repeats are dropped.
func (s *Usecase) ConsumeOtpIssued(ctx context.Context, in ConsumeOtpIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOtpIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "event_id", in.EventID, "error", err)
		return nil
	}

	key := "otp_issued:" + strconv.FormatInt(in.EventID, 10)
	err := s.dedupe.Exec(ctx, key, func(ctx context.Context) error {
		return s.deliver(ctx, in)
	}, idempotency.WithCompletedTTL(s.dedupeTTL))

	switch {
	case errors.Is(err, idempotency.ErrCompleted), errors.Is(err, idempotency.ErrInProgress):
		slog.InfoContext(ctx, "otp issued event already handled", "event_id", in.EventID, "reason", err)
		return nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to deliver otp issued event", "event_id", in.EventID, "error", err)
		return err
	}

	return nil
}

func (s *Usecase) deliver(ctx context.Context, in ConsumeOtpIssuedInput) error {
	data := make(map[string]any, len(in.Data)+1)
	for k, v := range in.Data {
		data[k] = v
	}
	if _, ok := data["name"]; !ok {
		data["name"] = in.Name
	}

	body, err := s.renderer.Render(in.TemplateID, data)
	if errors.Is(err, render.ErrTemplateNotFound) {
		slog.WarnContext(ctx, "notification template not found", "event_id", in.EventID, "template_id", in.TemplateID)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to render notification", "event_id", in.EventID, "template_id", in.TemplateID, "error", err)
		return nil
	}

	logID := s.uid.Generate()
	err = s.repoDB.CreateDeliveryLog(ctx, entity.CreateDeliveryLog{
		ID:         logID,
		EventID:    in.EventID,
		Email:      in.Email,
		TemplateID: in.TemplateID,
		Channel:    entity.ChannelEmail,
		Status:     entity.DeliveryStatusQueued,
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "delivery log already exists for event", "event_id", in.EventID)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "event_id", in.EventID, "error", err)
		return err
	}

	mailErr := s.repoMail.Send(ctx, in.Email, in.Subject, body)
	if mailErr == nil {
		up := entity.UpdateDeliveryLog{ID: logID, Status: entity.DeliveryStatusSent}
		if err := s.repoDB.UpdateDeliveryLogStatus(ctx, up); err != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status sent", "log_id", logID, "error", err)
		}
		return nil
	}

	up := entity.UpdateDeliveryLog{
		ID:               logID,
		Status:           entity.DeliveryStatusFailed,
		ProviderResponse: map[string]any{"error": mailErr.Error()},
	}
	if err := s.repoDB.UpdateDeliveryLogStatus(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status failed", "log_id", logID, "error", err)
	}

	slog.ErrorContext(ctx, "failed to send otp email", "log_id", logID, "event_id", in.EventID, "error", mailErr)

	return nil
}
