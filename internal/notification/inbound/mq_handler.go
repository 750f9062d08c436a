package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otpgate/internal/notification/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

// ensureCorrelationID prefers the broker header, then the id carried in the
// body for brokers without headers, then a fresh one.
func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message, fromBody string) context.Context {
	if cid := msg.Header(event.HeaderCorrelationID); cid != "" {
		return instrument.SetCorrelationID(ctx, cid)
	}
	if fromBody != "" {
		return instrument.SetCorrelationID(ctx, fromBody)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OtpIssuedNotification(ctx context.Context, msg messaging.Message) error {
	body := msg.Body()

	var payload event.OtpIssuedMessage
	parseErr := json.Unmarshal(body, &payload)

	ctx = h.ensureCorrelationID(ctx, msg, payload.CorrelationID)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OtpIssuedNotification",
		trace.WithAttributes(attribute.Int("messaging.attempts", msg.Attempts())))
	defer span.End()

	// body carries the code; only the envelope is logged
	slog.InfoContext(ctx, "consume: otp issued notification", "msg_id", msg.ID(), "topic", msg.Topic())

	if parseErr != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued notification", "msg_id", msg.ID(), "error", parseErr)
		return nil
	}

	if err := h.uc.ConsumeOtpIssued(ctx, usecase.ConsumeOtpIssuedInput{
		EventID:    payload.EventID,
		Email:      payload.Email,
		Name:       payload.Name,
		TemplateID: payload.TemplateID,
		Subject:    payload.Subject,
		Data:       payload.Data,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp issued", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
