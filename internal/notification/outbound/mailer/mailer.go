package mailer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/shared/render"
)

type client interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Mailer sends rendered notifications to a single recipient.
type Mailer struct {
	client client
	ins    instrument.Instrumentation
}

func New(c client, ins instrument.Instrumentation) *Mailer {
	return &Mailer{client: c, ins: ins}
}

func (m *Mailer) Send(ctx context.Context, to, subject string, body render.Output) error {
	ctx, span := m.ins.Tracer("notification.outbound.mailer").Start(ctx, "Send",
		trace.WithAttributes(attribute.Int("mail.html_bytes", len(body.HTML))))
	defer span.End()

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{to},
		Subject:  subject,
		TextBody: body.Text,
		HTMLBody: body.HTML,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
