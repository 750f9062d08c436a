package notifier

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
)

type Mail struct {
	client   mailSender
	renderer renderer
	ins      instrument.Instrumentation
}

func NewMail(client mailSender, r renderer, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, renderer: r, ins: ins}
}

func (m *Mail) Send(ctx context.Context, n entity.Notification) (err error) {
	ctx, span := startSpan(ctx, m.ins, "Mail.Send")
	defer func() { endSpan(span, err) }()

	out, err := m.renderer.Render(n.TemplateID, n.Data)
	if err != nil {
		return err
	}

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{n.Address},
		Subject:  n.Subject,
		TextBody: out.Text,
		HTMLBody: out.HTML,
	}); err != nil {
		return fmt.Errorf("notifier: send mail: %w", err)
	}

	return nil
}
