package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
)

// SNS publishes the plain text rendering to a topic. Subscribers filter on
// the email and template_id attributes.
type SNS struct {
	client   topicPublisher
	renderer renderer
	ins      instrument.Instrumentation
}

func NewSNS(client topicPublisher, r renderer, ins instrument.Instrumentation) *SNS {
	return &SNS{client: client, renderer: r, ins: ins}
}

func (s *SNS) Send(ctx context.Context, n entity.Notification) (err error) {
	ctx, span := startSpan(ctx, s.ins, "SNS.Send")
	defer func() { endSpan(span, err) }()

	out, err := s.renderer.Render(n.TemplateID, n.Data)
	if err != nil {
		return err
	}

	id, err := s.client.Publish(ctx, n.Subject, out.Text, map[string]string{
		"email":       n.Address,
		"template_id": n.TemplateID,
	})
	if err != nil {
		return fmt.Errorf("notifier: publish sns: %w", err)
	}

	slog.DebugContext(ctx, "otp notification published to sns", "message_id", id, "template_id", n.TemplateID)

	return nil
}
