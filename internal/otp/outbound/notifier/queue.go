package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
)

// Queue publishes an otp_issued event. A successful publish counts as sent;
// delivery failures past the broker are recorded by the consumer.
type Queue struct {
	client messaging.Publisher
	uid    uid.NumberID
	ins    instrument.Instrumentation
	now    func() time.Time
}

func NewQueue(client messaging.Publisher, id uid.NumberID, ins instrument.Instrumentation) *Queue {
	return &Queue{client: client, uid: id, ins: ins, now: time.Now}
}

func (q *Queue) Send(ctx context.Context, n entity.Notification) (err error) {
	ctx, span := startSpan(ctx, q.ins, "Queue.Send")
	defer func() { endSpan(span, err) }()

	cID := instrument.GetCorrelationID(ctx)

	body, err := json.Marshal(event.OtpIssuedMessage{
		EventID:       q.uid.Generate(),
		Email:         n.Address,
		Name:          n.Name,
		TemplateID:    n.TemplateID,
		Subject:       n.Subject,
		Data:          n.Data,
		CorrelationID: cID,
		OccurredAt:    q.now().UTC(),
	})
	if err != nil {
		return err
	}

	if _, err := q.client.Publish(ctx, event.OtpIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(n.Address),
		Headers: map[string]string{event.HeaderCorrelationID: cID},
	}); err != nil {
		return fmt.Errorf("notifier: publish %s: %w", event.OtpIssuedDestination, err)
	}

	return nil
}
