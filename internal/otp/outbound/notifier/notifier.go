// Package notifier delivers issued codes. The mail driver sends directly,
// the queue driver hands the code to the notification module through the
// broker and the sns driver publishes to an AWS SNS topic.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/render"
)

var (
	ErrUnknownDriver  = errors.New("notifier: unknown driver")
	ErrMissingBackend = errors.New("notifier: backend for driver is not configured")
)

const (
	DriverMail  = "mail"
	DriverQueue = "queue"
	DriverSNS   = "sns"
)

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, n entity.Notification) error
}

type renderer interface {
	Render(templateID string, data map[string]any) (render.Output, error)
}

type mailSender interface {
	Send(ctx context.Context, msg mail.Message) error
}

type topicPublisher interface {
	Publish(ctx context.Context, subject, message string, attrs map[string]string) (string, error)
}

// Options carries the backends; only the one named by the driver is used.
type Options struct {
	Mail       mailSender
	Messaging  messaging.Publisher
	SNS        topicPublisher
	Renderer   renderer
	UID        uid.NumberID
	Instrument instrument.Instrumentation
}

// New returns the Sender for driver.
func New(driver string, opts Options) (Sender, error) {
	if opts.Instrument == nil {
		opts.Instrument = instrument.NewNoop()
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMail:
		if opts.Mail == nil || opts.Renderer == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, DriverMail)
		}
		return NewMail(opts.Mail, opts.Renderer, opts.Instrument), nil
	case DriverQueue:
		if opts.Messaging == nil || opts.UID == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, DriverQueue)
		}
		return NewQueue(opts.Messaging, opts.UID, opts.Instrument), nil
	case DriverSNS:
		if opts.SNS == nil || opts.Renderer == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, DriverSNS)
		}
		return NewSNS(opts.SNS, opts.Renderer, opts.Instrument), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string) (context.Context, trace.Span) {
	return ins.Tracer("otp.outbound.notifier").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
