package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/otpgate/internal/pkg/stacktrace"
)

// responder makes Ack and Nack take effect once, whichever comes first.
type responder struct {
	done atomic.Bool
}

func (r *responder) claim() bool {
	return r.done.CompareAndSwap(false, true)
}

func (r *responder) responded() bool {
	return r.done.Load()
}

type respondingMessage interface {
	Message
	responded() bool
}

// dispatch runs handler with panic recovery and applies auto ack.
func dispatch(ctx context.Context, kind string, msg respondingMessage, handler Handler, autoAck bool) error {
	herr := safeCall(ctx, kind, func() error { return handler(ctx, msg) })

	if !autoAck || msg.responded() {
		return herr
	}

	if herr != nil {
		slog.WarnContext(ctx, "message handler failed, requesting redelivery",
			"kind", kind, "topic", msg.Topic(), "id", msg.ID(), "attempts", msg.Attempts(), "error", herr)
		return msg.Nack(ctx)
	}

	return msg.Ack(ctx)
}

func safeCall(ctx context.Context, kind string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in message handler",
				"kind", kind, "panic", rvr, "stack", stacktrace.InternalPaths(debug.Stack()))
			err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
		}
	}()

	return fn()
}
