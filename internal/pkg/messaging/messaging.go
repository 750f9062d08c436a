package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrUnsupported is returned when the broker cannot perform an operation.
	ErrUnsupported = errors.New("messaging: unsupported operation")

	ErrDestinationRequired = errors.New("messaging: destination is required")
	ErrHandlerRequired     = errors.New("messaging: handler is required")
)

// Messaging publishes and consumes messages.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Publisher sends a message to a topic or subject.
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer processes messages from a topic or subject until ctx ends.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one received message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to publish.
type OutgoingMessage struct {
	Body []byte
	// Key selects the Kafka partition.
	Key []byte
	// Headers are dropped by brokers without header support (NSQ).
	Headers map[string]string
}

// PublishResult carries what the broker reported about a publish.
type PublishResult struct {
	Topic     string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Key() []byte
	// Header returns the first value of a header, or "".
	Header(key string) string
	ID() string
	Topic() string
	Timestamp() time.Time
	Attempts() int

	// Ack marks the message processed.
	Ack(ctx context.Context) error
	// Nack asks the broker to redeliver the message.
	Nack(ctx context.Context) error
}
