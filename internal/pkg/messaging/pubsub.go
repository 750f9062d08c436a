package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

var (
	ErrPubSubProjectIDRequired    = errors.New("messaging: pubsub project id is required")
	ErrPubSubSubscriptionRequired = errors.New("messaging: pubsub subscription is required")
)

// PubSubConfig configures the Google Pub/Sub implementation. With
// PUBSUB_EMULATOR_HOST set the client talks to the emulator instead.
type PubSubConfig struct {
	ProjectID string
	// Client is used as is when set; tests pass one bound to a fake server.
	Client        *pubsub.Client
	ClientOptions []option.ClientOption
}

// PubSub is a Messaging backed by Google Pub/Sub. Consume reads from the
// subscription given by WithSubscription; the source topic is only recorded.
type PubSub struct {
	client *pubsub.Client
	owned  bool

	mu         sync.Mutex
	closed     bool
	publishers map[string]*pubsub.Publisher
}

func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.Client != nil {
		return &PubSub{client: cfg.Client, publishers: map[string]*pubsub.Publisher{}}, nil
	}
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectIDRequired
	}

	c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
	}

	return &PubSub{client: c, owned: true, publishers: map[string]*pubsub.Publisher{}}, nil
}

// Close flushes every publisher and closes the client it created.
func (p *PubSub) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pubs := p.publishers
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}

	if !p.owned {
		return nil
	}
	return p.client.Close()
}

func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	pub, err := p.publisher(destination)
	if err != nil {
		return PublishResult{}, err
	}

	res := pub.Publish(ctx, &pubsub.Message{Data: msg.Body, Attributes: msg.Headers})
	if _, err := res.Get(ctx); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

func (p *PubSub) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	co := newConsumeOptions(opts...)
	if co.subscription == "" {
		return ErrPubSubSubscriptionRequired
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return io.ErrClosedPipe
	}

	sub := p.client.Subscriber(co.subscription)
	// Outstanding messages, not stream count, bound handler parallelism.
	sub.ReceiveSettings.MaxOutstandingMessages = max(co.concurrency, co.maxInFlight)

	err := sub.Receive(ctx, func(mctx context.Context, m *pubsub.Message) {
		_ = dispatch(mctx, DriverPubSub, &pubSubMessage{topic: source, msg: m}, handler, co.autoAck)
	})
	if err != nil {
		return fmt.Errorf("messaging: pubsub receive: %w", err)
	}

	return ctx.Err()
}

func (p *PubSub) publisher(topic string) (*pubsub.Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, io.ErrClosedPipe
	}
	if pub, ok := p.publishers[topic]; ok {
		return pub, nil
	}

	pub := p.client.Publisher(topic)
	p.publishers[topic] = pub
	return pub, nil
}

type pubSubMessage struct {
	responder
	topic string
	msg   *pubsub.Message
}

func (m *pubSubMessage) Body() []byte             { return m.msg.Data }
func (m *pubSubMessage) Key() []byte              { return nil }
func (m *pubSubMessage) Header(key string) string { return m.msg.Attributes[key] }
func (m *pubSubMessage) ID() string               { return m.msg.ID }
func (m *pubSubMessage) Topic() string            { return m.topic }
func (m *pubSubMessage) Timestamp() time.Time     { return m.msg.PublishTime }

// Attempts is 1 unless the subscription has a dead letter policy.
func (m *pubSubMessage) Attempts() int {
	if m.msg.DeliveryAttempt == nil {
		return 1
	}
	return *m.msg.DeliveryAttempt
}

func (m *pubSubMessage) Ack(context.Context) error {
	if m.claim() {
		m.msg.Ack()
	}
	return nil
}

func (m *pubSubMessage) Nack(context.Context) error {
	if m.claim() {
		m.msg.Nack()
	}
	return nil
}
