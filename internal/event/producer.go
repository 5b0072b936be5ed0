package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for checkout domain events.
var (
	TopicSessionCreated = kafka.Topic("checkout", "session-created")
	TopicSessionFailed  = kafka.Topic("checkout", "session-failed")
)

// AggregateTypeCheckoutSession is the aggregate every checkout event belongs to.
const AggregateTypeCheckoutSession = "checkout_session"

// SourceStorefront identifies events emitted by this service.
const SourceStorefront = "storefront"

// SessionCreatedData is the payload for a checkout.session-created event.
type SessionCreatedData struct {
	SessionID string `json:"session_id"`
	PriceID   string `json:"price_id"`
	Provider  string `json:"provider"`
}

// SessionFailedData is the payload for a checkout.session-failed event.
type SessionFailedData struct {
	PriceID       string `json:"price_id"`
	Provider      string `json:"provider"`
	FailureReason string `json:"failure_reason"`
}

// Publisher is what the checkout service emits events through.
type Publisher interface {
	PublishSessionCreated(ctx context.Context, data SessionCreatedData) error
	PublishSessionFailed(ctx context.Context, data SessionFailedData) error
}

// Producer publishes checkout domain events to Kafka.
type Producer struct {
	kafka  *kafka.Producer
	logger *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a new checkout event producer.
func NewProducer(k *kafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: k, logger: logger}
}

// PublishSessionCreated publishes a checkout.session-created event.
func (p *Producer) PublishSessionCreated(ctx context.Context, data SessionCreatedData) error {
	return p.publish(ctx, TopicSessionCreated, data.SessionID, data)
}

// PublishSessionFailed publishes a checkout.session-failed event. The price
// id is the aggregate key since no session exists.
func (p *Producer) PublishSessionFailed(ctx context.Context, data SessionFailedData) error {
	return p.publish(ctx, TopicSessionFailed, data.PriceID, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID string, data any) error {
	evt, err := kafka.NewEvent(topic, aggregateID, AggregateTypeCheckoutSession, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published checkout event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// Noop discards events; used when no brokers are configured.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) PublishSessionCreated(context.Context, SessionCreatedData) error { return nil }

func (Noop) PublishSessionFailed(context.Context, SessionFailedData) error { return nil }
