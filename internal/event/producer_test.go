package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

type captureWriter struct {
	msgs []kafkago.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func newTestProducer(w *captureWriter) *Producer {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProducer(kafka.NewProducerWithWriter(w, []string{"localhost:9092"}, l), l)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.checkout.session-created", TopicSessionCreated)
	assert.Equal(t, "storefront.checkout.session-failed", TopicSessionFailed)
}

func TestPublishSessionCreated(t *testing.T) {
	w := &captureWriter{}
	p := newTestProducer(w)
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	err := p.PublishSessionCreated(ctx, SessionCreatedData{SessionID: "cs_1", PriceID: "price_1", Provider: "mock"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, TopicSessionCreated, msg.Topic)
	assert.Equal(t, "cs_1", string(msg.Key))

	evt, err := kafka.ParseEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, AggregateTypeCheckoutSession, evt.AggregateType)
	assert.Equal(t, SourceStorefront, evt.Source)
	assert.Equal(t, "corr-1", evt.CorrelationID)

	data, err := kafka.DecodeData[SessionCreatedData](evt)
	require.NoError(t, err)
	assert.Equal(t, "price_1", data.PriceID)
}

func TestPublishSessionFailed_KeyedByPrice(t *testing.T) {
	w := &captureWriter{}
	p := newTestProducer(w)

	err := p.PublishSessionFailed(context.Background(), SessionFailedData{PriceID: "price_9", FailureReason: "inactive"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, TopicSessionFailed, w.msgs[0].Topic)
	assert.Equal(t, "price_9", string(w.msgs[0].Key))
}

func TestPublish_WriterError(t *testing.T) {
	p := newTestProducer(&captureWriter{err: errors.New("broker down")})

	err := p.PublishSessionCreated(context.Background(), SessionCreatedData{SessionID: "cs_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish storefront.checkout.session-created event")
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishSessionCreated(context.Background(), SessionCreatedData{}))
	assert.NoError(t, p.PublishSessionFailed(context.Background(), SessionFailedData{}))
}
