package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// --- Event tests ---

func TestNewEvent_Fields(t *testing.T) {
	type sessionData struct {
		SessionID string `json:"session_id"`
		PriceID   string `json:"price_id"`
	}

	data := sessionData{SessionID: "cs_test_123", PriceID: "price_1"}
	event, err := NewEvent(Topic("checkout", "session-created"), "cs_test_123", "checkout_session", "storefront", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "storefront.checkout.session-created", event.EventType)
	assert.Equal(t, "cs_test_123", event.AggregateID)
	assert.Equal(t, "checkout_session", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, SchemaVersion, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.JSONEq(t, `{"session_id":"cs_test_123","price_id":"price_1"}`, string(event.Data))
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("storefront.test", "agg-1", "test", "storefront", make(chan int))
	assert.ErrorContains(t, err, "encode storefront.test payload")
}

func TestEvent_ParseMarshalled(t *testing.T) {
	original, err := NewEvent("storefront.checkout.session-failed", "price_456", "checkout_session", "storefront",
		map[string]string{"failure_reason": "price inactive"})
	require.NoError(t, err)
	original.WithCorrelationID("corr-abc")

	value, err := original.Marshal()
	require.NoError(t, err)

	restored, err := ParseEvent(value)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, "corr-abc", restored.CorrelationID)
	assert.WithinDuration(t, original.Timestamp, restored.Timestamp, time.Millisecond)

	data, err := DecodeData[map[string]string](restored)
	require.NoError(t, err)
	assert.Equal(t, "price inactive", data["failure_reason"])
}

func TestEvent_WithCorrelationID(t *testing.T) {
	event, err := NewEvent("storefront.test", "agg-1", "test", "storefront", nil)
	require.NoError(t, err)

	result := event.WithCorrelationID("corr-xyz")
	assert.Same(t, event, result)
	assert.Equal(t, "corr-xyz", event.CorrelationID)
}

func TestDecodeData_Invalid(t *testing.T) {
	event := &Event{EventType: "storefront.test", Data: json.RawMessage(`not valid json`)}

	_, err := DecodeData[map[string]string](event)
	assert.ErrorContains(t, err, "decode storefront.test payload")
}

func TestParseEvent_Invalid(t *testing.T) {
	for _, value := range [][]byte{[]byte(`{broken json`), {}} {
		_, err := ParseEvent(value)
		assert.Error(t, err)
	}
}

// --- ProducerConfig tests ---

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestDefaultProducerConfig_SingleBroker(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Len(t, cfg.Brokers, 1)
	assert.Equal(t, "localhost:9092", cfg.Brokers[0])
}

// --- Topic tests ---

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront", TopicPrefix)
	assert.Equal(t, "storefront.checkout.session-created", Topic("checkout", "session-created"))
	assert.Equal(t, "storefront.checkout.session-failed", Topic("checkout", "session-failed"))
}

// --- Producer tests ---

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestNewProducer_CreatesInstance(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:19092"})
	p := NewProducer(cfg, nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)

	// Close succeeds without a broker because nothing was ever dialed.
	assert.NoError(t, p.Close())
}

func TestProducer_Publish_WritesKeyedMessageWithHeaders(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	w := &mockWriter{}
	var captured []kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).([]kafka.Message) }).
		Return(nil)

	p := NewProducerWithWriter(w, nil, nil)

	event, err := NewEvent("checkout.session_created", "cs_test_1", "checkout_session", "storefront", map[string]string{"price_id": "price_1"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	require.NoError(t, p.Publish(ctx, Topic("checkout", "session-created"), event))
	require.Len(t, captured, 1)

	msg := captured[0]
	assert.Equal(t, "storefront.checkout.session-created", msg.Topic)
	assert.Equal(t, "cs_test_1", string(msg.Key))

	carrier := NewKafkaHeaderCarrier(&msg.Headers)
	assert.Equal(t, "checkout.session_created", carrier.Get("event_type"))
	assert.Equal(t, "storefront", carrier.Get("source"))
	assert.Equal(t, "corr-1", carrier.Get("correlation_id"))
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", carrier.Get("traceparent"))

	decoded, err := ParseEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	w.AssertExpectations(t)
}

func TestProducer_Publish_WrapsWriterError(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))

	p := NewProducerWithWriter(w, nil, nil)
	event, err := NewEvent("checkout.session_created", "cs_1", "checkout_session", "storefront", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "storefront.checkout.session-created", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to storefront.checkout.session-created")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestProducer_Close_DelegatesToWriter(t *testing.T) {
	w := &mockWriter{}
	w.On("Close").Return(nil)

	require.NoError(t, NewProducerWithWriter(w, nil, nil).Close())
	w.AssertExpectations(t)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
