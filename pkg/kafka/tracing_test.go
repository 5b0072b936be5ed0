package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestKafkaHeaderCarrier_SetOverwritesInPlace(t *testing.T) {
	headers := []kafka.Header{{Key: "event_type", Value: []byte("storefront.checkout.session-created")}}
	carrier := NewKafkaHeaderCarrier(&headers)

	assert.Equal(t, "storefront.checkout.session-created", carrier.Get("event_type"))
	assert.Empty(t, carrier.Get("missing"))

	carrier.Set("event_type", "storefront.checkout.session-failed")
	carrier.Set("source", "storefront")

	require.Len(t, headers, 2)
	assert.Equal(t, "storefront.checkout.session-failed", string(headers[0].Value))
	assert.ElementsMatch(t, []string{"event_type", "source"}, carrier.Keys())
}

func TestKafkaHeaderCarrier_Empty(t *testing.T) {
	var headers []kafka.Header
	carrier := NewKafkaHeaderCarrier(&headers)

	assert.Empty(t, carrier.Keys())
	assert.Empty(t, carrier.Get("traceparent"))
}

func TestKafkaHeaderCarrier_TraceContextRoundTrip(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	})

	var headers []kafka.Header
	prop := propagation.TraceContext{}
	prop.Inject(trace.ContextWithSpanContext(context.Background(), sc), NewKafkaHeaderCarrier(&headers))

	require.Len(t, headers, 1)
	assert.Equal(t, "traceparent", headers[0].Key)

	extracted := trace.SpanContextFromContext(prop.Extract(context.Background(), NewKafkaHeaderCarrier(&headers)))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.Equal(t, spanID, extracted.SpanID())
	assert.True(t, extracted.IsRemote())
}
