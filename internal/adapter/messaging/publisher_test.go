package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error { return nil }

func sampleEvent() domain.OrderPlacedEvent {
	return domain.OrderPlacedEvent{
		EventID:   "evt-1",
		Type:      domain.EventOrderPlaced,
		OrderID:   "order-1",
		UserID:    "user-1",
		Items:     map[string]int{"Laptop-X": 1},
		Total:     decimal.RequireFromString("999.00"),
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublishOrderPlaced(t *testing.T) {
	writer := &mockWriter{}
	publisher := &KafkaPublisher{writer: writer}

	if err := publisher.PublishOrderPlaced(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "user-1" {
		t.Errorf("expected key user-1, got %s", msg.Key)
	}

	var decoded domain.OrderPlacedEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.OrderID != "order-1" || !decoded.Total.Equal(decimal.NewFromInt(999)) {
		t.Errorf("unexpected payload: %+v", decoded)
	}
	if (headerCarrier{msg: &msg}).Get("event_type") != domain.EventOrderPlaced {
		t.Errorf("expected event_type header, got %v", msg.Headers)
	}
}

func TestPublishOrderPlaced_InjectsTraceContext(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	writer := &mockWriter{}
	(&KafkaPublisher{writer: writer}).PublishOrderPlaced(ctx, sampleEvent())

	msg := writer.messages[0]
	extracted := propagation.TraceContext{}.Extract(context.Background(), headerCarrier{msg: &msg})
	if got := trace.SpanContextFromContext(extracted).TraceID(); got != traceID {
		t.Errorf("expected trace id %s, got %s", traceID, got)
	}
}

func TestPublishOrderPlaced_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	publisher := &KafkaPublisher{writer: &mockWriter{err: boom}}

	err := publisher.PublishOrderPlaced(context.Background(), sampleEvent())
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped broker error, got: %v", err)
	}
}

func TestParseBrokers(t *testing.T) {
	got := ParseBrokers(" kafka-1:9092, ,kafka-2:9092,")
	want := []string{"kafka-1:9092", "kafka-2:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(ParseBrokers("")) != 0 {
		t.Error("expected no brokers for empty input")
	}
}
