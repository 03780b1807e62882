package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func TestOutboundMessageLeavesTopicToWriter(t *testing.T) {
	msg := outboundMessage([]byte("42"), []byte(`{"event":"order.opened"}`))
	if msg.Topic != "" {
		t.Fatalf("message topic = %q, want empty", msg.Topic)
	}
	if string(msg.Key) != "42" {
		t.Fatalf("message key = %q, want %q", msg.Key, "42")
	}
}

func TestPublishWithTopicConfiguredWriter(t *testing.T) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP("127.0.0.1:1"),
		Topic:        "orders.events",
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	t.Cleanup(func() { _ = writer.Close() })

	client := &kafkaClient{writer: writer, topic: "orders.events", logger: zap.NewNop()}

	// A canceled context keeps the test off the network. The writer still
	// validates the message first, so a writer/message topic conflict would
	// surface here instead of the context error.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Publish(ctx, []byte("1"), []byte(`{"event":"order.closed"}`))
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	if strings.Contains(err.Error(), "must not be specified") {
		t.Fatalf("publish rejected by topic conflict: %v", err)
	}
}

func TestNoopClientPublishAndTopic(t *testing.T) {
	client := noopClient{topic: "orders.events"}
	if err := client.Publish(context.Background(), []byte("1"), []byte("{}")); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
	if got := client.Topic(); got != "orders.events" {
		t.Fatalf("topic = %q, want %q", got, "orders.events")
	}
}
