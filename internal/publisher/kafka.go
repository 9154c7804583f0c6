package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes order events keyed by order id, so events of one order stay ordered.
type Kafka struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafka(brokers ...string) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Kafka{writer: w, now: time.Now}
}

func (k *Kafka) OrderPlaced(ctx context.Context, o domain.Order) error {
	payload, err := json.Marshal(newOrderPlacedPayload(o))
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}
	return k.publish(ctx, o.ID, EventOrderPlaced, payload)
}

func (k *Kafka) StatusChanged(ctx context.Context, path string, status domain.OrderStatus) error {
	payload, err := json.Marshal(statusChangedPayload{Path: path, Status: string(status), ChangedAt: k.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal status changed event: %w", err)
	}

	key := path
	if ref, ok := docstore.ParseRef(path); ok {
		key = ref.ID
	}
	return k.publish(ctx, key, EventStatusChanged, payload)
}

func (k *Kafka) publish(ctx context.Context, key, eventType string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
