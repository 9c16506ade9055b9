package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"mockabis/internal/abis/models"
)

// ErrEncoding marks a delivery that could not be serialized. It is never retried.
var ErrEncoding = errors.New("delivery encoding failed")

// Header keys set on every outbound record.
const (
	HeaderMessageType = "message-type"
	HeaderReturnValue = "return-value"
)

// Publisher writes a delivery to the outbound channel.
type Publisher interface {
	Publish(ctx context.Context, d models.Delivery) error
}

// Encode serializes the response part of a delivery, which is what listeners consume.
func Encode(d models.Delivery) ([]byte, error) {
	payload, err := json.Marshal(d.Response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return payload, nil
}

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher produces deliveries as JSON records keyed by request id.
type KafkaPublisher struct {
	producer producer
	topic    string
}

func NewKafkaPublisher(p producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, d models.Delivery) error {
	payload, err := Encode(d)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(d.Response.RequestID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: HeaderMessageType, Value: []byte(d.MessageType)},
			{Key: HeaderReturnValue, Value: []byte(d.Response.ReturnValue)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// LogPublisher writes deliveries to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, d models.Delivery) error {
	payload, err := Encode(d)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "outbound delivery",
		"message_type", d.MessageType,
		"request_id", d.Response.RequestID,
		"payload", string(payload),
	)
	return nil
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, d models.Delivery) error

func (f PublisherFunc) Publish(ctx context.Context, d models.Delivery) error {
	return f(ctx, d)
}
