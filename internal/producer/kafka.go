package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

const tracerName = "github.com/notifyhub/ms-notification-kafka/internal/producer"

// KafkaConfig holds the writer settings taken from config.Config.
type KafkaConfig struct {
	Brokers                []string
	ClientID               string
	RequiredAcks           int
	WriteTimeout           time.Duration
	BatchTimeout           time.Duration
	AllowAutoTopicCreation bool
}

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes JSON-encoded payloads with a fresh UUID key.
// Each Publish is one synchronous write; partitioning, batching and the
// broker handshake are left to kafka-go.
type KafkaProducer struct {
	w      messageWriter
	logger *zap.Logger
}

func NewKafkaProducer(cfg KafkaConfig, logger *zap.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		WriteTimeout:           cfg.WriteTimeout,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: cfg.AllowAutoTopicCreation,
		Transport:              &kafka.Transport{ClientID: cfg.ClientID},
	}
	return newKafkaProducer(w, logger)
}

func newKafkaProducer(w messageWriter, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{w: w, logger: logger}
}

// Publish encodes payload, writes it to destination and returns the key.
func (p *KafkaProducer) Publish(ctx context.Context, destination domain.Destination, payload any) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "kafka.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", string(destination)),
		),
	)
	defer span.End()

	value, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrSerialization, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	key := uuid.New().String()
	msg := kafka.Message{
		Topic: string(destination),
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(key)},
			{Key: HeaderEventType, Value: []byte(destination)},
		},
	}
	msg.Headers = InjectTraceHeaders(ctx, msg.Headers)

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		err = classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("messaging.kafka.message.key", key))
	p.logger.Debug("message written",
		zap.String("destination", string(destination)),
		zap.String("message_key", key),
		zap.Int("bytes", len(value)),
	)
	return key, nil
}

// Close flushes pending writes and releases broker connections.
func (p *KafkaProducer) Close() error {
	return p.w.Close()
}

// classify maps a kafka-go write error onto the domain error taxonomy.
// Errors it cannot place are returned unchanged.
func classify(err error) error {
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for _, e := range writeErrs {
			if e != nil {
				return classify(e)
			}
		}
	}

	var kafkaErr kafka.Error
	if errors.As(err, &kafkaErr) {
		if kafkaErr.Temporary() {
			return fmt.Errorf("%w: %w", domain.ErrBrokerUnavailable, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrRejected, err)
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe):
		return fmt.Errorf("%w: %w", domain.ErrBrokerUnavailable, err)
	}
	return err
}

// compile-time check that KafkaProducer implements Producer
var _ Producer = (*KafkaProducer)(nil)
