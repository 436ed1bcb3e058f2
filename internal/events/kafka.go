package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aidin1998/ethtransfer/pkg/metrics"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of kafka.Writer used by KafkaPublisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig contains configuration for the Kafka writer
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaPublisher writes transfer events as JSON, keyed by transaction hash
type KafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a synchronous writer for cfg.Topic
func NewKafkaPublisher(cfg KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return NewKafkaPublisherWithWriter(writer, logger)
}

func NewKafkaPublisherWithWriter(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// PublishTransfer publishes a single event
func (p *KafkaPublisher) PublishTransfer(ctx context.Context, event TransferSubmitted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Hash),
		Value: data,
		Time:  event.SubmittedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("transfer.submitted")},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.TransferEventsPublished.WithLabelValues("error").Inc()
		p.logger.Error("Failed to publish transfer event", zap.String("hash", event.Hash), zap.Error(err))
		return fmt.Errorf("failed to publish transfer event: %w", err)
	}
	metrics.TransferEventsPublished.WithLabelValues("ok").Inc()
	p.logger.Debug("Published transfer event", zap.String("hash", event.Hash), zap.String("id", event.ID))
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
