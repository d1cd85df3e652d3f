package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/internal/logger"
	"promofeed/pkg/metrics"
	"promofeed/pkg/models"
	"promofeed/pkg/tracing"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each record as JSON keyed by its id.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger logger.Logger
	now    func() time.Time
}

func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	topic := cfg.Topic
	if topic == "" {
		topic = constants.DefaultKafkaTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, topic, log)
}

func newKafkaPublisher(w messageWriter, topic string, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, logger: log, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg models.MessageRecord) error {
	body, err := json.Marshal(msg)
	if err != nil {
		metrics.IncPublished(constants.BrokerTypeKafka, "error")
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	headers := tracing.InjectTraceContext(ctx, []kafka.Header{
		{Key: "content-type", Value: []byte("application/json")},
	})

	start := p.now()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(msg.ID),
		Value:   body,
		Headers: headers,
		Time:    start,
	})
	metrics.ObserveKafkaWriteDuration(p.topic, time.Since(start))

	if err != nil {
		metrics.IncPublished(constants.BrokerTypeKafka, "error")
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncPublished(constants.BrokerTypeKafka, "success")
	p.logger.DebugwCtx(ctx, "Published message", "topic", p.topic, "id", msg.ID, "code", msg.Code)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
