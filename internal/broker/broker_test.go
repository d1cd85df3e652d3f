package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promofeed/internal/config"
	"promofeed/internal/logger"
	"promofeed/pkg/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleRecord() models.MessageRecord {
	return models.MessageRecord{
		ID:        "id-1",
		Code:      "BOBA25",
		Message:   "BOBA25",
		Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Severity:  models.SeveritySuccess,
		Metadata:  map[string]interface{}{"location": "Phoenix"},
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "promofeed.messages", logger.NopLogger())

	require.NoError(t, p.Publish(context.Background(), sampleRecord()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "id-1", string(msg.Key))
	assert.Equal(t, "content-type", msg.Headers[0].Key)

	var decoded models.MessageRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, sampleRecord(), decoded)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := newKafkaPublisher(&fakeWriter{err: errors.New("broker down")}, "t", logger.NopLogger())

	err := p.Publish(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(logger.NopLogger())
	assert.NoError(t, p.Publish(context.Background(), sampleRecord()))
	assert.NoError(t, p.Close())
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(config.BrokerConfig{Type: "log"}, logger.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, &LogPublisher{}, p)

	p, err = NewPublisher(config.BrokerConfig{Type: "kafka", Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"}}, logger.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)
	assert.NoError(t, p.Close())

	_, err = NewPublisher(config.BrokerConfig{Type: "rabbitmq"}, logger.NopLogger())
	assert.Error(t, err)
}
