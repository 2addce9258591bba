// Package kafka publishes field-change events to a topic. It wraps an
// inner change tracker so the engine's bookkeeping contract is
// preserved while every DidChange fans out as an event.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/engine"
	"github.com/kordat/lazyref/pkg/record"
)

// Event is the wire shape of one field change.
type Event struct {
	ID    string `json:"id"`
	Time  int64  `json:"time"`
	Class string `json:"class"`
	Key   string `json:"key"`
	Field string `json:"field"`
}

type Tracker struct {
	inner    engine.Tracker
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

// NewTracker builds a publishing tracker from a kafka:// URL. The topic
// comes from the path, brokers from the host, extra producer config
// from query parameters.
func NewTracker(ctx context.Context, uri *url.URL, inner engine.Tracker, logger *zap.Logger) (*Tracker, error) {
	topic := strings.TrimPrefix(uri.Path, "/")
	if topic == "" {
		return nil, fmt.Errorf("topic must be specified in URL path")
	}

	config := kafka.ConfigMap{
		"bootstrap.servers": uri.Host,
		"client.id":         "lazyref-tracker",
		"acks":              "1",
		"linger.ms":         "5",
		"compression.type":  "snappy",
	}
	for key, values := range uri.Query() {
		if len(values) > 0 {
			config[key] = values[0]
		}
	}

	producer, err := kafka.NewProducer(&config)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}

	if inner == nil {
		inner = engine.NopTracker{}
	}

	return &Tracker{
		inner:    inner,
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

func (t *Tracker) WillChange(ctx context.Context, r *record.Record, field string) {
	t.inner.WillChange(ctx, r, field)
}

func (t *Tracker) DidChange(ctx context.Context, r *record.Record, field string) {
	t.inner.DidChange(ctx, r, field)

	event := Event{
		ID:    uuid.New().String(),
		Time:  time.Now().Unix(),
		Class: r.Class(),
		Key:   r.ID(),
		Field: field,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		t.logger.Error("marshal change event", zap.Error(err))
		return
	}

	err = t.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &t.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(r.Class() + "/" + r.ID()),
		Value: payload,
	}, nil)
	if err != nil {
		t.logger.Error("produce change event",
			zap.String("class", r.Class()),
			zap.String("id", r.ID()),
			zap.String("field", field),
			zap.Error(err))
	}
}

// Close flushes outstanding events and releases the producer.
func (t *Tracker) Close(ctx context.Context) error {
	remaining := t.producer.Flush(5000)
	if remaining > 0 {
		t.logger.Warn("change events unflushed", zap.Int("remaining", remaining))
	}
	t.producer.Close()
	return nil
}
