package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

const (
	TopicOrderCreated = "order.created"
	TopicOrderPaid    = "order.paid"
)

// Publisher emits domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

// DefaultPublishTimeout bounds one Publish call, retries included.
const DefaultPublishTimeout = 3 * time.Second

// KafkaPublisher writes JSON encoded events through a sarama SyncProducer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	log      *slog.Logger
	timeout  time.Duration
}

// NewKafkaProducer dials brokers with acks from all in-sync replicas.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Retry.Backoff = 100 * time.Millisecond
	cfg.Producer.Timeout = 2 * time.Second
	cfg.Net.DialTimeout = 2 * time.Second
	cfg.Net.ReadTimeout = 2 * time.Second
	cfg.Net.WriteTimeout = 2 * time.Second
	cfg.Metadata.Retry.Max = 1
	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return p, nil
}

func NewKafkaPublisher(producer sarama.SyncProducer, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, log: log, timeout: DefaultPublishTimeout}
}

// WithTimeout changes how long Publish waits for the broker.
func (p *KafkaPublisher) WithTimeout(d time.Duration) *KafkaPublisher {
	p.timeout = d
	return p
}

type sendResult struct {
	partition int32
	offset    int64
	err       error
}

// Publish waits for the broker until ctx ends or the publish timeout passes.
// A send still in flight at that point completes in the background.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan sendResult, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		done <- sendResult{partition: partition, offset: offset, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("send %s event: %w", topic, res.err)
		}
		p.log.Debug("event published", "topic", topic, "key", key, "partition", res.partition, "offset", res.offset)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send %s event: %w", topic, ctx.Err())
	}
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
