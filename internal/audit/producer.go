package audit

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer writes to the single audit topic. Messages are keyed by
// owner, and the hash balancer keeps each owner's events on one partition
// so their order is stable for downstream consumers.
type KafkaProducer struct {
	brokers []string
	topic   string

	mu     sync.Mutex
	writer *kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer for the audit topic.
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	return &KafkaProducer{brokers: brokers, topic: topic}
}

// WriteMessages writes messages to the audit topic, creating the writer on
// first use.
func (p *KafkaProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return p.auditWriter().WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) auditWriter() *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(p.brokers...),
			Topic:        p.topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		}
	}
	return p.writer
}

// Close releases the writer.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}
