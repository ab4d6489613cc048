package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Emitter publishes audit events to Kafka. Emission is fire-and-forget:
// a failed write is logged and never fails the read it describes.
type Emitter struct {
	producer messageWriter
	timeout  time.Duration
	logger   *log.Logger
}

// NewEmitter constructs an Emitter over the audit producer.
func NewEmitter(producer messageWriter) *Emitter {
	return &Emitter{
		producer: producer,
		timeout:  5 * time.Second,
		logger:   log.New(log.Writer(), "[audit] ", log.LstdFlags),
	}
}

// ReadCompleted publishes the event asynchronously.
func (e *Emitter) ReadCompleted(event ReadCompleted) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		if err := e.emit(ctx, event); err != nil {
			e.logger.Printf("emit %s failed (request_id=%s): %v", EventTypeReadCompleted, event.RequestID, err)
		}
	}()
}

func (e *Emitter) emit(ctx context.Context, event ReadCompleted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Owner),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeReadCompleted)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
		},
	}
	return e.producer.WriteMessages(ctx, msg)
}
