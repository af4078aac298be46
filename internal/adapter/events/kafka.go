package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const eventVersion = 1

// Envelope is the wire format of published order events.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderPayload carries the order snapshot of an event.
type OrderPayload struct {
	OrderID   string `json:"order_id"`
	UserID    int64  `json:"user_id"`
	Status    string `json:"status"`
	Total     string `json:"total"`
	Reference string `json:"payment_reference,omitempty"`
}

// ErrBufferFull is returned when the outgoing queue has no room for an event.
var ErrBufferFull = errors.New("order event buffer full")

// ErrPublisherClosed is returned for events published after Close.
var ErrPublisherClosed = errors.New("order event publisher closed")

const (
	defaultBufferSize = 1024
	writeTimeout      = 5 * time.Second
	batchTimeout      = 10 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues order events and writes them to a Kafka topic keyed
// by order id from a single background loop, so callers never wait on brokers.
type KafkaPublisher struct {
	w        messageWriter
	producer string
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	inbox   chan kafka.Message
	done    chan struct{}
	started bool
	closed  bool
}

// NewKafkaPublisher creates publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic, producer string, logger *slog.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
		BatchTimeout: batchTimeout,
	}, producer, defaultBufferSize, logger)
}

func newKafkaPublisher(w messageWriter, producer string, buffer int, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w:        w,
		producer: producer,
		timeout:  writeTimeout,
		logger:   logger,
		inbox:    make(chan kafka.Message, buffer),
		done:     make(chan struct{}),
	}
}

// Start launches the write loop. Calling it more than once has no effect.
func (p *KafkaPublisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	go p.run()
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for msg := range p.inbox {
		p.write(msg)
	}
}

func (p *KafkaPublisher) write(msg kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("write order event failed",
			slog.String("order_id", string(msg.Key)),
			slog.String("error", err.Error()),
		)
	}
}

// Publish encodes ev into an envelope and queues it. It fails fast with
// ErrBufferFull instead of blocking when the queue is saturated.
func (p *KafkaPublisher) Publish(_ context.Context, ev model.OrderEvent) error {
	value, err := encode(ev, p.producer)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return fmt.Errorf("queue %s event: %w", ev.Type, ErrBufferFull)
	}
}

// Close stops accepting events, waits for queued ones to be written until
// ctx expires and closes the writer.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	started := p.started
	p.mu.Unlock()

	if started {
		select {
		case <-p.done:
		case <-ctx.Done():
			return errors.Join(fmt.Errorf("drain order events: %w", ctx.Err()), p.w.Close())
		}
	}
	return p.w.Close()
}

func encode(ev model.OrderEvent, producer string) ([]byte, error) {
	payload, err := json.Marshal(OrderPayload{
		OrderID:   ev.OrderID,
		UserID:    ev.UserID,
		Status:    string(ev.Status),
		Total:     ev.Total,
		Reference: ev.Reference,
	})
	if err != nil {
		return nil, err
	}
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     string(ev.Type),
		EventVersion:  eventVersion,
		OccurredAt:    occurred,
		Producer:      producer,
		CorrelationID: ev.OrderID,
		Payload:       payload,
	})
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.OrderEvent) error { return nil }
