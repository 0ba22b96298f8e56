package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const producerName = "fitplay-server"

// Producer publishes order lifecycle events through a buffered inbox so
// request handlers never block on the broker. A nil *Producer is valid and
// drops every event, which is how deployments without Kafka run.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

// NewProducer constructs a Producer, or nil when no brokers are configured.
func NewProducer(brokers []string, topic string, buf int) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is
// buffered and exits. The inbox is never closed: Emit may still be called
// from in-flight goroutines during shutdown, and those sends must not
// panic. Events queued after the flush are simply never delivered.
func (p *Producer) Start(ctx context.Context) {
	if p == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						_ = p.w.Close()
						close(p.closeCh)
						return
					}
				}
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Printf("[Events] publish failed: %v", err)
	}
}

// Emit wraps the payload in an Envelope and queues it for publication.
func (p *Producer) Emit(eventType, correlationID string, payload any) {
	if p == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Events] marshal payload: %v", err)
		return
	}

	envelope := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("[Events] marshal envelope: %v", err)
		return
	}

	select {
	case p.inbox <- kafka.Message{Key: []byte(correlationID), Value: value, Time: time.Now()}:
	default:
		log.Printf("[Events] inbox full, dropping %s for %s", eventType, correlationID)
	}
}

// WaitClosed blocks until the publish loop has flushed and exited.
func (p *Producer) WaitClosed() {
	if p == nil {
		return
	}
	<-p.closeCh
}
