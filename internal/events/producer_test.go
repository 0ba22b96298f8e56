package events

import (
	"context"
	"testing"
)

func TestEmitAfterShutdownDoesNotPanic(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "orders-test", 2)
	if p == nil {
		t.Fatal("expected a producer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.WaitClosed()

	// Late emits from in-flight request goroutines land in the inbox or
	// are dropped; either way they must not panic.
	for i := 0; i < 10; i++ {
		p.Emit(EventOrderStatusChanged, "order-1", OrderStatusChangedPayload{
			OrderID:    "order-1",
			FromStatus: "PENDING",
			ToStatus:   "CANCELLED",
		})
	}
}

func TestNilProducerIsInert(t *testing.T) {
	var p *Producer
	p.Start(context.Background())
	p.Emit(EventOrderCreated, "order-1", OrderCreatedPayload{OrderID: "order-1"})
	p.WaitClosed()
}

func TestEmitWithoutBrokers(t *testing.T) {
	if p := NewProducer(nil, "orders-test", 2); p != nil {
		t.Fatal("expected nil producer without brokers")
	}
}
