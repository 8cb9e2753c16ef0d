package probe

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/engine/protocol"
	"GraphSpectra/internal/model"
	"GraphSpectra/internal/pkg/retry"
	"context"
	"log"

	"github.com/nats-io/nats.go"
)

// EventHandler processes a received sample event.
type EventHandler func(ev *model.SampleEvent)

// Subscriber is responsible for subscribing to a NATS subject and decoding sample events.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	handler EventHandler
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(ctx context.Context, cfg config.ProbeConfig) (*Subscriber, error) {
	nc, err := connect(ctx, cfg.NATSURL, retry.DefaultPolicy())
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes to the configured subject and hands every decoded event to
// handler. Events of one subscription are delivered in publication order.
func (s *Subscriber) Start(handler EventHandler) error {
	s.handler = handler
	sub, err := s.nc.Subscribe(s.subject, s.handleMessage)
	if err != nil {
		return err
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for sample events...", s.subject)
	return nil
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	ev, err := protocol.Unmarshal(msg.Data)
	if err != nil {
		log.Printf("Error decoding sample event: %v", err)
		return
	}
	s.handler(ev)
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
