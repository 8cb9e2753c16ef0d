package probe

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/engine/protocol"
	"GraphSpectra/internal/model"
	"GraphSpectra/internal/pkg/retry"
	"context"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// Publisher is responsible for publishing sample events to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(ctx context.Context, cfg config.ProbeConfig) (*Publisher, error) {
	nc, err := connect(ctx, cfg.NATSURL, retry.DefaultPolicy())
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish encodes an event and publishes it to the configured subject.
func (p *Publisher) Publish(ev *model.SampleEvent) error {
	return p.nc.Publish(p.subject, protocol.Marshal(ev))
}

// PublishPass publishes every event of a pass followed by the pass end marker.
func (p *Publisher) PublishPass(events []*model.SampleEvent) error {
	for i, ev := range events {
		if err := p.Publish(ev); err != nil {
			return fmt.Errorf("failed to publish event %d: %w", i, err)
		}
	}
	if err := p.Publish(&model.SampleEvent{Kind: model.EventPassEnd}); err != nil {
		return fmt.Errorf("failed to publish pass end: %w", err)
	}
	return p.nc.Flush()
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
