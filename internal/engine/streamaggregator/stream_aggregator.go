package streamaggregator

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/model"
	"GraphSpectra/internal/probe"
	"context"
	"log"
	"sync"
)

// StreamAggregator consumes sample events from NATS and feeds them to an aggregator.
type StreamAggregator struct {
	aggregator model.Aggregator
	subscriber *probe.Subscriber
	probeCfg   config.ProbeConfig

	mu      sync.RWMutex
	stopped bool
}

// NewStreamAggregator creates a new real-time stream aggregator around agg.
func NewStreamAggregator(cfg *config.Config, agg model.Aggregator) *StreamAggregator {
	return &StreamAggregator{aggregator: agg, probeCfg: cfg.Probe}
}

// Start connects to NATS, starts the underlying aggregator, and begins processing events.
func (sa *StreamAggregator) Start(ctx context.Context) error {
	log.Println("StreamAggregator starting for nats: ", sa.probeCfg.NATSURL)
	sub, err := probe.NewSubscriber(ctx, sa.probeCfg)
	if err != nil {
		return err
	}
	sa.subscriber = sub

	// The aggregator starts its ingestion goroutine and snapshotters.
	sa.aggregator.Start()

	if err := sub.Start(sa.forward); err != nil {
		sub.Close()
		sa.aggregator.Stop()
		return err
	}
	return nil
}

// forward passes an event on unless Stop has begun. NATS may still run a
// callback after the subscription is closed.
func (sa *StreamAggregator) forward(ev *model.SampleEvent) {
	sa.mu.RLock()
	defer sa.mu.RUnlock()
	if sa.stopped {
		return
	}
	sa.aggregator.Input() <- ev
}

// Stop gracefully shuts down the aggregator.
func (sa *StreamAggregator) Stop() {
	log.Println("StreamAggregator stopping...")
	// Close the subscription first so nothing is sent on a closed input channel.
	if sa.subscriber != nil {
		sa.subscriber.Close()
	}
	sa.mu.Lock()
	sa.stopped = true
	sa.mu.Unlock()
	sa.aggregator.Stop()
	log.Println("StreamAggregator stopped.")
}
