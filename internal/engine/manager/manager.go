package manager

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/heuristics"
	"GraphSpectra/internal/heuristics/statistic"
	"GraphSpectra/internal/model"
	"GraphSpectra/internal/snapshot"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Stats counts what the manager has ingested so far.
type Stats struct {
	Passes       int64
	Observations int64
	Rejected     int64
	PublishedAt  time.Time
}

// Manager turns a stream of sample events into published collectors. A single
// ingestion goroutine owns the collector of the pass in progress; when the
// pass ends the collector is recalculated, published and never mutated again.
type Manager struct {
	params  statistic.Parameters
	writers []model.Writer

	eventChannel chan *model.SampleEvent
	current      atomic.Pointer[heuristics.Collector]
	onPublish    []func(*heuristics.Collector)

	passes       atomic.Int64
	observations atomic.Int64
	rejected     atomic.Int64
	publishedAt  atomic.Int64

	ingestWg      sync.WaitGroup
	done          chan struct{}
	snapshotterWg sync.WaitGroup
}

// NewManager creates a manager feeding the given writers.
func NewManager(cfg *config.Config, writers []model.Writer) (*Manager, error) {
	if err := cfg.Heuristics.Validate(); err != nil {
		return nil, err
	}
	size := cfg.Engine.SizeOfEventChannel
	if size <= 0 {
		size = 1
	}
	return &Manager{
		params:       cfg.Heuristics,
		writers:      writers,
		eventChannel: make(chan *model.SampleEvent, size),
		done:         make(chan struct{}),
	}, nil
}

// OnPublish registers fn to run after every publication. Must be called before Start.
func (m *Manager) OnPublish(fn func(*heuristics.Collector)) {
	m.onPublish = append(m.onPublish, fn)
}

// Start launches the ingestion goroutine and one snapshotter per writer.
func (m *Manager) Start() {
	for _, writer := range m.writers {
		m.snapshotterWg.Add(1)
		go m.runSnapshotter(writer)
		log.Printf("Started snapshotter for a writer with interval %s.", writer.GetInterval())
	}

	m.ingestWg.Add(1)
	go m.ingest()
	log.Println("Manager started.")
}

// Stop drains buffered events, abandons an unfinished pass, and has every
// writer persist the last published collector.
func (m *Manager) Stop() {
	log.Println("Manager stopping...")
	// 1. Stop accepting new events.
	close(m.eventChannel)

	// 2. Wait for the ingestion goroutine to drain the buffer.
	m.ingestWg.Wait()

	// 3. Signal snapshotters to take a final snapshot and exit.
	close(m.done)
	m.snapshotterWg.Wait()

	log.Println("Manager stopped.")
}

// Input returns the channel sample events are sent to.
func (m *Manager) Input() chan<- *model.SampleEvent {
	return m.eventChannel
}

// Current returns the last published collector, nil before the first pass ends.
func (m *Manager) Current() *heuristics.Collector {
	return m.current.Load()
}

// Stats returns the ingestion counters.
func (m *Manager) Stats() Stats {
	s := Stats{
		Passes:       m.passes.Load(),
		Observations: m.observations.Load(),
		Rejected:     m.rejected.Load(),
	}
	if ns := m.publishedAt.Load(); ns != 0 {
		s.PublishedAt = time.Unix(0, ns)
	}
	return s
}

func (m *Manager) ingest() {
	defer m.ingestWg.Done()

	pass, pending := m.newPass(), false
	for ev := range m.eventChannel {
		switch ev.Kind {
		case model.EventObservation:
			m.observations.Add(1)
			if err := ev.Observation.Validate(); err != nil {
				log.Printf("Warning: rejecting observation: %v", err)
				m.rejected.Add(1)
				pass.RecordSkippedObservation()
			} else {
				pass.Record(ev.Observation)
			}
			pending = true
		case model.EventSkipped:
			pass.RecordSkippedObservation()
			pending = true
		case model.EventMaxNodes:
			if ev.MaxNodes < 0 {
				log.Printf("Warning: ignoring negative node population bound %d", ev.MaxNodes)
				continue
			}
			pass.SetMaxAddressablePopulation(ev.MaxNodes)
			pending = true
		case model.EventPassEnd:
			pass.Recalculate()
			m.publish(pass)
			pass, pending = m.newPass(), false
		default:
			log.Printf("Warning: ignoring event of kind %s", ev.Kind)
		}
	}

	if pending {
		live, dead := pass.SampledNodes()
		log.Printf("Abandoning unfinished pass with %d live and %d skipped nodes.", live, dead)
	}
}

func (m *Manager) newPass() *heuristics.Collector {
	// Parameters were validated in NewManager.
	c, _ := heuristics.NewCollectorWithParameters(m.params)
	return c
}

func (m *Manager) publish(c *heuristics.Collector) {
	m.current.Store(c)
	m.passes.Add(1)
	m.publishedAt.Store(time.Now().UnixNano())

	live, dead := c.SampledNodes()
	log.Printf("Published statistics: %d live, %d skipped, live fraction %.4f", live, dead, c.LiveFraction())
	for _, fn := range m.onPublish {
		fn(c)
	}
}

// runSnapshotter runs a dedicated snapshot loop for a single writer.
func (m *Manager) runSnapshotter(writer model.Writer) {
	defer m.snapshotterWg.Done()
	interval := writer.GetInterval()
	if interval <= 0 {
		log.Printf("Invalid interval %s for writer, snapshotter will not run.", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var written *heuristics.Collector
	for {
		select {
		case <-ticker.C:
			written = m.takeSnapshot(writer, written)
		case <-m.done:
			m.takeSnapshot(writer, written)
			return
		}
	}
}

// takeSnapshot writes the current collector unless it was already written.
func (m *Manager) takeSnapshot(writer model.Writer, written *heuristics.Collector) *heuristics.Collector {
	c := m.Current()
	if c == nil || c == written {
		return written
	}
	timestamp := time.Now().Format(snapshot.TimestampLayout)
	if err := writer.Write(c, timestamp); err != nil {
		log.Printf("Error writing snapshot at %s: %v", timestamp, err)
		return written
	}
	return c
}
