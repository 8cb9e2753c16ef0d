package model

// Aggregator defines the common interface for an ingestion engine that turns
// sample events into published statistics.
type Aggregator interface {
	// Start launches the aggregator's processing workers.
	Start()

	// Stop gracefully shuts down the aggregator, ensuring all data is processed or flushed.
	Stop()

	// Input returns the channel to which sample events should be sent for processing.
	Input() chan<- *SampleEvent
}
