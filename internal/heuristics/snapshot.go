package heuristics

import (
	"GraphSpectra/internal/heuristics/statistic"
)

// Snapshot is the persisted form of a Collector. It carries no estimator
// parameters; Restore needs them supplied again.
type Snapshot struct {
	Labels   statistic.DistributionState
	RelTypes statistic.DistributionState

	Incoming map[int]map[int]statistic.RollingState
	Outgoing map[int]map[int]statistic.RollingState
	Both     map[int]map[int]statistic.RollingState

	Liveness LivenessState
}

// Snapshot exports the collector's statistics. The result shares no memory
// with the collector.
func (c *Collector) Snapshot() *Snapshot {
	return &Snapshot{
		Labels:   c.labels.State(),
		RelTypes: c.relTypes.State(),
		Incoming: c.incoming.state(),
		Outgoing: c.outgoing.state(),
		Both:     c.both.state(),
		Liveness: c.liveness.State(),
	}
}

// Restore rebuilds a collector from a snapshot. Tables missing from a partial
// snapshot come back empty and every table gets its AnyLabel bucket, so the
// result accepts further ingestion like a freshly built collector.
func Restore(snap *Snapshot, params statistic.Parameters) (*Collector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if snap == nil {
		return newCollector(params), nil
	}
	return &Collector{
		params:   params,
		labels:   statistic.RestoreFrequencyDistribution(snap.Labels, params.EqualityTolerance),
		relTypes: statistic.RestoreFrequencyDistribution(snap.RelTypes, params.EqualityTolerance),
		incoming: restoreDegreeTable(snap.Incoming, params),
		outgoing: restoreDegreeTable(snap.Outgoing, params),
		both:     restoreDegreeTable(snap.Both, params),
		liveness: restoreLivenessTracker(snap.Liveness),
	}, nil
}
