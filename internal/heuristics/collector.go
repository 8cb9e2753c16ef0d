// Package heuristics aggregates sampled node observations into the statistics
// a cost-based planner uses to estimate traversal cardinality: label and
// relationship-type frequencies, degree averages per (label, relationship
// type, direction), and the fraction of sampled nodes that were live.
//
// A Collector has a single writer. RecordObservation, RecordSkippedObservation,
// SetMaxAddressablePopulation and Recalculate must not run concurrently with
// each other or with queries. Once Recalculate has returned and no ingestion is
// pending, queries may run from any number of goroutines.
package heuristics

import (
	"encoding/binary"
	"hash/fnv"
	"slices"

	"GraphSpectra/internal/heuristics/statistic"
	"GraphSpectra/internal/model"
)

// Estimates is the read-only surface a planner consumes.
type Estimates interface {
	LabelFrequency(label int) float64
	RelationshipTypeFrequency(relType int) float64
	Degree(label, relType int, dir Direction) float64
	LiveFraction() float64
	MaxAddressableNodes() int64
}

// Collector owns the frequency distributions, the three degree tables and the
// liveness tracker of one statistics snapshot.
type Collector struct {
	params statistic.Parameters

	labels   *statistic.FrequencyDistribution
	relTypes *statistic.FrequencyDistribution

	incoming *DegreeTable
	outgoing *DegreeTable
	both     *DegreeTable

	liveness *LivenessTracker
}

var _ Estimates = (*Collector)(nil)

// NewCollector creates an empty collector with default parameters.
func NewCollector() *Collector {
	return newCollector(statistic.DefaultParameters())
}

// NewCollectorWithParameters creates an empty collector building its
// estimators from params.
func NewCollectorWithParameters(params statistic.Parameters) (*Collector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return newCollector(params), nil
}

func newCollector(params statistic.Parameters) *Collector {
	return &Collector{
		params:   params,
		labels:   statistic.NewFrequencyDistribution(params.EqualityTolerance),
		relTypes: statistic.NewFrequencyDistribution(params.EqualityTolerance),
		incoming: NewDegreeTable(params),
		outgoing: NewDegreeTable(params),
		both:     NewDegreeTable(params),
		liveness: NewLivenessTracker(),
	}
}

// Parameters returns the parameters new estimators are built from.
func (c *Collector) Parameters() statistic.Parameters {
	return c.params
}

// RecordObservation folds one live node into the statistics. Every degree
// count is recorded under each of the node's labels and under AnyLabel, in
// its own direction table and in the combined table.
func (c *Collector) RecordObservation(labels, relTypes []int, incoming, outgoing map[int]int64) {
	c.labels.Record(labels)
	c.relTypes.Record(relTypes)

	recordDegrees(c.incoming, labels, incoming)
	recordDegrees(c.outgoing, labels, outgoing)

	recordDegrees(c.both, labels, incoming)
	recordDegrees(c.both, labels, outgoing)

	c.liveness.RecordLive()
}

// Record is RecordObservation for a model.NodeObservation.
func (c *Collector) Record(obs model.NodeObservation) {
	c.RecordObservation(obs.Labels, obs.RelTypes, obs.Incoming, obs.Outgoing)
}

func recordDegrees(table *DegreeTable, labels []int, degrees map[int]int64) {
	for relType, count := range degrees {
		table.GetOrCreate(AnyLabel, relType).Record(count)
		for i, label := range labels {
			if slices.Contains(labels[:i], label) {
				continue
			}
			table.GetOrCreate(label, relType).Record(count)
		}
	}
}

// RecordSkippedObservation counts one sampled node that could not be used.
func (c *Collector) RecordSkippedObservation() {
	c.liveness.RecordDead()
}

// SetMaxAddressablePopulation records the best known bound on the node count.
func (c *Collector) SetMaxAddressablePopulation(n int64) {
	c.liveness.SetMaxNodes(n)
}

// Recalculate finalizes a batch of ingestion. Queries reflect the data
// recorded up to the last call.
func (c *Collector) Recalculate() {
	c.labels.Recalculate()
	c.relTypes.Recalculate()
	c.liveness.Recalculate()
}

// LabelFrequency returns the fraction of observed nodes carrying label.
func (c *Collector) LabelFrequency(label int) float64 {
	return c.labels.Get(label)
}

// RelationshipTypeFrequency returns the fraction of observed nodes
// participating in relType.
func (c *Collector) RelationshipTypeFrequency(relType int) float64 {
	return c.relTypes.Get(relType)
}

// Degree returns the average degree of nodes labeled label over edges of
// relType in direction dir, 0 if nothing was observed. Pass AnyLabel for the
// label-agnostic average.
func (c *Collector) Degree(label, relType int, dir Direction) float64 {
	avg, ok := c.table(dir).Lookup(label, relType)
	if !ok {
		return 0
	}
	return avg.Average()
}

// DegreeSamples returns how many observations back Degree(label, relType, dir).
func (c *Collector) DegreeSamples(label, relType int, dir Direction) int64 {
	avg, ok := c.table(dir).Lookup(label, relType)
	if !ok {
		return 0
	}
	return avg.Samples()
}

func (c *Collector) table(dir Direction) *DegreeTable {
	switch dir {
	case Incoming:
		return c.incoming
	case Outgoing:
		return c.outgoing
	default:
		return c.both
	}
}

// Table exposes the degree table for dir to read-only consumers such as writers.
func (c *Collector) Table(dir Direction) *DegreeTable {
	return c.table(dir)
}

// LiveFraction returns the fraction of sampled nodes that were live.
func (c *Collector) LiveFraction() float64 {
	return c.liveness.LiveRatio()
}

// MaxAddressableNodes returns the best known bound on the node population.
func (c *Collector) MaxAddressableNodes() int64 {
	return c.liveness.MaxAddressable()
}

// EstimatedLiveNodes extrapolates the live fraction to the population bound.
func (c *Collector) EstimatedLiveNodes() float64 {
	return c.liveness.EstimatedLiveNodes()
}

// SampledNodes returns how many live and skipped nodes were recorded.
func (c *Collector) SampledNodes() (live, dead int64) {
	return c.liveness.Live(), c.liveness.Dead()
}

// Labels returns every label id observed, ascending.
func (c *Collector) Labels() []int {
	return c.labels.IDs()
}

// RelationshipTypes returns every relationship type id observed, ascending.
func (c *Collector) RelationshipTypes() []int {
	return c.relTypes.IDs()
}

// Equal reports whether both collectors hold the same statistics. Parameters
// are not compared.
func (c *Collector) Equal(other *Collector) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.both.Equal(other.both) &&
		c.incoming.Equal(other.incoming) &&
		c.outgoing.Equal(other.outgoing) &&
		c.liveness.Equal(other.liveness) &&
		c.labels.Equal(other.labels) &&
		c.relTypes.Equal(other.relTypes)
}

// Fingerprint hashes the structure of the statistics: seen ids, degree buckets
// with their sample counts, and the liveness counters. Averages are left out
// so collectors that are Equal within tolerance share a fingerprint.
func (c *Collector) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}

	for _, dist := range []*statistic.FrequencyDistribution{c.labels, c.relTypes} {
		ids := dist.IDs()
		put(int64(len(ids)))
		for _, id := range ids {
			put(int64(id))
		}
	}
	for _, dir := range Directions() {
		t := c.table(dir)
		for _, label := range t.Labels() {
			put(int64(label))
			for _, relType := range t.RelTypes(label) {
				avg, _ := t.Lookup(label, relType)
				put(int64(relType))
				put(avg.Samples())
			}
		}
	}
	put(c.liveness.Live())
	put(c.liveness.Dead())
	put(c.liveness.MaxAddressable())
	return h.Sum64()
}
