package statistic

import (
	"maps"
	"slices"
)

// FrequencyDistribution tracks how often small integer ids occur across
// observations. Each observation contributes at most once per id, so Get
// answers "what fraction of observations carried this id".
type FrequencyDistribution struct {
	tolerance    float64
	observations int64
	counts       map[int]int64
	frequencies  map[int]float64
}

// DistributionState is the persisted form of a FrequencyDistribution.
type DistributionState struct {
	Observations int64
	Counts       map[int]int64
	Frequencies  map[int]float64
}

// NewFrequencyDistribution creates an empty distribution comparing within tolerance.
func NewFrequencyDistribution(tolerance float64) *FrequencyDistribution {
	return &FrequencyDistribution{
		tolerance:   tolerance,
		counts:      make(map[int]int64),
		frequencies: make(map[int]float64),
	}
}

// RestoreFrequencyDistribution rebuilds a distribution from its persisted state.
func RestoreFrequencyDistribution(state DistributionState, tolerance float64) *FrequencyDistribution {
	d := NewFrequencyDistribution(tolerance)
	d.observations = state.Observations
	maps.Copy(d.counts, state.Counts)
	maps.Copy(d.frequencies, state.Frequencies)
	return d
}

// Record counts one observation carrying the given ids. Duplicates inside ids
// are counted once.
func (d *FrequencyDistribution) Record(ids []int) {
	d.observations++
	for i, id := range ids {
		if slices.Contains(ids[:i], id) {
			continue
		}
		d.counts[id]++
	}
}

// Recalculate finalizes frequencies after a batch of records.
func (d *FrequencyDistribution) Recalculate() {
	clear(d.frequencies)
	if d.observations == 0 {
		return
	}
	for id, c := range d.counts {
		d.frequencies[id] = float64(c) / float64(d.observations)
	}
}

// Get returns the frequency of id as of the last Recalculate, 0 if unseen.
func (d *FrequencyDistribution) Get(id int) float64 {
	return d.frequencies[id]
}

// Observations returns the number of recorded observations.
func (d *FrequencyDistribution) Observations() int64 {
	return d.observations
}

// IDs returns every id seen so far in ascending order.
func (d *FrequencyDistribution) IDs() []int {
	return slices.Sorted(maps.Keys(d.counts))
}

// State exports the persisted form.
func (d *FrequencyDistribution) State() DistributionState {
	return DistributionState{
		Observations: d.observations,
		Counts:       maps.Clone(d.counts),
		Frequencies:  maps.Clone(d.frequencies),
	}
}

// Equal reports whether both distributions know the same ids with
// frequencies within the tolerance.
func (d *FrequencyDistribution) Equal(other *FrequencyDistribution) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.counts) != len(other.counts) || len(d.frequencies) != len(other.frequencies) {
		return false
	}
	for id := range d.counts {
		if _, ok := other.counts[id]; !ok {
			return false
		}
	}
	for id, f := range d.frequencies {
		g, ok := other.frequencies[id]
		if !ok || !ApproxEqual(f, g, d.tolerance) {
			return false
		}
	}
	return true
}
