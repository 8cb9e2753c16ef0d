package heuristics

import (
	"testing"

	"GraphSpectra/internal/heuristics/statistic"
	"GraphSpectra/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	labelA = 0
	labelB = 1
	labelC = 2

	relR = 7
	relS = 8
)

func TestCollector_UnseenLabelFrequencyIsZero(t *testing.T) {
	c := NewCollector()
	c.RecordObservation([]int{labelA}, []int{relR}, nil, nil)
	c.Recalculate()

	for _, label := range []int{labelB, labelC, 100, AnyLabel} {
		assert.Equal(t, 0.0, c.LabelFrequency(label), "label %d", label)
	}
	assert.Equal(t, 0.0, c.RelationshipTypeFrequency(relS))
}

func TestCollector_SingleObservationDegrees(t *testing.T) {
	c := NewCollector()
	c.RecordObservation([]int{labelA}, []int{relR},
		map[int]int64{relR: 3}, map[int]int64{relR: 2})
	c.Recalculate()

	assert.Equal(t, 3.0, c.Degree(labelA, relR, Incoming))
	assert.Equal(t, 2.0, c.Degree(labelA, relR, Outgoing))
	assert.Equal(t, 3.0, c.Degree(AnyLabel, relR, Incoming))
	assert.Equal(t, 2.0, c.Degree(AnyLabel, relR, Outgoing))
	assert.Equal(t, 0.0, c.Degree(labelB, relR, Incoming))
	assert.Equal(t, 0.0, c.Degree(labelA, relS, Incoming))

	assert.Equal(t, 1.0, c.LabelFrequency(labelA))
	assert.Equal(t, 1.0, c.RelationshipTypeFrequency(relR))
}

func TestCollector_BothFoldsIncomingAndOutgoingIntoOneEstimator(t *testing.T) {
	c := NewCollector()
	c.RecordObservation([]int{labelA}, []int{relR},
		map[int]int64{relR: 3}, map[int]int64{relR: 2})
	c.Recalculate()

	expected := statistic.NewRollingAverage(statistic.DefaultParameters())
	expected.Record(3)
	expected.Record(2)
	assert.InDelta(t, expected.Average(), c.Degree(labelA, relR, Both), 1e-12)
	assert.Equal(t, int64(2), c.DegreeSamples(labelA, relR, Both))

	// A second node with only incoming edges separates the union of evidence
	// [3, 2, 3] from the mean of the per-direction averages (3 + 2) / 2.
	c.RecordObservation([]int{labelA}, []int{relR}, map[int]int64{relR: 3}, nil)
	c.Recalculate()
	assert.InDelta(t, 8.0/3.0, c.Degree(labelA, relR, Both), 1e-12)
	assert.Equal(t, 2.0, c.Degree(labelA, relR, Outgoing))
	assert.Equal(t, 3.0, c.Degree(labelA, relR, Incoming))
}

func TestCollector_FansOutToEveryLabelAndSentinel(t *testing.T) {
	c := NewCollector()
	c.RecordObservation([]int{labelA, labelB}, []int{relR}, map[int]int64{relR: 1}, nil)
	c.Recalculate()

	assert.Equal(t, 1.0, c.Degree(labelA, relR, Incoming))
	assert.Equal(t, 1.0, c.Degree(labelB, relR, Incoming))
	assert.Equal(t, 1.0, c.Degree(AnyLabel, relR, Incoming))
	assert.Equal(t, 0.0, c.Degree(labelC, relR, Incoming))
	assert.Equal(t, 0.0, c.Degree(labelA, relR, Outgoing))
}

func TestCollector_UnlabeledNodesOnlyFeedSentinel(t *testing.T) {
	c := NewCollector()
	c.RecordObservation(nil, []int{relR}, nil, map[int]int64{relR: 4})
	c.RecordObservation([]int{labelA}, []int{relR}, nil, map[int]int64{relR: 2})
	c.Recalculate()

	assert.Equal(t, 3.0, c.Degree(AnyLabel, relR, Outgoing))
	assert.Equal(t, 2.0, c.Degree(labelA, relR, Outgoing))
	assert.Equal(t, 0.5, c.LabelFrequency(labelA))
}

func TestCollector_DuplicateLabelsCountOnce(t *testing.T) {
	c := NewCollector()
	c.RecordObservation([]int{labelA, labelA}, []int{relR}, map[int]int64{relR: 5}, nil)
	c.Recalculate()

	assert.Equal(t, int64(1), c.DegreeSamples(labelA, relR, Incoming))
	assert.Equal(t, 1.0, c.LabelFrequency(labelA))
}

func TestCollector_LiveFraction(t *testing.T) {
	c := NewCollector()
	c.Recalculate()
	assert.Equal(t, 0.0, c.LiveFraction())
	assert.Equal(t, int64(0), c.MaxAddressableNodes())

	dead := NewCollector()
	for range 5 {
		dead.RecordSkippedObservation()
	}
	dead.Recalculate()
	assert.Equal(t, 0.0, dead.LiveFraction())

	mixed := NewCollector()
	for range 3 {
		mixed.RecordObservation([]int{labelA}, nil, nil, nil)
	}
	mixed.RecordSkippedObservation()
	mixed.Recalculate()
	assert.Equal(t, 0.75, mixed.LiveFraction())

	live, skipped := mixed.SampledNodes()
	assert.Equal(t, int64(3), live)
	assert.Equal(t, int64(1), skipped)
}

func TestCollector_MaxAddressablePopulation(t *testing.T) {
	c := NewCollector()
	c.SetMaxAddressablePopulation(1000)
	assert.Equal(t, int64(0), c.MaxAddressableNodes(), "visible after recalculation")

	c.RecordObservation([]int{labelA}, nil, nil, nil)
	c.RecordSkippedObservation()
	c.Recalculate()
	assert.Equal(t, int64(1000), c.MaxAddressableNodes())
	assert.Equal(t, 500.0, c.EstimatedLiveNodes())
}

func TestCollector_RecalculateIsIdempotent(t *testing.T) {
	c := NewCollector()
	c.RecordObservation([]int{labelA}, []int{relR}, nil, nil)
	c.RecordObservation([]int{labelB}, nil, nil, nil)
	c.RecordSkippedObservation()
	c.Recalculate()

	first := []float64{c.LabelFrequency(labelA), c.RelationshipTypeFrequency(relR), c.LiveFraction()}
	c.Recalculate()
	second := []float64{c.LabelFrequency(labelA), c.RelationshipTypeFrequency(relR), c.LiveFraction()}
	assert.Equal(t, first, second)
}

func feed(c *Collector, observations []model.NodeObservation) {
	for _, obs := range observations {
		c.Record(obs)
	}
	c.RecordSkippedObservation()
	c.SetMaxAddressablePopulation(50)
	c.Recalculate()
}

func sampleObservations() []model.NodeObservation {
	return []model.NodeObservation{
		{Labels: []int{labelA}, RelTypes: []int{relR}, Incoming: map[int]int64{relR: 3}, Outgoing: map[int]int64{relR: 1}},
		{Labels: []int{labelA, labelB}, RelTypes: []int{relR, relS}, Incoming: map[int]int64{relS: 2}, Outgoing: map[int]int64{relR: 4}},
		{Labels: nil, RelTypes: []int{relS}, Outgoing: map[int]int64{relS: 9}},
	}
}

func TestCollector_Equal(t *testing.T) {
	a := NewCollector()
	b := NewCollector()
	feed(a, sampleObservations())
	feed(b, sampleObservations())

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.RecordObservation([]int{labelC}, nil, nil, nil)
	b.Recalculate()
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestCollector_EqualIgnoresParameters(t *testing.T) {
	a := NewCollector()
	b, err := NewCollectorWithParameters(statistic.Parameters{EqualityTolerance: 0.01, WindowSize: 1024})
	require.NoError(t, err)
	feed(a, sampleObservations())
	feed(b, sampleObservations())

	assert.True(t, a.Equal(b))
}

func TestCollector_EmptyCollectorsEqual(t *testing.T) {
	assert.True(t, NewCollector().Equal(NewCollector()))
	assert.False(t, NewCollector().Equal(nil))
}

func TestNewCollectorWithParameters_Invalid(t *testing.T) {
	_, err := NewCollectorWithParameters(statistic.Parameters{WindowSize: -1})
	require.ErrorIs(t, err, statistic.ErrInvalidParameters)
}

func TestCollector_SentinelSeeded(t *testing.T) {
	c := NewCollector()
	for _, dir := range Directions() {
		assert.Equal(t, []int{AnyLabel}, c.Table(dir).Labels(), dir.String())
		assert.Empty(t, c.Table(dir).RelTypes(AnyLabel))
	}
}

func TestCollector_ObservedIDs(t *testing.T) {
	c := NewCollector()
	feed(c, sampleObservations())
	assert.Equal(t, []int{labelA, labelB}, c.Labels())
	assert.Equal(t, []int{relR, relS}, c.RelationshipTypes())
	assert.Equal(t, []int{AnyLabel, labelA, labelB}, c.Table(Outgoing).Labels())
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"incoming": Incoming, "OUT": Outgoing, "both": Both, "": Both,
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDirection("sideways")
	require.ErrorIs(t, err, ErrUnknownDirection)
}
