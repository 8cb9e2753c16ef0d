package heuristics

import (
	"bytes"
	"encoding/gob"
	"testing"

	"GraphSpectra/internal/heuristics/statistic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_GobRoundTrip(t *testing.T) {
	c := NewCollector()
	feed(c, sampleObservations())

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(c.Snapshot()))

	var snap Snapshot
	require.NoError(t, gob.NewDecoder(&buf).Decode(&snap))

	restored, err := Restore(&snap, statistic.DefaultParameters())
	require.NoError(t, err)
	assert.True(t, c.Equal(restored))
	assert.Equal(t, c.Fingerprint(), restored.Fingerprint())
	assert.Equal(t, c.Degree(labelB, relR, Outgoing), restored.Degree(labelB, relR, Outgoing))
	assert.Equal(t, c.LiveFraction(), restored.LiveFraction())
	assert.Equal(t, int64(50), restored.MaxAddressableNodes())
}

func TestRestore_RequiresParameters(t *testing.T) {
	_, err := Restore(NewCollector().Snapshot(), statistic.Parameters{})
	require.ErrorIs(t, err, statistic.ErrInvalidParameters)
}

func TestRestore_AcceptsIngestionAfterReload(t *testing.T) {
	c := NewCollector()
	feed(c, sampleObservations())

	restored, err := Restore(c.Snapshot(), statistic.DefaultParameters())
	require.NoError(t, err)

	restored.RecordObservation([]int{labelC}, []int{relR}, map[int]int64{relR: 6}, nil)
	restored.Recalculate()
	assert.Equal(t, 6.0, restored.Degree(labelC, relR, Incoming))
	assert.Equal(t, 0.25, restored.LabelFrequency(labelC))
}

func TestRestore_PartialSnapshot(t *testing.T) {
	partial := &Snapshot{
		Incoming: map[int]map[int]statistic.RollingState{
			labelA: {relR: {Samples: 2, Average: 1.5}},
		},
	}
	c, err := Restore(partial, statistic.DefaultParameters())
	require.NoError(t, err)

	assert.Equal(t, 1.5, c.Degree(labelA, relR, Incoming))
	for _, dir := range Directions() {
		assert.Contains(t, c.Table(dir).Labels(), AnyLabel, dir.String())
	}

	c.RecordObservation(nil, nil, nil, map[int]int64{relS: 1})
	c.Recalculate()
	assert.Equal(t, 1.0, c.Degree(AnyLabel, relS, Outgoing))
	assert.Equal(t, 1.0, c.LiveFraction())
}

func TestRestore_NilSnapshot(t *testing.T) {
	c, err := Restore(nil, statistic.DefaultParameters())
	require.NoError(t, err)
	assert.True(t, c.Equal(NewCollector()))
}

func TestSnapshot_Detached(t *testing.T) {
	c := NewCollector()
	feed(c, sampleObservations())
	snap := c.Snapshot()

	c.RecordObservation([]int{labelA}, nil, map[int]int64{relR: 100}, nil)
	restored, err := Restore(snap, statistic.DefaultParameters())
	require.NoError(t, err)
	assert.Equal(t, 3.0, restored.Degree(labelA, relR, Incoming))
}
