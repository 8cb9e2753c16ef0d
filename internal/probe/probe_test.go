package probe

import (
	"GraphSpectra/internal/engine/protocol"
	"GraphSpectra/internal/model"
	"strings"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPass(t *testing.T) {
	input := `
# recorded pass
{"labels":[0,3],"rel_types":[1],"incoming":{"1":2},"outgoing":{"1":5}}
{"skipped":true}

{"max_nodes":1200}
{}
`
	events, err := ReadPass(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, model.EventObservation, events[0].Kind)
	assert.Equal(t, []int{0, 3}, events[0].Observation.Labels)
	assert.Equal(t, map[int]int64{1: 2}, events[0].Observation.Incoming)
	assert.Equal(t, map[int]int64{1: 5}, events[0].Observation.Outgoing)
	assert.Equal(t, model.EventSkipped, events[1].Kind)
	assert.Equal(t, &model.SampleEvent{Kind: model.EventMaxNodes, MaxNodes: 1200}, events[2])
	assert.Equal(t, model.EventObservation, events[3].Kind, "empty record is a node without labels")
}

func TestReadPass_BadLine(t *testing.T) {
	_, err := ReadPass(strings.NewReader("{\"skipped\":true}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestSubscriber_HandleMessage(t *testing.T) {
	var got []*model.SampleEvent
	s := &Subscriber{handler: func(ev *model.SampleEvent) { got = append(got, ev) }}

	s.handleMessage(&nats.Msg{Data: protocol.Marshal(&model.SampleEvent{Kind: model.EventMaxNodes, MaxNodes: 9})})
	s.handleMessage(&nats.Msg{Data: []byte{0xff}})
	s.handleMessage(&nats.Msg{Data: protocol.Marshal(&model.SampleEvent{Kind: model.EventPassEnd})})

	require.Len(t, got, 2, "undecodable messages are dropped")
	assert.Equal(t, int64(9), got[0].MaxNodes)
	assert.Equal(t, model.EventPassEnd, got[1].Kind)
}
