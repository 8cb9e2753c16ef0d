package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeDegree marks an observation carrying a negative edge count.
	ErrNegativeDegree = errors.New("negative degree count")
	// ErrNegativeID marks an observation carrying a negative label or relationship type id.
	ErrNegativeID = errors.New("negative id")
)

// NodeObservation holds what the sampling pass saw on a single node.
type NodeObservation struct {
	// Label ids carried by the node.
	Labels []int
	// Relationship type ids the node participates in.
	RelTypes []int
	// Incoming edge count per relationship type.
	Incoming map[int]int64
	// Outgoing edge count per relationship type.
	Outgoing map[int]int64
}

// Validate checks the caller contract of an observation: ids and counts are non-negative.
func (o NodeObservation) Validate() error {
	for _, id := range o.Labels {
		if id < 0 {
			return fmt.Errorf("%w: label %d", ErrNegativeID, id)
		}
	}
	for _, id := range o.RelTypes {
		if id < 0 {
			return fmt.Errorf("%w: relationship type %d", ErrNegativeID, id)
		}
	}
	for _, degrees := range []map[int]int64{o.Incoming, o.Outgoing} {
		for relType, count := range degrees {
			if relType < 0 {
				return fmt.Errorf("%w: relationship type %d", ErrNegativeID, relType)
			}
			if count < 0 {
				return fmt.Errorf("%w: %d edges of type %d", ErrNegativeDegree, count, relType)
			}
		}
	}
	return nil
}

// EventKind tells what a SampleEvent carries.
type EventKind uint8

const (
	EventObservation EventKind = iota + 1
	EventSkipped
	EventMaxNodes
	EventPassEnd
)

func (k EventKind) String() string {
	switch k {
	case EventObservation:
		return "observation"
	case EventSkipped:
		return "skipped"
	case EventMaxNodes:
		return "max_nodes"
	case EventPassEnd:
		return "pass_end"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// SampleEvent is one message of a sampling pass as emitted by the sampling driver.
type SampleEvent struct {
	Kind        EventKind
	Observation NodeObservation // set for EventObservation
	MaxNodes    int64           // set for EventMaxNodes
}
