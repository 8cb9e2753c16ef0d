package heuristics

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"GraphSpectra/internal/heuristics/statistic"
)

// AnyLabel is the reserved label id under which every node's degrees are
// recorded regardless of its labels. Valid label ids are non-negative.
const AnyLabel = -1

// ErrUnknownDirection is returned when a direction name cannot be parsed.
var ErrUnknownDirection = errors.New("unknown direction")

// Direction selects which degree table a query reads.
type Direction uint8

const (
	Incoming Direction = iota
	Outgoing
	Both
)

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection parses "incoming", "outgoing" or "both".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming", "in":
		return Incoming, nil
	case "outgoing", "out":
		return Outgoing, nil
	case "both", "":
		return Both, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Directions lists every direction in table order.
func Directions() []Direction {
	return []Direction{Incoming, Outgoing, Both}
}

// DegreeTable maps label -> relationship type -> rolling degree average.
// The AnyLabel bucket exists from construction.
type DegreeTable struct {
	params  statistic.Parameters
	buckets map[int]map[int]*statistic.RollingAverage
}

// NewDegreeTable creates a table seeded with the AnyLabel bucket.
func NewDegreeTable(params statistic.Parameters) *DegreeTable {
	return &DegreeTable{
		params: params,
		buckets: map[int]map[int]*statistic.RollingAverage{
			AnyLabel: {},
		},
	}
}

// GetOrCreate returns the estimator for (label, relType), creating the label
// bucket and the estimator if either is missing.
func (t *DegreeTable) GetOrCreate(label, relType int) *statistic.RollingAverage {
	byType, ok := t.buckets[label]
	if !ok {
		byType = make(map[int]*statistic.RollingAverage)
		t.buckets[label] = byType
	}
	avg, ok := byType[relType]
	if !ok {
		avg = statistic.NewRollingAverage(t.params)
		byType[relType] = avg
	}
	return avg
}

// Lookup returns the estimator for (label, relType) if anything was observed there.
func (t *DegreeTable) Lookup(label, relType int) (*statistic.RollingAverage, bool) {
	avg, ok := t.buckets[label][relType]
	return avg, ok
}

// Labels returns the label buckets present, AnyLabel included, ascending.
func (t *DegreeTable) Labels() []int {
	return slices.Sorted(maps.Keys(t.buckets))
}

// RelTypes returns the relationship types observed under label, ascending.
func (t *DegreeTable) RelTypes(label int) []int {
	return slices.Sorted(maps.Keys(t.buckets[label]))
}

// Equal compares bucket structure and every estimator.
func (t *DegreeTable) Equal(other *DegreeTable) bool {
	if len(t.buckets) != len(other.buckets) {
		return false
	}
	for label, byType := range t.buckets {
		otherByType, ok := other.buckets[label]
		if !ok || len(byType) != len(otherByType) {
			return false
		}
		for relType, avg := range byType {
			if !avg.Equal(otherByType[relType]) {
				return false
			}
		}
	}
	return true
}

func (t *DegreeTable) state() map[int]map[int]statistic.RollingState {
	out := make(map[int]map[int]statistic.RollingState, len(t.buckets))
	for label, byType := range t.buckets {
		states := make(map[int]statistic.RollingState, len(byType))
		for relType, avg := range byType {
			states[relType] = avg.State()
		}
		out[label] = states
	}
	return out
}

func restoreDegreeTable(state map[int]map[int]statistic.RollingState, params statistic.Parameters) *DegreeTable {
	t := NewDegreeTable(params)
	for label, states := range state {
		byType, ok := t.buckets[label]
		if !ok {
			byType = make(map[int]*statistic.RollingAverage, len(states))
			t.buckets[label] = byType
		}
		for relType, s := range states {
			byType[relType] = statistic.RestoreRollingAverage(s, params)
		}
	}
	return t
}
