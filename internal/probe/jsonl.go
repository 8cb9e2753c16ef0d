package probe

import (
	"GraphSpectra/internal/model"
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Line is one JSON-lines record of a recorded sampling pass. A record is
// either a node observation, a skipped node ("skipped": true) or a
// population bound ("max_nodes").
type Line struct {
	Labels   []int         `json:"labels,omitempty"`
	RelTypes []int         `json:"rel_types,omitempty"`
	Incoming map[int]int64 `json:"incoming,omitempty"`
	Outgoing map[int]int64 `json:"outgoing,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	MaxNodes *int64        `json:"max_nodes,omitempty"`
}

// Event converts the record into a sample event.
func (l Line) Event() *model.SampleEvent {
	switch {
	case l.MaxNodes != nil:
		return &model.SampleEvent{Kind: model.EventMaxNodes, MaxNodes: *l.MaxNodes}
	case l.Skipped:
		return &model.SampleEvent{Kind: model.EventSkipped}
	default:
		return &model.SampleEvent{
			Kind: model.EventObservation,
			Observation: model.NodeObservation{
				Labels:   l.Labels,
				RelTypes: l.RelTypes,
				Incoming: l.Incoming,
				Outgoing: l.Outgoing,
			},
		}
	}
}

// ReadPass parses a JSON-lines pass. Blank lines and lines starting with '#'
// are ignored.
func ReadPass(r io.Reader) ([]*model.SampleEvent, error) {
	var events []*model.SampleEvent
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var line Line
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, line.Event())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pass: %w", err)
	}
	return events, nil
}
