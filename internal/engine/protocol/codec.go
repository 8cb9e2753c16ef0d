package protocol

import (
	"GraphSpectra/internal/model"
	"errors"
	"fmt"
	"maps"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the SampleEvent message on the wire.
const (
	fieldKind     protowire.Number = 1
	fieldLabels   protowire.Number = 2
	fieldRelTypes protowire.Number = 3
	fieldIncoming protowire.Number = 4
	fieldOutgoing protowire.Number = 5
	fieldMaxNodes protowire.Number = 6

	// DegreeEntry
	fieldEntryType  protowire.Number = 1
	fieldEntryCount protowire.Number = 2
)

// ErrMalformedEvent is returned when a message cannot be decoded as a SampleEvent.
var ErrMalformedEvent = errors.New("malformed sample event")

// Marshal encodes a SampleEvent in protobuf wire format. Ids and counts are
// zigzag encoded; map entries are written in ascending key order.
func Marshal(ev *model.SampleEvent) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ev.Kind))

	switch ev.Kind {
	case model.EventObservation:
		obs := ev.Observation
		b = appendPacked(b, fieldLabels, obs.Labels)
		b = appendPacked(b, fieldRelTypes, obs.RelTypes)
		b = appendDegrees(b, fieldIncoming, obs.Incoming)
		b = appendDegrees(b, fieldOutgoing, obs.Outgoing)
	case model.EventMaxNodes:
		b = protowire.AppendTag(b, fieldMaxNodes, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(ev.MaxNodes))
	}
	return b
}

func appendPacked(b []byte, num protowire.Number, ids []int) []byte {
	if len(ids) == 0 {
		return b
	}
	var packed []byte
	for _, id := range ids {
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(int64(id)))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func appendDegrees(b []byte, num protowire.Number, degrees map[int]int64) []byte {
	for _, relType := range slices.Sorted(maps.Keys(degrees)) {
		var entry []byte
		entry = protowire.AppendTag(entry, fieldEntryType, protowire.VarintType)
		entry = protowire.AppendVarint(entry, protowire.EncodeZigZag(int64(relType)))
		entry = protowire.AppendTag(entry, fieldEntryCount, protowire.VarintType)
		entry = protowire.AppendVarint(entry, protowire.EncodeZigZag(degrees[relType]))

		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

// Unmarshal decodes a SampleEvent. Unknown fields are skipped.
func Unmarshal(data []byte) (*model.SampleEvent, error) {
	ev := &model.SampleEvent{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: kind: %v", ErrMalformedEvent, protowire.ParseError(n))
			}
			ev.Kind = model.EventKind(v)
			data = data[n:]
		case (num == fieldLabels || num == fieldRelTypes) && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: ids: %v", ErrMalformedEvent, protowire.ParseError(n))
			}
			ids, err := consumePacked(v)
			if err != nil {
				return nil, err
			}
			if num == fieldLabels {
				ev.Observation.Labels = append(ev.Observation.Labels, ids...)
			} else {
				ev.Observation.RelTypes = append(ev.Observation.RelTypes, ids...)
			}
			data = data[n:]
		case (num == fieldIncoming || num == fieldOutgoing) && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: degree entry: %v", ErrMalformedEvent, protowire.ParseError(n))
			}
			relType, count, err := consumeDegree(v)
			if err != nil {
				return nil, err
			}
			target := &ev.Observation.Incoming
			if num == fieldOutgoing {
				target = &ev.Observation.Outgoing
			}
			if *target == nil {
				*target = make(map[int]int64)
			}
			(*target)[relType] = count
			data = data[n:]
		case num == fieldMaxNodes && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: max nodes: %v", ErrMalformedEvent, protowire.ParseError(n))
			}
			ev.MaxNodes = protowire.DecodeZigZag(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrMalformedEvent, num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	switch ev.Kind {
	case model.EventObservation, model.EventSkipped, model.EventMaxNodes, model.EventPassEnd:
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformedEvent, ev.Kind)
	}
}

func consumePacked(b []byte) ([]int, error) {
	var ids []int
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: packed id: %v", ErrMalformedEvent, protowire.ParseError(n))
		}
		ids = append(ids, int(protowire.DecodeZigZag(v)))
		b = b[n:]
	}
	return ids, nil
}

func consumeDegree(b []byte) (int, int64, error) {
	var relType, count int64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, 0, fmt.Errorf("%w: degree tag: %v", ErrMalformedEvent, protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.VarintType || (num != fieldEntryType && num != fieldEntryCount) {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, 0, fmt.Errorf("%w: degree field %d: %v", ErrMalformedEvent, num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return 0, 0, fmt.Errorf("%w: degree value: %v", ErrMalformedEvent, protowire.ParseError(n))
		}
		if num == fieldEntryType {
			relType = protowire.DecodeZigZag(v)
		} else {
			count = protowire.DecodeZigZag(v)
		}
		b = b[n:]
	}
	return int(relType), count, nil
}
