// Package schema holds the topic descriptor registry: per-topic field
// descriptors, Avro wire schemas, synthetic data derivation and custom
// field validation.
package schema

import (
	"fmt"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
)

// Reserved field names stamped by the pipelines into every message.
const (
	FieldSeqNum   = "private_seqNum"
	FieldSndStamp = "private_sndStamp"
	FieldRcvStamp = "private_rcvStamp"
	FieldIndex    = "private_index"
)

// FieldKind enumerates the scalar and array shapes a topic field may have.
// Anything else coming out of the metadata source is a configuration error.
type FieldKind int

const (
	KindInvalid FieldKind = iota
	KindInt64
	KindFloat64
	KindString
	KindInt64Array
	KindFloat64Array
)

func (k FieldKind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindInt64Array:
		return "int64[]"
	case KindFloat64Array:
		return "float64[]"
	default:
		return "invalid"
	}
}

// FieldDescriptor describes one field of a topic. Count is the fixed element
// count for array kinds and zero otherwise.
type FieldDescriptor struct {
	Name  string
	Kind  FieldKind
	Count int
}

// TopicDescriptor maps a topic's logical name to its wire name, registry
// subject and field set. Immutable after load.
type TopicDescriptor struct {
	LogicalName string
	WireName    string
	Subject     string
	Indexed     bool

	// Fields excludes the reserved private_* fields, which are implied.
	Fields []FieldDescriptor
}

// ComponentDescriptor is the read-only topic registry for one component.
type ComponentDescriptor struct {
	Name    string
	Indexed bool
	Topics  map[string]*TopicDescriptor
}

// Topic looks up a topic by logical name.
func (c *ComponentDescriptor) Topic(logicalName string) (*TopicDescriptor, error) {
	td, ok := c.Topics[logicalName]
	if !ok {
		return nil, fmt.Errorf("%w: %q in component %q", errspkg.ErrUnknownTopic, logicalName, c.Name)
	}
	return td, nil
}

// FieldMapping is the single internal representation of a message's fields.
// Values are int64, float64, string, []int64 or []float64.
type FieldMapping = map[string]any

// AllFields returns the full field set of the topic in a stable order:
// reserved fields first, then the topic's own fields.
func (td *TopicDescriptor) AllFields() []FieldDescriptor {
	fields := make([]FieldDescriptor, 0, len(td.Fields)+4)
	fields = append(fields,
		FieldDescriptor{Name: FieldSeqNum, Kind: KindInt64},
		FieldDescriptor{Name: FieldSndStamp, Kind: KindFloat64},
		FieldDescriptor{Name: FieldRcvStamp, Kind: KindFloat64},
	)
	if td.Indexed {
		fields = append(fields, FieldDescriptor{Name: FieldIndex, Kind: KindInt64})
	}
	return append(fields, td.Fields...)
}
