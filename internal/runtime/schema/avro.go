package schema

import (
	"fmt"
	"strings"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/jsoncodec"
)

type avroField struct {
	Name string `json:"name"`
	Type any    `json:"type"`
}

type avroRecord struct {
	Type      string      `json:"type"`
	Name      string      `json:"name"`
	Namespace string      `json:"namespace,omitempty"`
	Fields    []avroField `json:"fields"`
}

// AvroSchema renders the topic's Avro record schema as JSON. The record name
// is derived from the wire name so schemas registered under different
// subjects never collide.
func AvroSchema(td *TopicDescriptor) (string, error) {
	record := avroRecord{
		Type:   "record",
		Name:   recordName(td.WireName),
		Fields: make([]avroField, 0, len(td.Fields)+4),
	}
	for _, fd := range td.AllFields() {
		avroType, err := avroTypeFor(fd.Kind)
		if err != nil {
			return "", errspkg.ConfigurationError{
				Detail: fmt.Sprintf("field %q of topic %q", fd.Name, td.LogicalName),
				Err:    err,
			}
		}
		record.Fields = append(record.Fields, avroField{Name: fd.Name, Type: avroType})
	}

	data, err := jsoncodec.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to render avro schema for %q: %w", td.LogicalName, err)
	}
	return string(data), nil
}

func avroTypeFor(kind FieldKind) (any, error) {
	switch kind {
	case KindInt64:
		return "long", nil
	case KindFloat64:
		return "double", nil
	case KindString:
		return "string", nil
	case KindInt64Array:
		return map[string]any{"type": "array", "items": "long"}, nil
	case KindFloat64Array:
		return map[string]any{"type": "array", "items": "double"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errspkg.ErrUnsupportedFieldKind, kind)
	}
}

// recordName turns a wire topic name into a valid Avro record name.
func recordName(wireName string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(wireName)
}
