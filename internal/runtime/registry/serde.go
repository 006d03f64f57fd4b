package registry

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/linkedin/goavro/v2"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// Confluent wire format: one magic byte, the schema id as a big-endian
// uint32, then the Avro binary payload.
const (
	wireMagicByte  = byte(0)
	wireHeaderSize = 5
)

// Serializer encodes field mappings for one topic using its registered
// schema id.
type Serializer struct {
	registration SchemaRegistration
	codec        *goavro.Codec
}

// NewSerializer builds a serializer from the topic's registration. The codec
// is compiled once from the same schema that was registered.
func NewSerializer(td *schema.TopicDescriptor, registration SchemaRegistration) (*Serializer, error) {
	avroSchema, err := schema.AvroSchema(td)
	if err != nil {
		return nil, err
	}
	codec, err := goavro.NewCodec(avroSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile avro codec for %q: %w", td.LogicalName, err)
	}
	return &Serializer{registration: registration, codec: codec}, nil
}

// SchemaID returns the registered schema id embedded in every frame.
func (s *Serializer) SchemaID() int {
	return s.registration.SchemaID
}

// Encode renders the field mapping as a schema-id-prefixed binary frame.
func (s *Serializer) Encode(data schema.FieldMapping) ([]byte, error) {
	payload, err := s.codec.BinaryFromNative(nil, toNative(data))
	if err != nil {
		return nil, fmt.Errorf("failed to encode message for subject %q: %w", s.registration.Subject, err)
	}

	frame := make([]byte, wireHeaderSize, wireHeaderSize+len(payload))
	frame[0] = wireMagicByte
	binary.BigEndian.PutUint32(frame[1:wireHeaderSize], uint32(s.registration.SchemaID))
	return append(frame, payload...), nil
}

// Deserializer decodes schema-id-prefixed frames, resolving the embedded id
// through the registry client. Codecs are cached per id.
type Deserializer struct {
	client Client

	mu     sync.Mutex
	codecs map[int]*goavro.Codec
}

func NewDeserializer(client Client) *Deserializer {
	return &Deserializer{client: client, codecs: make(map[int]*goavro.Codec)}
}

// Decode parses the frame for the given topic and returns the embedded
// schema id together with the decoded field mapping.
func (d *Deserializer) Decode(td *schema.TopicDescriptor, frame []byte) (int, schema.FieldMapping, error) {
	if len(frame) < wireHeaderSize {
		return 0, nil, errspkg.MessageError{
			Topic: td.WireName,
			Err:   fmt.Errorf("frame too short: %d bytes", len(frame)),
		}
	}
	if frame[0] != wireMagicByte {
		return 0, nil, errspkg.MessageError{
			Topic: td.WireName,
			Err:   fmt.Errorf("unexpected magic byte 0x%02x", frame[0]),
		}
	}
	schemaID := int(binary.BigEndian.Uint32(frame[1:wireHeaderSize]))

	codec, err := d.codecFor(td.Subject, schemaID)
	if err != nil {
		return 0, nil, err
	}

	native, _, err := codec.NativeFromBinary(frame[wireHeaderSize:])
	if err != nil {
		return 0, nil, errspkg.MessageError{
			Topic: td.WireName,
			Err:   fmt.Errorf("avro decode failed: %w", err),
		}
	}
	record, ok := native.(map[string]any)
	if !ok {
		return 0, nil, errspkg.MessageError{
			Topic: td.WireName,
			Err:   fmt.Errorf("decoded value is %T, not a record", native),
		}
	}
	return schemaID, fromNative(td, record), nil
}

func (d *Deserializer) codecFor(subject string, schemaID int) (*goavro.Codec, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if codec, ok := d.codecs[schemaID]; ok {
		return codec, nil
	}

	info, err := d.client.GetBySubjectAndID(subject, schemaID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema id %d for subject %q: %w", schemaID, subject, err)
	}
	codec, err := goavro.NewCodec(info.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile avro codec for schema id %d: %w", schemaID, err)
	}
	d.codecs[schemaID] = codec
	return codec, nil
}

// toNative converts a field mapping into the shape goavro expects: typed
// slices become []any.
func toNative(data schema.FieldMapping) map[string]any {
	native := make(map[string]any, len(data))
	for name, value := range data {
		switch v := value.(type) {
		case []int64:
			arr := make([]any, len(v))
			for i, e := range v {
				arr[i] = e
			}
			native[name] = arr
		case []float64:
			arr := make([]any, len(v))
			for i, e := range v {
				arr[i] = e
			}
			native[name] = arr
		default:
			native[name] = value
		}
	}
	return native
}

// fromNative converts goavro's decoded record back into the internal field
// mapping representation, using the descriptor to restore typed slices.
func fromNative(td *schema.TopicDescriptor, record map[string]any) schema.FieldMapping {
	data := make(schema.FieldMapping, len(record))
	kinds := make(map[string]schema.FieldKind, len(record))
	for _, fd := range td.AllFields() {
		kinds[fd.Name] = fd.Kind
	}

	for name, value := range record {
		switch kinds[name] {
		case schema.KindInt64Array:
			raw, _ := value.([]any)
			arr := make([]int64, len(raw))
			for i, e := range raw {
				arr[i], _ = e.(int64)
			}
			data[name] = arr
		case schema.KindFloat64Array:
			raw, _ := value.([]any)
			arr := make([]float64, len(raw))
			for i, e := range raw {
				arr[i], _ = e.(float64)
			}
			data[name] = arr
		default:
			data[name] = value
		}
	}
	return data
}
