package registry

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/logging"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// fakeClient mimics the registry's idempotent Register semantics: the same
// subject+schema pair always yields the same id.
type fakeClient struct {
	nextID    int
	bySchema  map[string]int
	schemas   map[int]schemaregistry.SchemaInfo
	registerN int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		nextID:   1,
		bySchema: map[string]int{},
		schemas:  map[int]schemaregistry.SchemaInfo{},
	}
}

func (f *fakeClient) Register(subject string, info schemaregistry.SchemaInfo, _ bool) (int, error) {
	f.registerN++
	key := subject + "\x00" + info.Schema
	if id, ok := f.bySchema[key]; ok {
		return id, nil
	}
	id := f.nextID
	f.nextID++
	f.bySchema[key] = id
	f.schemas[id] = info
	return id, nil
}

func (f *fakeClient) GetBySubjectAndID(_ string, id int) (schemaregistry.SchemaInfo, error) {
	info, ok := f.schemas[id]
	if !ok {
		return schemaregistry.SchemaInfo{}, fmt.Errorf("schema id %d not found", id)
	}
	return info, nil
}

func testTopic() *schema.TopicDescriptor {
	return &schema.TopicDescriptor{
		LogicalName: "evt_scalars",
		WireName:    "bench.Test.evt_scalars",
		Subject:     "bench.Test.evt_scalars-value",
		Indexed:     true,
		Fields: []schema.FieldDescriptor{
			{Name: "int0", Kind: schema.KindInt64},
			{Name: "float0", Kind: schema.KindFloat64},
			{Name: "string0", Kind: schema.KindString},
			{Name: "arr0", Kind: schema.KindFloat64Array, Count: 3},
		},
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	client := newFakeClient()
	registrar := NewRegistrar(client, logging.Nop())
	td := testTopic()

	first, err := registrar.Register(td)
	if err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	second, err := registrar.Register(td)
	if err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	if first.SchemaID != second.SchemaID {
		t.Errorf("schema ids differ: %d vs %d", first.SchemaID, second.SchemaID)
	}
	if first.Subject != td.Subject {
		t.Errorf("Subject = %q, want %q", first.Subject, td.Subject)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	client := newFakeClient()
	registrar := NewRegistrar(client, logging.Nop())
	td := testTopic()

	registration, err := registrar.Register(td)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	serializer, err := NewSerializer(td, registration)
	if err != nil {
		t.Fatalf("NewSerializer failed: %v", err)
	}

	in, err := schema.SyntheticData(td)
	if err != nil {
		t.Fatalf("SyntheticData failed: %v", err)
	}
	in[schema.FieldSeqNum] = int64(7)
	in[schema.FieldSndStamp] = 1234.5

	frame, err := serializer.Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if frame[0] != 0 {
		t.Errorf("magic byte = 0x%02x, want 0x00", frame[0])
	}

	deserializer := NewDeserializer(client)
	schemaID, out, err := deserializer.Decode(td, frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if schemaID != registration.SchemaID {
		t.Errorf("schema id = %d, want %d", schemaID, registration.SchemaID)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in  %#v\n out %#v", in, out)
	}
}

func TestDecodeCachesCodecs(t *testing.T) {
	client := newFakeClient()
	registrar := NewRegistrar(client, logging.Nop())
	td := testTopic()

	registration, _ := registrar.Register(td)
	serializer, _ := NewSerializer(td, registration)
	data, _ := schema.SyntheticData(td)
	frame, _ := serializer.Encode(data)

	deserializer := NewDeserializer(client)
	for i := 0; i < 3; i++ {
		if _, _, err := deserializer.Decode(td, frame); err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
	}
	if len(deserializer.codecs) != 1 {
		t.Errorf("codec cache size = %d, want 1", len(deserializer.codecs))
	}
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	deserializer := NewDeserializer(newFakeClient())
	td := testTopic()

	tests := []struct {
		name  string
		frame []byte
	}{
		{"short frame", []byte{0, 0, 0}},
		{"bad magic", []byte{1, 0, 0, 0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := deserializer.Decode(td, tt.frame)
			var msgErr errspkg.MessageError
			if !errors.As(err, &msgErr) {
				t.Fatalf("got %T (%v), want MessageError", err, err)
			}
		})
	}
}

func TestEncodeRejectsBadData(t *testing.T) {
	client := newFakeClient()
	registrar := NewRegistrar(client, logging.Nop())
	td := testTopic()

	registration, _ := registrar.Register(td)
	serializer, _ := NewSerializer(td, registration)

	data, _ := schema.SyntheticData(td)
	data["int0"] = "wrong type"
	if _, err := serializer.Encode(data); err == nil {
		t.Error("expected encode error for mistyped field")
	}
}
