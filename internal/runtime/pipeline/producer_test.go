package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"

	"github.com/telembus/kafkabench/internal/runtime/bridge"
	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/registry"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// fakeRegistry serves exactly one schema under id 1.
type fakeRegistry struct {
	schemaJSON string
}

func newFakeRegistry(t *testing.T, td *schema.TopicDescriptor) *fakeRegistry {
	t.Helper()
	schemaJSON, err := schema.AvroSchema(td)
	if err != nil {
		t.Fatalf("AvroSchema failed: %v", err)
	}
	return &fakeRegistry{schemaJSON: schemaJSON}
}

func (f *fakeRegistry) Register(string, schemaregistry.SchemaInfo, bool) (int, error) {
	return 1, nil
}

func (f *fakeRegistry) GetBySubjectAndID(_ string, id int) (schemaregistry.SchemaInfo, error) {
	if id != 1 {
		return schemaregistry.SchemaInfo{}, fmt.Errorf("schema id %d not found", id)
	}
	return schemaregistry.SchemaInfo{Schema: f.schemaJSON, SchemaType: "AVRO"}, nil
}

// fakePublisher records published frames, optionally failing every publish.
type fakePublisher struct {
	frames [][]byte
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, seqNum int64, payload []byte) error {
	if f.err != nil {
		return errspkg.DeliveryError{Topic: "t", SeqNum: seqNum, Err: f.err}
	}
	f.frames = append(f.frames, payload)
	return nil
}

func newTestSerializer(t *testing.T, td *schema.TopicDescriptor) *registry.Serializer {
	t.Helper()
	serializer, err := registry.NewSerializer(td, registry.SchemaRegistration{
		Subject:  td.Subject,
		SchemaID: 1,
	})
	if err != nil {
		t.Fatalf("NewSerializer failed: %v", err)
	}
	return serializer
}

func TestProducerPublishesSequencedMessages(t *testing.T) {
	td := benchTopic()
	publisher := &fakePublisher{}

	producer, err := NewProducer(ProducerOptions{
		Topic:      td,
		Serializer: newTestSerializer(t, td),
		Publisher:  publisher,
		Validation: "struct",
		Count:      5,
		Index:      7,
	})
	if err != nil {
		t.Fatalf("NewProducer failed: %v", err)
	}

	report, err := producer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Count != 5 {
		t.Errorf("report.Count = %d, want 5", report.Count)
	}
	if report.PerSecond <= 0 {
		t.Errorf("report.PerSecond = %v, want > 0", report.PerSecond)
	}
	if len(publisher.frames) != 5 {
		t.Fatalf("published %d frames, want 5", len(publisher.frames))
	}

	deserializer := registry.NewDeserializer(newFakeRegistry(t, td))
	var lastSnd float64
	for i, frame := range publisher.frames {
		_, data, err := deserializer.Decode(td, frame)
		if err != nil {
			t.Fatalf("Decode frame %d failed: %v", i, err)
		}
		// Sequence numbers are 1-based, strictly increasing and gap-free.
		if got := data[schema.FieldSeqNum]; got != int64(i+1) {
			t.Errorf("frame %d seqNum = %v, want %d", i, got, i+1)
		}
		if got := data[schema.FieldIndex]; got != int64(7) {
			t.Errorf("frame %d index = %v, want 7", i, got)
		}
		snd, _ := data[schema.FieldSndStamp].(float64)
		if snd <= 0 || snd < lastSnd {
			t.Errorf("frame %d sndStamp = %v, want monotonic positive", i, snd)
		}
		lastSnd = snd
	}
}

func TestProducerRejectsUnknownValidation(t *testing.T) {
	td := benchTopic()
	_, err := NewProducer(ProducerOptions{
		Topic:      td,
		Serializer: newTestSerializer(t, td),
		Publisher:  &fakePublisher{},
		Validation: "dataclass_and_decode",
		Count:      1,
	})
	if !errors.Is(err, errspkg.ErrUnsupportedValidation) {
		t.Errorf("expected ErrUnsupportedValidation, got %v", err)
	}
}

func TestProducerRejectsUnsupportedFieldBeforePublishing(t *testing.T) {
	td := benchTopic()
	td.Fields = append(td.Fields, schema.FieldDescriptor{Name: "nested", Kind: schema.KindInvalid})
	publisher := &fakePublisher{}

	producer, err := NewProducer(ProducerOptions{
		Topic:      td,
		Serializer: newTestSerializer(t, benchTopic()),
		Publisher:  publisher,
		Validation: "none",
		Count:      3,
	})
	if err != nil {
		t.Fatalf("NewProducer failed: %v", err)
	}

	_, err = producer.Run(context.Background())
	var confErr errspkg.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("got %T (%v), want ConfigurationError", err, err)
	}
	if len(publisher.frames) != 0 {
		t.Error("derivation failure must abort before any publish")
	}
}

func TestProducerAbortsOnDeliveryError(t *testing.T) {
	td := benchTopic()
	publisher := &fakePublisher{err: errors.New("broker rejected")}

	producer, err := NewProducer(ProducerOptions{
		Topic:      td,
		Serializer: newTestSerializer(t, td),
		Publisher:  publisher,
		Validation: "none",
		Count:      3,
	})
	if err != nil {
		t.Fatalf("NewProducer failed: %v", err)
	}

	_, err = producer.Run(context.Background())
	var delErr errspkg.DeliveryError
	if !errors.As(err, &delErr) {
		t.Fatalf("got %T (%v), want DeliveryError", err, err)
	}
}

var _ Publisher = (*fakePublisher)(nil)
var _ MessageReader = (*fakeReader)(nil)

// fakeReader pops queued messages, failing once the queue is empty.
type fakeReader struct {
	messages []bridge.Message
	err      error
}

func (f *fakeReader) Read(ctx context.Context) (bridge.Message, error) {
	if err := ctx.Err(); err != nil {
		return bridge.Message{}, err
	}
	if len(f.messages) == 0 {
		if f.err != nil {
			return bridge.Message{}, f.err
		}
		return bridge.Message{}, errspkg.MessageError{Err: errors.New("queue exhausted")}
	}
	message := f.messages[0]
	f.messages = f.messages[1:]
	return message, nil
}
