// Package registry registers topic schemas with a Confluent-style schema
// registry and provides the schema-id-framed Avro serializers used on the
// wire.
package registry

import (
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"

	"github.com/telembus/kafkabench/internal/runtime/logging"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// Client is the slice of the schema registry API the harness needs.
// schemaregistry.Client satisfies it.
type Client interface {
	Register(subject string, schema schemaregistry.SchemaInfo, normalize bool) (int, error)
	GetBySubjectAndID(subject string, id int) (schemaregistry.SchemaInfo, error)
}

// NewClient connects to the registry at the given base URL.
func NewClient(url string) (Client, error) {
	client, err := schemaregistry.NewClient(schemaregistry.NewConfig(url))
	if err != nil {
		return nil, fmt.Errorf("failed to create schema registry client: %w", err)
	}
	return client, nil
}

// SchemaRegistration binds a subject to the schema id returned by the
// registry. Created once per topic at startup; the id is reused by every
// serialize and deserialize call for the rest of the run.
type SchemaRegistration struct {
	Subject  string
	SchemaID int
}

// Registrar registers topic schemas sequentially before any pipeline
// traffic. Registration is idempotent: the registry returns the same id for
// the same schema+subject.
type Registrar struct {
	client Client
	logger logging.ServiceLogger
}

func NewRegistrar(client Client, logger logging.ServiceLogger) *Registrar {
	return &Registrar{client: client, logger: logger}
}

// Register derives the topic's Avro schema and registers it under the
// topic's subject.
func (r *Registrar) Register(td *schema.TopicDescriptor) (SchemaRegistration, error) {
	avroSchema, err := schema.AvroSchema(td)
	if err != nil {
		return SchemaRegistration{}, err
	}

	id, err := r.client.Register(td.Subject, schemaregistry.SchemaInfo{
		Schema:     avroSchema,
		SchemaType: "AVRO",
	}, false)
	if err != nil {
		return SchemaRegistration{}, fmt.Errorf("failed to register schema for subject %q: %w", td.Subject, err)
	}

	r.logger.Info("registered schema", logging.LogFields{
		"subject":   td.Subject,
		"schema_id": id,
	})
	return SchemaRegistration{Subject: td.Subject, SchemaID: id}, nil
}
