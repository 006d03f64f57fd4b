// Package kafkabench benchmarks a Kafka-backed telemetry bus end to end:
// topic provisioning through the admin API, Avro schema registration against
// a Confluent-style registry, and paired producer/consumer pipelines that
// measure write throughput, read throughput, and per-message send-to-receive
// delay.
//
// The blocking, callback-driven broker client is hosted on a small worker
// pool (see internal/runtime/bridge) so pipeline code can publish and read
// with plain context-aware calls. Message payloads are Avro binary in the
// Confluent wire format: a zero magic byte, a big-endian schema id, then the
// encoded record.
//
// Producer runs can validate each outgoing message with one of several
// strategies (field checks, struct-backed records, dynamic protobuf
// messages, with or without rederiving the payload from the record), and
// consumer runs can post-process each incoming message into a struct, a
// dynamic message, or a JSON attribute bag. The strategies exist to measure
// their cost, not to change what is sent: payload content is identical
// across all of them.
//
// A typical benchmark launches the readbench command, then the writebench
// command, against the same component topic; see cmd/writebench and
// cmd/readbench for the flag surfaces.
package kafkabench
