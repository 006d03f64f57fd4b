package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
)

// flushTimeoutMs bounds the post-publish flush that guarantees the delivery
// report is in before the worker call completes. Without the flush, the
// await could hang past process shutdown.
const flushTimeoutMs = 15_000

// ProducerClient is the blocking write surface of the broker client.
// *kafka.Producer satisfies it.
type ProducerClient interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// NewProducerClient creates the underlying broker producer.
func NewProducerClient(brokers []string, acks int) (ProducerClient, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": strings.Join(brokers, ","),
		"acks":              acks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

// Writer bridges the callback-based publish into an awaitable call. Exactly
// one publish is in flight per call: the full produce, flush and delivery
// report cycle completes before Publish returns.
type Writer struct {
	pool   *Pool
	client ProducerClient
	topic  string
}

func NewWriter(pool *Pool, client ProducerClient, wireTopic string) *Writer {
	return &Writer{pool: pool, client: client, topic: wireTopic}
}

// Publish writes one payload and awaits the broker's delivery report. The
// per-call delivery channel is the completion primitive: it is safe to
// resolve from the client's internal network thread, so no hop back into the
// caller's context is needed. A broker-reported delivery error is raised to
// the caller.
func (w *Writer) Publish(ctx context.Context, seqNum int64, payload []byte) error {
	return w.pool.Run(ctx, func() error {
		deliveryChan := make(chan kafka.Event, 1)

		err := w.client.Produce(&kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &w.topic, Partition: kafka.PartitionAny},
			Value:          payload,
		}, deliveryChan)
		if err != nil {
			return errspkg.DeliveryError{Topic: w.topic, SeqNum: seqNum, Err: err}
		}

		w.client.Flush(flushTimeoutMs)

		event := <-deliveryChan
		switch e := event.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				return errspkg.DeliveryError{Topic: w.topic, SeqNum: seqNum, Err: e.TopicPartition.Error}
			}
			return nil
		case kafka.Error:
			return errspkg.DeliveryError{Topic: w.topic, SeqNum: seqNum, Err: e}
		default:
			return errspkg.DeliveryError{
				Topic:  w.topic,
				SeqNum: seqNum,
				Err:    fmt.Errorf("unexpected delivery event %T", event),
			}
		}
	})
}

// Close flushes and closes the underlying client from a pool worker.
func (w *Writer) Close(ctx context.Context) error {
	return w.pool.Run(ctx, func() error {
		w.client.Flush(flushTimeoutMs)
		w.client.Close()
		return nil
	})
}
