package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
)

// ConsumerClient is the blocking read surface of the broker client.
// *kafka.Consumer satisfies it.
type ConsumerClient interface {
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	Poll(timeoutMs int) kafka.Event
	Close() error
}

// NewConsumerClient creates the underlying broker consumer under the given
// group id.
func NewConsumerClient(brokers []string, groupID string) (ConsumerClient, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": strings.Join(brokers, ","),
		"group.id":          groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	return consumer, nil
}

// Message is one record delivered by the broker.
type Message struct {
	Topic string
	Value []byte
}

// Reader bridges the blocking poll loop into an awaitable call. Reads are
// strictly sequential: never more than one outstanding blocking-read task,
// preserving per-partition delivery order as seen by the broker.
type Reader struct {
	pool        *Pool
	client      ConsumerClient
	pollTimeout time.Duration

	mu sync.Mutex
}

func NewReader(pool *Pool, client ConsumerClient, pollTimeout time.Duration) *Reader {
	return &Reader{pool: pool, client: client, pollTimeout: pollTimeout}
}

// Subscribe registers the wire topic names, from a pool worker like every
// other client call.
func (r *Reader) Subscribe(ctx context.Context, wireTopics []string) error {
	return r.pool.Run(ctx, func() error {
		if err := r.client.SubscribeTopics(wireTopics, nil); err != nil {
			return fmt.Errorf("failed to subscribe to %v: %w", wireTopics, err)
		}
		return nil
	})
}

// Read blocks until the next message or error. The poll timeout governs how
// promptly the loop notices a cancelled context; a broker-reported
// per-message error is raised to the caller rather than retried.
func (r *Reader) Read(ctx context.Context) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var message Message
	err := r.pool.Run(ctx, func() error {
		timeoutMs := int(r.pollTimeout.Milliseconds())
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			event := r.client.Poll(timeoutMs)
			if event == nil {
				continue
			}
			switch e := event.(type) {
			case *kafka.Message:
				if e.TopicPartition.Error != nil {
					return errspkg.MessageError{Topic: topicOf(e), Err: e.TopicPartition.Error}
				}
				message = Message{Topic: topicOf(e), Value: e.Value}
				return nil
			case kafka.Error:
				return errspkg.MessageError{Err: e}
			default:
				// Stats and rebalance events are not messages.
				continue
			}
		}
	})
	return message, err
}

// Close shuts the underlying client down from a pool worker.
func (r *Reader) Close(ctx context.Context) error {
	return r.pool.Run(ctx, func() error {
		return r.client.Close()
	})
}

func topicOf(m *kafka.Message) string {
	if m.TopicPartition.Topic == nil {
		return ""
	}
	return *m.TopicPartition.Topic
}
