package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/logging"
	"github.com/telembus/kafkabench/internal/runtime/metrics"
	"github.com/telembus/kafkabench/internal/runtime/registry"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// ConsumerReport summarises one consumer run.
type ConsumerReport struct {
	Count     int
	Elapsed   time.Duration
	PerSecond float64
	Delay     Summary
}

// consumerTopic binds one subscribed topic to its post-processor.
type consumerTopic struct {
	td   *schema.TopicDescriptor
	post *postProcessor
}

// Consumer reads messages across one or more subscribed topics in broker
// delivery order, timestamping and post-processing each one.
type Consumer struct {
	topics       map[string]*consumerTopic
	reader       MessageReader
	deserializer *registry.Deserializer
	logger       logging.ServiceLogger
	metrics      *metrics.PipelineMetrics

	count  int
	timing bool
	stats  DelayStats
}

// ConsumerOptions configures a consumer run.
type ConsumerOptions struct {
	Topics       []*schema.TopicDescriptor
	Reader       MessageReader
	Deserializer *registry.Deserializer
	PostProcess  string
	Count        int
	Timing       bool
	Logger       logging.ServiceLogger
	Metrics      *metrics.PipelineMetrics
}

// NewConsumer resolves the post-processing strategy once, failing on an
// unknown name before any message is read.
func NewConsumer(opts ConsumerOptions) (*Consumer, error) {
	mode, err := ParsePostProcess(opts.PostProcess)
	if err != nil {
		return nil, err
	}
	topics := make(map[string]*consumerTopic, len(opts.Topics))
	for _, td := range opts.Topics {
		post, err := newPostProcessor(td, mode)
		if err != nil {
			return nil, err
		}
		topics[td.WireName] = &consumerTopic{td: td, post: post}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Consumer{
		topics:       topics,
		reader:       opts.Reader,
		deserializer: opts.Deserializer,
		logger:       logger,
		metrics:      opts.Metrics,
		count:        opts.Count,
		timing:       opts.Timing,
	}, nil
}

// Run reads until the configured count is reached, or forever when the count
// is zero. The throughput clock starts only after the first message is fully
// processed, excluding producer warm-up skew, so the rate covers full
// read-and-process cycles.
func (c *Consumer) Run(ctx context.Context) (ConsumerReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "consume-run", trace.WithAttributes(
		attribute.Int("topics", len(c.topics)),
		attribute.Int("count", c.count),
	))
	defer span.End()

	read := 0
	var clockStart time.Time
	for {
		message, err := c.reader.Read(ctx)
		if err != nil {
			span.RecordError(err)
			return ConsumerReport{}, err
		}
		topic, ok := c.topics[message.Topic]
		if !ok {
			err := errspkg.MessageError{Topic: message.Topic, Err: errspkg.ErrUnknownTopic}
			span.RecordError(err)
			return ConsumerReport{}, err
		}
		read++

		_, data, err := c.deserializer.Decode(topic.td, message.Value)
		if err != nil {
			span.RecordError(err)
			return ConsumerReport{}, err
		}

		// Receive stamp goes in immediately after decode.
		now := nowSeconds()
		data[schema.FieldRcvStamp] = now
		sndStamp, _ := data[schema.FieldSndStamp].(float64)
		delay := now - sndStamp
		c.stats.Add(delay)
		if c.metrics != nil {
			c.metrics.ObserveConsumed(message.Topic, delay)
		}

		processed, err := topic.post.Apply(data)
		if err != nil {
			span.RecordError(err)
			return ConsumerReport{}, err
		}
		if !c.timing {
			c.logger.Info("read message", logging.LogFields{
				"index":     read,
				"topic":     message.Topic,
				"processed": processed,
			})
		}

		if c.count > 0 && read >= c.count {
			break
		}
		if read == 1 {
			clockStart = time.Now()
		}
	}

	report := ConsumerReport{
		Count: read,
		Delay: c.stats.Summary(),
	}
	if !clockStart.IsZero() {
		report.Elapsed = time.Since(clockStart)
		if report.Elapsed > 0 {
			report.PerSecond = float64(read-1) / report.Elapsed.Seconds()
		}
	}
	return report, nil
}
