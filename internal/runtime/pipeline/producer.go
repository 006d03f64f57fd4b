package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/telembus/kafkabench/internal/runtime/logging"
	"github.com/telembus/kafkabench/internal/runtime/metrics"
	"github.com/telembus/kafkabench/internal/runtime/registry"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// ProducerReport summarises one producer run.
type ProducerReport struct {
	Topic     string
	Count     int
	Elapsed   time.Duration
	PerSecond float64
}

// Producer publishes N synthetic messages for one topic, awaiting each
// delivery acknowledgment before issuing the next.
type Producer struct {
	td         *schema.TopicDescriptor
	serializer *registry.Serializer
	publisher  Publisher
	validator  *validator
	logger     logging.ServiceLogger
	metrics    *metrics.PipelineMetrics

	count int
	index int64
}

// ProducerOptions configures a producer run.
type ProducerOptions struct {
	Topic        *schema.TopicDescriptor
	Serializer   *registry.Serializer
	Publisher    Publisher
	Validation   string
	Count        int
	Index        int64
	Logger       logging.ServiceLogger
	Metrics      *metrics.PipelineMetrics
}

// NewProducer resolves the validation strategy once, failing on an unknown
// name before any message is generated.
func NewProducer(opts ProducerOptions) (*Producer, error) {
	mode, err := ParseValidation(opts.Validation)
	if err != nil {
		return nil, err
	}
	v, err := newValidator(opts.Topic, mode)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Producer{
		td:         opts.Topic,
		serializer: opts.Serializer,
		publisher:  opts.Publisher,
		validator:  v,
		logger:     logger,
		metrics:    opts.Metrics,
		count:      opts.Count,
		index:      opts.Index,
	}, nil
}

// Run generates, validates, serializes and publishes the configured number
// of messages, measuring wall-clock time from first-message dispatch to last
// acknowledgment. Any error aborts the run; messages already published are
// not rolled back.
func (p *Producer) Run(ctx context.Context) (ProducerReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "produce-run", trace.WithAttributes(
		attribute.String("topic", p.td.WireName),
		attribute.Int("count", p.count),
	))
	defer span.End()

	data, err := schema.SyntheticData(p.td)
	if err != nil {
		span.RecordError(err)
		return ProducerReport{}, err
	}

	p.logger.Info("publishing", logging.LogFields{
		"topic": p.td.WireName,
		"count": p.count,
	})

	start := time.Now()
	for i := 1; i <= p.count; i++ {
		data[schema.FieldSeqNum] = int64(i)
		if p.td.Indexed {
			data[schema.FieldIndex] = p.index
		}
		// The send stamp is set last, immediately before validation and
		// serialization, to keep the measured end-to-end latency tight.
		data[schema.FieldSndStamp] = nowSeconds()

		sendData, err := p.validator.Apply(data)
		if err != nil {
			span.RecordError(err)
			return ProducerReport{}, err
		}
		frame, err := p.serializer.Encode(sendData)
		if err != nil {
			span.RecordError(err)
			return ProducerReport{}, err
		}
		if err := p.publisher.Publish(ctx, int64(i), frame); err != nil {
			span.RecordError(err)
			return ProducerReport{}, err
		}
		if p.metrics != nil {
			p.metrics.ObservePublished(p.td.WireName)
		}
	}
	elapsed := time.Since(start)

	report := ProducerReport{
		Topic:   p.td.WireName,
		Count:   p.count,
		Elapsed: elapsed,
	}
	if elapsed > 0 {
		report.PerSecond = float64(p.count) / elapsed.Seconds()
	}
	return report, nil
}
