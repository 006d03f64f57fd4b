package config

import (
	"errors"
	"net/url"
	"time"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
)

// Config groups the settings shared by the producer and consumer pipelines.
// Each pipeline only uses the keys that are relevant to it.
type Config struct {
	// Brokers is the Kafka bootstrap server list.
	Brokers []string

	// RegistryURL is the base URL of the Confluent-style schema registry.
	RegistryURL string

	// Component is the component whose topics are benchmarked.
	Component string

	// Topics holds logical topic names. The producer uses exactly one; the
	// consumer subscribes to all of them.
	Topics []string

	// Count is the number of messages to write or read. For the consumer,
	// 0 means run until externally terminated.
	Count int

	// Index is the instance index stamped into messages of indexed
	// components. Ignored otherwise.
	Index int64

	// WaitAck selects acks=1 when true (the default) and acks=0 when false.
	WaitAck bool

	// Validation names the producer validation strategy.
	Validation string

	// PostProcess names the consumer post-processing strategy.
	PostProcess string

	// Partitions is the partition count used when provisioning topics.
	Partitions int

	// Timing enables elapsed-time and delay reporting on the consumer.
	Timing bool

	// MaxHistoryRead caps historical samples read for indexed components.
	// Recorded for interface parity with the CLI surface.
	MaxHistoryRead int

	// PollTimeout governs how promptly a blocking read can be shut down.
	// Zero falls back to DefaultPollTimeout.
	PollTimeout time.Duration

	// PoolSize bounds the worker pool hosting blocking broker calls.
	// Zero falls back to DefaultPoolSize.
	PoolSize int

	// MetricsPort exposes Prometheus metrics when > 0.
	MetricsPort int

	// SettleDelay is awaited at process end so a concurrently running
	// counterpart pipeline can finish its own run. Zero falls back to
	// DefaultSettleDelay.
	SettleDelay time.Duration
}

const (
	DefaultPollTimeout = 100 * time.Millisecond
	DefaultPoolSize    = 2
	DefaultSettleDelay = time.Second

	// ReplicationFactor is fixed; the harness targets single-broker
	// benchmarking setups.
	ReplicationFactor = 1
)

func (c *Config) GetPollTimeout() time.Duration {
	if c.PollTimeout <= 0 {
		return DefaultPollTimeout
	}
	return c.PollTimeout
}

func (c *Config) GetPoolSize() int {
	if c.PoolSize <= 0 {
		return DefaultPoolSize
	}
	return c.PoolSize
}

func (c *Config) GetSettleDelay() time.Duration {
	if c.SettleDelay <= 0 {
		return DefaultSettleDelay
	}
	return c.SettleDelay
}

// Acks returns the producer acks setting implied by WaitAck.
func (c *Config) Acks() int {
	if c.WaitAck {
		return 1
	}
	return 0
}

// Validate checks that the configuration is usable before any I/O happens.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Brokers) == 0 {
		errs = append(errs, errspkg.ErrBrokersRequired)
	}
	if c.RegistryURL == "" {
		errs = append(errs, errspkg.ErrRegistryURLRequired)
	} else if _, err := url.ParseRequestURI(c.RegistryURL); err != nil {
		errs = append(errs, errors.New("schema registry URL is not a valid URL"))
	}
	if c.Component == "" {
		errs = append(errs, errors.New("component name is required"))
	}
	if len(c.Topics) == 0 {
		errs = append(errs, errspkg.ErrTopicRequired)
	}
	if c.Count < 0 {
		errs = append(errs, errors.New("message count cannot be negative"))
	}
	if c.Partitions < 1 {
		errs = append(errs, errors.New("partition count must be at least 1"))
	}
	if c.MaxHistoryRead < 0 {
		errs = append(errs, errors.New("max history read cannot be negative"))
	}
	if c.Timing && c.Count == 1 {
		errs = append(errs, errspkg.ErrTimingNeedsMessages)
	}

	return errors.Join(errs...)
}
