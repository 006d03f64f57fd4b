package errors

import (
	"fmt"

	sterrors "errors"
)

var (
	ErrUnsupportedFieldKind   = sterrors.New("kafkabench: unsupported field kind")
	ErrUnsupportedValidation  = sterrors.New("kafkabench: unsupported validation strategy")
	ErrUnsupportedPostProcess = sterrors.New("kafkabench: unsupported post-process strategy")
	ErrUnknownTopic           = sterrors.New("kafkabench: unknown topic")
	ErrUnknownComponent       = sterrors.New("kafkabench: unknown component")
	ErrBrokersRequired        = sterrors.New("kafkabench: at least one broker is required")
	ErrRegistryURLRequired    = sterrors.New("kafkabench: schema registry URL is required")
	ErrTopicRequired          = sterrors.New("kafkabench: at least one topic is required")
	ErrTimingNeedsMessages    = sterrors.New("kafkabench: timing requires a message count greater than 1")
	ErrPoolClosed             = sterrors.New("kafkabench: worker pool is closed")
)

// ConfigurationError reports a problem detected before any I/O: an
// unsupported field type during synthetic-data derivation, an unknown
// strategy name, or invalid harness configuration.
type ConfigurationError struct {
	Detail string
	Err    error
}

func (e ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("kafkabench: invalid configuration: %s", e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("kafkabench: invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("kafkabench: invalid configuration: %s: %v", e.Detail, e.Err)
}

func (e ConfigurationError) Unwrap() error { return e.Err }

// ProvisioningError reports a failed topic creation. A partially provisioned
// topic set is fatal, so the first failure aborts the provisioning step.
type ProvisioningError struct {
	Topic string
	Err   error
}

func (e ProvisioningError) Error() string {
	return fmt.Sprintf("kafkabench: failed to create topic %q: %v", e.Topic, e.Err)
}

func (e ProvisioningError) Unwrap() error { return e.Err }

// ValidationError reports the first field rejected by a validation strategy.
// A producer run is all-or-nothing: the error aborts the run.
type ValidationError struct {
	Topic string
	Field string
	Err   error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("kafkabench: validation failed for field %q of topic %q: %v", e.Field, e.Topic, e.Err)
}

func (e ValidationError) Unwrap() error { return e.Err }

// DeliveryError reports a broker-rejected publish, surfaced through the
// bridge from the delivery callback.
type DeliveryError struct {
	Topic  string
	SeqNum int64
	Err    error
}

func (e DeliveryError) Error() string {
	return fmt.Sprintf("kafkabench: delivery failed for topic %q (seqNum %d): %v", e.Topic, e.SeqNum, e.Err)
}

func (e DeliveryError) Unwrap() error { return e.Err }

// MessageError reports a broker-reported per-message error on read, or a
// malformed wire frame. Raised from the blocking-read call.
type MessageError struct {
	Topic string
	Err   error
}

func (e MessageError) Error() string {
	if e.Topic == "" {
		return fmt.Sprintf("kafkabench: message error: %v", e.Err)
	}
	return fmt.Sprintf("kafkabench: message error on topic %q: %v", e.Topic, e.Err)
}

func (e MessageError) Unwrap() error { return e.Err }
