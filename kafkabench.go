package kafkabench

import (
	bridgepkg "github.com/telembus/kafkabench/internal/runtime/bridge"
	configpkg "github.com/telembus/kafkabench/internal/runtime/config"
	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	loggingpkg "github.com/telembus/kafkabench/internal/runtime/logging"
	metricspkg "github.com/telembus/kafkabench/internal/runtime/metrics"
	pipelinepkg "github.com/telembus/kafkabench/internal/runtime/pipeline"
	provisionpkg "github.com/telembus/kafkabench/internal/runtime/provision"
	registrypkg "github.com/telembus/kafkabench/internal/runtime/registry"
	schemapkg "github.com/telembus/kafkabench/internal/runtime/schema"
)

type (
	Config = configpkg.Config

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	// Component and topic metadata
	ComponentDescriptor = schemapkg.ComponentDescriptor
	TopicDescriptor     = schemapkg.TopicDescriptor
	FieldDescriptor     = schemapkg.FieldDescriptor
	FieldKind           = schemapkg.FieldKind
	FieldMapping        = schemapkg.FieldMapping
	MetadataSource      = schemapkg.MetadataSource
	StaticSource        = schemapkg.StaticSource

	// Registry and wire format
	RegistryClient     = registrypkg.Client
	SchemaRegistration = registrypkg.SchemaRegistration
	Registrar          = registrypkg.Registrar
	Serializer         = registrypkg.Serializer
	Deserializer       = registrypkg.Deserializer

	// Topic provisioning
	AdminAPI    = provisionpkg.AdminAPI
	Provisioner = provisionpkg.Provisioner

	// Async-blocking bridge
	Pool    = bridgepkg.Pool
	Writer  = bridgepkg.Writer
	Reader  = bridgepkg.Reader
	Message = bridgepkg.Message

	// Pipelines
	Producer        = pipelinepkg.Producer
	ProducerOptions = pipelinepkg.ProducerOptions
	ProducerReport  = pipelinepkg.ProducerReport
	Consumer        = pipelinepkg.Consumer
	ConsumerOptions = pipelinepkg.ConsumerOptions
	ConsumerReport  = pipelinepkg.ConsumerReport
	DelayStats      = pipelinepkg.DelayStats
	DelaySummary    = pipelinepkg.Summary

	PipelineMetrics = metricspkg.PipelineMetrics

	// Error wrappers
	ConfigurationError = errspkg.ConfigurationError
	ProvisioningError  = errspkg.ProvisioningError
	ValidationError    = errspkg.ValidationError
	DeliveryError      = errspkg.DeliveryError
	MessageError       = errspkg.MessageError
)

// Field kinds supported by topic descriptors.
const (
	KindInt64        = schemapkg.KindInt64
	KindFloat64      = schemapkg.KindFloat64
	KindString       = schemapkg.KindString
	KindInt64Array   = schemapkg.KindInt64Array
	KindFloat64Array = schemapkg.KindFloat64Array
)

// Per-message bookkeeping fields injected into every payload.
const (
	FieldSeqNum   = schemapkg.FieldSeqNum
	FieldSndStamp = schemapkg.FieldSndStamp
	FieldRcvStamp = schemapkg.FieldRcvStamp
	FieldIndex    = schemapkg.FieldIndex
)

// Sentinel errors surfaced by the benchmarking pipelines.
var (
	ErrUnsupportedFieldKind   = errspkg.ErrUnsupportedFieldKind
	ErrUnsupportedValidation  = errspkg.ErrUnsupportedValidation
	ErrUnsupportedPostProcess = errspkg.ErrUnsupportedPostProcess
	ErrUnknownTopic           = errspkg.ErrUnknownTopic
	ErrUnknownComponent       = errspkg.ErrUnknownComponent
	ErrPoolClosed             = errspkg.ErrPoolClosed
)

// NewSlogServiceLogger adapts a slog.Logger to the ServiceLogger interface.
var NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger

// DefaultSource returns the builtin component metadata used for benchmarks.
var DefaultSource = schemapkg.DefaultSource

// ValidationNames lists the producer validation strategies.
var ValidationNames = pipelinepkg.ValidationNames

// PostProcessNames lists the consumer post-processing strategies.
var PostProcessNames = pipelinepkg.PostProcessNames
