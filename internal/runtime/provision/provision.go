// Package provision ensures the benchmarked topics exist on the broker
// before any publish or subscribe begins.
package provision

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/telembus/kafkabench/internal/runtime/config"
	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/logging"
)

// sentinelTopic is a name known not to exist. Describing it alongside the
// real topics disambiguates "topic missing" from other broker errors: the
// unknown-topic error code is the only reliable non-existence signal from
// the admin API.
const sentinelTopic = "not_a_topic_name"

const listTimeoutMs = 10_000

// AdminAPI is the slice of the broker admin surface the provisioner needs.
// *kafka.AdminClient satisfies it.
type AdminAPI interface {
	DescribeConfigs(ctx context.Context, resources []kafka.ConfigResource, options ...kafka.DescribeConfigsAdminOption) ([]kafka.ConfigResourceResult, error)
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
	CreateTopics(ctx context.Context, topics []kafka.TopicSpecification, options ...kafka.CreateTopicsAdminOption) ([]kafka.TopicResult, error)
}

// NewAdmin connects an admin client to the given brokers.
func NewAdmin(brokers []string) (AdminAPI, error) {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": strings.Join(brokers, ","),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin client: %w", err)
	}
	return admin, nil
}

// Provisioner creates missing topics idempotently with a fixed partition
// count and replication factor.
type Provisioner struct {
	admin      AdminAPI
	logger     logging.ServiceLogger
	partitions int
}

func New(admin AdminAPI, partitions int, logger logging.ServiceLogger) *Provisioner {
	return &Provisioner{admin: admin, logger: logger, partitions: partitions}
}

// Ensure makes every wire topic name exist on the broker. A failed creation
// is fatal: a partially provisioned topic set aborts the run rather than
// being retried.
func (p *Provisioner) Ensure(ctx context.Context, wireNames []string) error {
	if err := p.probeMissing(ctx, wireNames); err != nil {
		return err
	}

	missing, err := p.missingFromListing(wireNames)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	p.logger.Info("creating topics", logging.LogFields{"topics": missing})

	specs := make([]kafka.TopicSpecification, 0, len(missing))
	for _, name := range missing {
		specs = append(specs, kafka.TopicSpecification{
			Topic:             name,
			NumPartitions:     p.partitions,
			ReplicationFactor: config.ReplicationFactor,
		})
	}
	results, err := p.admin.CreateTopics(ctx, specs)
	if err != nil {
		return errspkg.ProvisioningError{Topic: strings.Join(missing, ","), Err: err}
	}
	for _, result := range results {
		if result.Error.Code() != kafka.ErrNoError {
			return errspkg.ProvisioningError{Topic: result.Topic, Err: result.Error}
		}
	}
	return nil
}

// probeMissing describes the needed names plus the sentinel. A per-topic
// unknown-topic error is the expected missing signal; any other describe
// error is logged as a best-effort diagnostic and does not block
// provisioning.
func (p *Provisioner) probeMissing(ctx context.Context, wireNames []string) error {
	probeNames := append(append([]string{}, wireNames...), sentinelTopic)
	resources := make([]kafka.ConfigResource, 0, len(probeNames))
	for _, name := range probeNames {
		resources = append(resources, kafka.ConfigResource{
			Type: kafka.ResourceTopic,
			Name: name,
		})
	}

	results, err := p.admin.DescribeConfigs(ctx, resources)
	if err != nil {
		return fmt.Errorf("failed to describe topic configs: %w", err)
	}

	for _, result := range results {
		switch result.Error.Code() {
		case kafka.ErrNoError:
		case kafka.ErrUnknownTopicOrPart:
			p.logger.Debug("topic does not exist yet", logging.LogFields{"topic": result.Name})
		default:
			p.logger.Warn("unexpected issue describing topic", logging.LogFields{
				"topic": result.Name,
				"error": result.Error.String(),
			})
		}
	}
	return nil
}

// missingFromListing lists all existing topics and returns needed-minus-
// existing, sorted. The bulk listing is the cheaper call for determining the
// actual creation set.
func (p *Provisioner) missingFromListing(wireNames []string) ([]string, error) {
	metadata, err := p.admin.GetMetadata(nil, true, listTimeoutMs)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	var missing []string
	for _, name := range wireNames {
		if _, ok := metadata.Topics[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
