// Command readbench subscribes to one or more component topics, reads
// messages under a fresh consumer group and reports read throughput and
// send-to-receive delay statistics.
//
//	readbench [flags] component topic [topic...]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telembus/kafkabench/internal/runtime/bridge"
	"github.com/telembus/kafkabench/internal/runtime/config"
	"github.com/telembus/kafkabench/internal/runtime/ids"
	"github.com/telembus/kafkabench/internal/runtime/jsoncodec"
	"github.com/telembus/kafkabench/internal/runtime/logging"
	"github.com/telembus/kafkabench/internal/runtime/metrics"
	"github.com/telembus/kafkabench/internal/runtime/pipeline"
	"github.com/telembus/kafkabench/internal/runtime/provision"
	"github.com/telembus/kafkabench/internal/runtime/registry"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

func main() {
	logger := logging.NewSlogServiceLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	if err := run(logger); err != nil {
		logger.Error("readbench failed", err, nil)
		os.Exit(1)
	}
}

func run(logger logging.ServiceLogger) error {
	var (
		count          = flag.Int("n", 10, "number of messages to read (0 means read until interrupted)")
		timing         = flag.Bool("time", false, "report elapsed time, throughput and delay statistics")
		maxHistoryRead = flag.Int("max-history-read", 0, "cap on historical samples read for indexed components")
		partitions     = flag.Int("partitions", 1, "partition count for newly created topics")
		postProcess    = flag.String("postprocess", "struct", "post-processing strategy: "+strings.Join(pipeline.PostProcessNames(), ", "))
		brokers        = flag.String("brokers", "localhost:9092", "comma-separated Kafka bootstrap servers")
		registryURL    = flag.String("registry", "http://localhost:8081", "schema registry base URL")
		metricsPort    = flag.Int("metrics-port", 0, "serve Prometheus metrics on this port (0 disables)")
	)
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		return fmt.Errorf("expected a component followed by at least one topic")
	}

	cfg := &config.Config{
		Brokers:        strings.Split(*brokers, ","),
		RegistryURL:    *registryURL,
		Component:      flag.Arg(0),
		Topics:         flag.Args()[1:],
		Count:          *count,
		Timing:         *timing,
		MaxHistoryRead: *maxHistoryRead,
		PostProcess:    *postProcess,
		Partitions:     *partitions,
		MetricsPort:    *metricsPort,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipelineMetrics := metrics.New(nil)
	if err := pipelineMetrics.Register(); err != nil {
		return err
	}
	if cfg.MetricsPort > 0 {
		serveMetrics(cfg.MetricsPort, logger)
	}

	component, err := schema.DefaultSource().Component(cfg.Component)
	if err != nil {
		return err
	}
	descriptors := make([]*schema.TopicDescriptor, 0, len(cfg.Topics))
	wireNames := make([]string, 0, len(cfg.Topics))
	for _, name := range cfg.Topics {
		td, err := component.Topic(name)
		if err != nil {
			return err
		}
		descriptors = append(descriptors, td)
		wireNames = append(wireNames, td.WireName)
	}

	admin, err := provision.NewAdmin(cfg.Brokers)
	if err != nil {
		return err
	}
	if err := provision.New(admin, cfg.Partitions, logger).Ensure(ctx, wireNames); err != nil {
		return err
	}

	registryClient, err := registry.NewClient(cfg.RegistryURL)
	if err != nil {
		return err
	}
	registrar := registry.NewRegistrar(registryClient, logger)
	for _, td := range descriptors {
		if _, err := registrar.Register(td); err != nil {
			return err
		}
	}

	pool := bridge.NewPool(cfg.GetPoolSize())
	defer pool.Close()
	consumerClient, err := bridge.NewConsumerClient(cfg.Brokers, ids.ConsumerGroupID())
	if err != nil {
		return err
	}
	reader := bridge.NewReader(pool, consumerClient, cfg.GetPollTimeout())
	if err := reader.Subscribe(ctx, wireNames); err != nil {
		return err
	}

	consumer, err := pipeline.NewConsumer(pipeline.ConsumerOptions{
		Topics:       descriptors,
		Reader:       reader,
		Deserializer: registry.NewDeserializer(registryClient),
		PostProcess:  cfg.PostProcess,
		Count:        cfg.Count,
		Timing:       cfg.Timing,
		Logger:       logger,
		Metrics:      pipelineMetrics,
	})
	if err != nil {
		return err
	}

	report, err := consumer.Run(ctx)
	if err != nil {
		return err
	}
	if err := printReport(report); err != nil {
		return err
	}

	if err := reader.Close(ctx); err != nil {
		logger.Warn("consumer close failed", logging.LogFields{"error": err.Error()})
	}

	// A concurrently launched writer may still be flushing; give it a
	// moment before the process exits.
	time.Sleep(cfg.GetSettleDelay())
	return nil
}

func serveMetrics(port int, logger logging.ServiceLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("metrics endpoint stopped", logging.LogFields{"error": err.Error()})
		}
	}()
	logger.Info("serving metrics", logging.LogFields{"addr": addr})
}

func printReport(report pipeline.ConsumerReport) error {
	out, err := jsoncodec.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(out))
	return err
}
