// Command writebench publishes synthetic messages for one component topic
// and reports the achieved write throughput.
//
//	writebench [flags] component topic
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
		logger.Error("writebench failed", err, nil)
		os.Exit(1)
	}
}

func run(logger logging.ServiceLogger) error {
	var (
		count       = flag.Int("n", 1, "number of messages to write")
		index       = flag.Int64("index", 0, "instance index for indexed components")
		noWaitAck   = flag.Bool("nowait-ack", false, "do not wait for broker acknowledgment (acks=0)")
		validation  = flag.String("validation", "struct", "validation strategy: "+strings.Join(pipeline.ValidationNames(), ", "))
		brokers     = flag.String("brokers", "localhost:9092", "comma-separated Kafka bootstrap servers")
		registryURL = flag.String("registry", "http://localhost:8081", "schema registry base URL")
		partitions  = flag.Int("partitions", 1, "partition count for newly created topics")
		metricsPort = flag.Int("metrics-port", 0, "serve Prometheus metrics on this port (0 disables)")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return fmt.Errorf("expected exactly two arguments: component topic")
	}

	cfg := &config.Config{
		Brokers:     strings.Split(*brokers, ","),
		RegistryURL: *registryURL,
		Component:   flag.Arg(0),
		Topics:      []string{flag.Arg(1)},
		Count:       *count,
		Index:       *index,
		WaitAck:     !*noWaitAck,
		Validation:  *validation,
		Partitions:  *partitions,
		MetricsPort: *metricsPort,
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
	td, err := component.Topic(cfg.Topics[0])
	if err != nil {
		return err
	}

	admin, err := provision.NewAdmin(cfg.Brokers)
	if err != nil {
		return err
	}
	if err := provision.New(admin, cfg.Partitions, logger).Ensure(ctx, []string{td.WireName}); err != nil {
		return err
	}

	registryClient, err := registry.NewClient(cfg.RegistryURL)
	if err != nil {
		return err
	}
	registration, err := registry.NewRegistrar(registryClient, logger).Register(td)
	if err != nil {
		return err
	}
	serializer, err := registry.NewSerializer(td, registration)
	if err != nil {
		return err
	}

	pool := bridge.NewPool(cfg.GetPoolSize())
	defer pool.Close()
	producerClient, err := bridge.NewProducerClient(cfg.Brokers, cfg.Acks())
	if err != nil {
		return err
	}
	writer := bridge.NewWriter(pool, producerClient, td.WireName)

	producer, err := pipeline.NewProducer(pipeline.ProducerOptions{
		Topic:      td,
		Serializer: serializer,
		Publisher:  writer,
		Validation: cfg.Validation,
		Count:      cfg.Count,
		Index:      cfg.Index,
		Logger:     logger,
		Metrics:    pipelineMetrics,
	})
	if err != nil {
		return err
	}

	report, err := producer.Run(ctx)
	if err != nil {
		return err
	}
	if err := printReport(report); err != nil {
		return err
	}

	if err := writer.Close(ctx); err != nil {
		logger.Warn("producer close failed", logging.LogFields{"error": err.Error()})
	}

	// A concurrently launched reader may still be draining; give it a
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

func printReport(report pipeline.ProducerReport) error {
	out, err := jsoncodec.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(out))
	return err
}
