// Texture worker entry point for the PrintShop customizer.
//
// The worker consumes design events from Kafka: logo uploads are resolved into
// textures and color changes pre-render the base material.  Each of the
// --workers consumers joins the same consumer group, so partitions are spread
// across them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/turtacn/PrintShop-Customizer/internal/app"
	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/PrintShop-Customizer/internal/interfaces/http"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/http/handlers"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

var version = "dev"

const (
	defaultWorkerConfigPath = "configs/config.yaml"
	defaultHealthPort       = 8081
	defaultHandlerTimeout   = 2 * time.Minute
)

func main() {
	configPath := flag.String("config", defaultWorkerConfigPath, "path to configuration file")
	workerCount := flag.Int("workers", 0, "number of concurrent consumers (default: worker.concurrency)")
	topicFilter := flag.String("topics", "", "comma-separated list of topics to consume (default: all worker topics)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the health and metrics endpoint")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Kafka.Enabled {
		fmt.Fprintln(os.Stderr, "kafka.enabled is false; the worker has nothing to consume")
		os.Exit(1)
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	workers := cfg.Worker.Concurrency
	if *workerCount > 0 {
		workers = *workerCount
	}

	if err := run(cfg, workers, *topicFilter, *healthPort, logger); err != nil {
		logger.Error("worker exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, workers int, topicFilter string, healthPort int, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := app.OpenInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svcs, err := app.NewServices(cfg, infra, app.ServiceOptions{Source: "customizer-worker"}, logger)
	if err != nil {
		return err
	}

	topics := selectTopics(svcs.Topics.WorkerTopics(), topicFilter)
	logger.Info("starting PrintShop texture worker",
		logging.String("version", version),
		logging.Int("workers", workers),
		logging.String("topics", strings.Join(topics, ",")),
	)

	handler := instrument(svcs.Rendering.HandleDesignEvent, handlerTimeout(cfg.Worker), infra.Metrics, logger)

	consumers := make([]*kafka.Consumer, 0, workers)
	defer func() {
		for _, c := range consumers {
			if err := c.Close(); err != nil {
				logger.Warn("consumer close failed", logging.Err(err))
			}
		}
	}()
	for i := 0; i < workers; i++ {
		c, err := kafka.NewConsumer(cfg.Kafka, topics, svcs.Topics.DeadLetter, logger.With(logging.Int("consumer", i)))
		if err != nil {
			return err
		}
		for _, t := range topics {
			c.Subscribe(t, handler)
		}
		if err := c.Start(ctx); err != nil {
			return err
		}
		consumers = append(consumers, c)
	}

	healthSrv := httpserver.NewServer(config.ServerConfig{Host: "0.0.0.0", Port: healthPort},
		httpserver.NewRouter(httpserver.RouterConfig{
			HealthHandler:    handlers.NewHealthHandler(version, healthCheckers(infra.Checks())...),
			Logger:           logger,
			MetricsCollector: infra.Collector,
		}), logger)
	go func() {
		if err := healthSrv.Start(); err != nil {
			logger.Error("health server error", logging.Err(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, draining consumers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}
	return nil
}

// selectTopics keeps the entries of filter that name a worker topic.  An
// empty filter selects all of them.
func selectTopics(all []string, filter string) []string {
	if strings.TrimSpace(filter) == "" {
		return all
	}
	known := make(map[string]bool, len(all))
	for _, t := range all {
		known[t] = true
	}
	var out []string
	for _, t := range strings.Split(filter, ",") {
		t = strings.TrimSpace(t)
		if known[t] {
			out = append(out, t)
		}
	}
	return out
}

func handlerTimeout(cfg config.WorkerConfig) time.Duration {
	if cfg.TextureLoadTimeout > 0 {
		return 2 * cfg.TextureLoadTimeout
	}
	return defaultHandlerTimeout
}

// instrument bounds each message by timeout and records its outcome.
func instrument(h common.MessageHandler, timeout time.Duration, metrics *prometheus.AppMetrics, logger logging.Logger) common.MessageHandler {
	return func(ctx context.Context, msg *common.Message) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		err := h(ctx, msg)
		prometheus.RecordMessageProcessed(metrics, msg.Topic, time.Since(start), err)
		if err != nil {
			logger.Warn("design event failed",
				logging.String("topic", msg.Topic),
				logging.Err(err),
			)
		}
		return err
	}
}

func healthCheckers(checks []app.Check) []handlers.HealthChecker {
	out := make([]handlers.HealthChecker, 0, len(checks))
	for _, c := range checks {
		out = append(out, handlers.NamedCheck{Label: c.Name, Probe: c.Probe})
	}
	return out
}

//Personal.AI order the ending
