// API server entry point for the PrintShop customizer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/PrintShop-Customizer/internal/app"
	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/PrintShop-Customizer/internal/interfaces/grpc"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/grpc/services"
	httpserver "github.com/turtacn/PrintShop-Customizer/internal/interfaces/http"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/http/handlers"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

const (
	defaultConfigPath     = "configs/config.yaml"
	shutdownTimeout       = 30 * time.Second
	dependencyWatchPeriod = 15 * time.Second
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	if *grpcPort > 0 {
		cfg.GRPC.Port = *grpcPort
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	watchLogLevel(*configPath, logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting PrintShop customizer API server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.Port),
		logging.Int("grpc_port", cfg.GRPC.Port),
	)

	infra, err := app.OpenInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svcs, err := app.NewServices(cfg, infra, app.ServiceOptions{
		Source:            "customizer-api",
		BackgroundResolve: !cfg.Kafka.Enabled,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP
	routerCfg := httpserver.RouterConfig{
		DesignHandler:  handlers.NewDesignHandler(svcs.Designs, svcs.Rendering, logger, cfg.Server.MaxBodySize, cfg.Customizer.MaxLogoBytes),
		CatalogHandler: handlers.NewCatalogHandler(svcs.Designs, svcs.Rendering, logger),
		HealthHandler:  handlers.NewHealthHandler(version, healthCheckers(infra.Checks())...),
		CORSMiddleware: middleware.NewCORSMiddleware(corsConfig(cfg.Server)),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger, middleware.LoggingConfig{
			SkipPaths:     middleware.DefaultLoggingConfig().SkipPaths,
			SlowThreshold: middleware.DefaultLoggingConfig().SlowThreshold,
			Metrics:       infra.Metrics,
		}),
		Logger:           logger,
		MetricsCollector: infra.Collector,
	}
	if len(cfg.Server.APIKeys) > 0 {
		authCfg := middleware.DefaultAuthConfig()
		authCfg.Keys = cfg.Server.APIKeys
		routerCfg.AuthMiddleware = middleware.NewAuthMiddleware(authCfg, logger)
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter, backend, stopLimiter := rateLimiter(rl, infra.Redis)
		defer stopLimiter()
		routerCfg.RateLimitMiddleware = middleware.NewRateLimitMiddleware(limiter, rateLimitConfig(backend, infra.Metrics, logger))
	}
	httpSrv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	errCh := make(chan error, 2)
	go func() {
		errCh <- httpSrv.Start()
	}()

	// gRPC
	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		grpcSrv, err = grpcserver.NewServer(cfg.GRPC,
			grpcserver.WithLogger(logger),
			grpcserver.WithMetrics(infra.Metrics),
		)
		if err != nil {
			return err
		}
		grpcSrv.RegisterService(&services.CustomizerServiceDesc, services.NewCustomizerService(svcs.Designs, logger))
		go grpcSrv.WatchDependencies(ctx, dependencyWatchPeriod, dependencyChecks(infra.Checks())...)
		go func() {
			errCh <- grpcSrv.Start()
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", logging.Err(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}
	if grpcSrv != nil {
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", logging.Err(err))
		}
	}

	logger.Info("servers stopped")
	return nil
}

// watchLogLevel applies log.level edits without a restart.  Everything else
// in the file is read once at startup.
func watchLogLevel(path string, logger logging.Logger) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	config.Watch(path, func(c *config.Config) {
		if logging.SetLevel(logger, c.Log.Level) {
			logger.Info("log level reloaded", logging.String("level", c.Log.Level))
		}
	}, func(err error) {
		logger.Warn("ignoring invalid configuration change", logging.Err(err))
	})
}

// loadConfig reads path when it exists and falls back to environment
// variables over defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromFile("")
	}
	return config.LoadFromFile(path)
}

//Personal.AI order the ending
