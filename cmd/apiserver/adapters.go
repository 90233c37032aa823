package main

import (
	"time"

	"github.com/turtacn/PrintShop-Customizer/internal/app"
	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/database/redis"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	grpcserver "github.com/turtacn/PrintShop-Customizer/internal/interfaces/grpc"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/http/handlers"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/http/middleware"
)

func healthCheckers(checks []app.Check) []handlers.HealthChecker {
	out := make([]handlers.HealthChecker, 0, len(checks))
	for _, c := range checks {
		out = append(out, handlers.NamedCheck{Label: c.Name, Probe: c.Probe})
	}
	return out
}

func dependencyChecks(checks []app.Check) []grpcserver.DependencyCheck {
	out := make([]grpcserver.DependencyCheck, 0, len(checks))
	for _, c := range checks {
		out = append(out, grpcserver.DependencyCheck{Name: c.Name, Probe: c.Probe})
	}
	return out
}

// rateLimiter picks the limiter backend.  The returned stop func releases the
// in-memory limiter's cleanup goroutine.
func rateLimiter(cfg config.RateLimitConfig, rc *redis.Client) (middleware.RateLimiter, string, func()) {
	if cfg.Backend == "redis" && rc != nil {
		return middleware.NewRedisLimiter(redis.NewTokenBucket(rc, cfg.RequestsPerSecond, cfg.Burst)), "redis", func() {}
	}
	l := middleware.NewTokenBucketLimiter(cfg.RequestsPerSecond, cfg.Burst, time.Minute)
	return l, "memory", l.Stop
}

func corsConfig(cfg config.ServerConfig) middleware.CORSConfig {
	cc := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		cc.AllowedOrigins = cfg.AllowedOrigins
	}
	return cc
}

func rateLimitConfig(backend string, metrics *prometheus.AppMetrics, logger logging.Logger) middleware.RateLimitConfig {
	rc := middleware.DefaultRateLimitConfig()
	rc.Backend = backend
	rc.Metrics = metrics
	rc.Logger = logger
	return rc
}

//Personal.AI order the ending
