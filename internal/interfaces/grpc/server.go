// Package grpc exposes the customizer over gRPC: the standard health service
// reflecting dependency probes, reflection, and the Customizer service.
package grpc

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
)

const (
	// maxMessageSize bounds Struct payloads; a render frame or snapshot for
	// the largest template stays well below it.
	maxMessageSize         = 4 << 20
	defaultGracefulTimeout = 10 * time.Second
	defaultWatchInterval   = 10 * time.Second
	dependencyProbeTimeout = 5 * time.Second
)

// DependencyCheck is one probe reflected in the health service under Name.
type DependencyCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Option configures the Server.
type Option func(*Server)

func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithListener serves on ln instead of binding the configured port.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.listener = ln }
}

// WithGracefulTimeout bounds how long Stop waits for in-flight calls.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.gracefulTimeout = d
		}
	}
}

// Server is the gRPC listener of the API process.
type Server struct {
	gs              *grpc.Server
	health          *health.Server
	listener        net.Listener
	logger          logging.Logger
	metrics         *prometheus.AppMetrics
	gracefulTimeout time.Duration

	mu      sync.Mutex
	started bool
}

// NewServer binds the listener, installs the interceptor chain and registers
// the health service.  Reflection is registered when cfg.Reflection is set.
func NewServer(cfg config.GRPCConfig, opts ...Option) (*Server, error) {
	s := &Server{logger: logging.NewNopLogger(), gracefulTimeout: defaultGracefulTimeout}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.Named("grpc-server")

	if s.listener == nil {
		addr := fmt.Sprintf(":%d", cfg.Port)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		s.listener = ln
	}

	s.gs = grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 15 * time.Minute,
			Time:              5 * time.Minute,
			Timeout:           time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			recoverUnary(s.logger),
			observeUnary(s.logger, s.metrics),
			mapErrorsUnary(),
		),
		grpc.ChainStreamInterceptor(recoverStream(s.logger)),
	)

	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.gs, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(s.gs)
		s.logger.Info("grpc reflection service registered")
	}
	return s, nil
}

// RegisterService adds a service and marks it SERVING.  Must be called
// before Start.
func (s *Server) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	s.gs.RegisterService(desc, impl)
	s.health.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("grpc service registered", logging.String("service", desc.ServiceName))
}

// Start serves until Stop.  A second call fails.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("grpc server already started")
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info("grpc server starting", logging.String("address", s.Addr()))
	if err := s.gs.Serve(s.listener); err != nil && !stderrors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop flips every status to NOT_SERVING so balancers drain the replica,
// then waits for in-flight calls up to the graceful timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return s.listener.Close()
	}

	s.logger.Info("grpc server stopping")
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, s.gracefulTimeout)
	defer cancel()
	drained := make(chan struct{})
	go func() {
		s.gs.GracefulStop()
		close(drained)
	}()
	select {
	case <-drained:
		s.logger.Info("grpc server stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("grpc graceful stop timed out, forcing stop")
		s.gs.Stop()
	}
	return nil
}

// WatchDependencies probes every check each interval until ctx is done.  Each
// check's result is published under its name; the overall "" status is
// SERVING only while every check passes.
func (s *Server) WatchDependencies(ctx context.Context, interval time.Duration, checks ...DependencyCheck) {
	if len(checks) == 0 {
		return
	}
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	s.probe(ctx, checks)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx, checks)
		}
	}
}

func (s *Server) probe(ctx context.Context, checks []DependencyCheck) {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, c := range checks {
		st := healthpb.HealthCheckResponse_SERVING
		if err := probeOnce(ctx, c); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			overall = st
			s.logger.Warn("dependency unhealthy", logging.String("component", c.Name), logging.Err(err))
		}
		s.health.SetServingStatus(c.Name, st)
	}
	s.health.SetServingStatus("", overall)
}

func probeOnce(ctx context.Context, c DependencyCheck) error {
	ctx, cancel := context.WithTimeout(ctx, dependencyProbeTimeout)
	defer cancel()
	return c.Probe(ctx)
}

// Addr is the bound address, useful when the port was 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

//Personal.AI order the ending
