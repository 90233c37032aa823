package grpc

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/config"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/grpc/services"
	"github.com/turtacn/PrintShop-Customizer/internal/testutil"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// quoteOnly serves Quote and fails everything else.
type quoteOnly struct{ mock.Mock }

func (q *quoteOnly) ListProducts(context.Context) []appcustomization.ProductSummary { return nil }
func (q *quoteOnly) Locations(context.Context, domain.ProductType) ([]domain.PlacementLocation, error) {
	return nil, errors.New(errors.ErrCodeProductTypeUnknown, "unknown product type")
}
func (q *quoteOnly) GetDesign(context.Context, domain.DesignID) (*appcustomization.DesignView, error) {
	return nil, errors.New(errors.ErrCodeDatabaseError, "pq: connection reset")
}
func (q *quoteOnly) RenderFrame(context.Context, domain.DesignID) (*render.Frame, error) {
	panic("render exploded")
}
func (q *quoteOnly) Quote(ctx context.Context, id domain.DesignID, quantity int) (*pricing.LineItem, error) {
	args := q.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.LineItem), args.Error(1)
}
func (q *quoteOnly) ExportSnapshot(context.Context, domain.DesignID) (*appcustomization.ExportedSnapshot, error) {
	return nil, errors.New(errors.ErrCodeDesignLocked, "design is locked by another request")
}

type fixture struct {
	server  *Server
	conn    *grpc.ClientConn
	logger  *testutil.MockLogger
	designs *quoteOnly
}

func newFixture(t *testing.T, metrics *prometheus.AppMetrics) *fixture {
	t.Helper()
	ln := bufconn.Listen(1 << 20)
	logger := testutil.NewMockLogger()
	srv, err := NewServer(config.GRPCConfig{Enabled: true, Reflection: true},
		WithListener(ln), WithLogger(logger), WithMetrics(metrics), WithGracefulTimeout(time.Second))
	require.NoError(t, err)

	designs := new(quoteOnly)
	srv.RegisterService(&services.CustomizerServiceDesc, services.NewCustomizerService(designs, logger))
	go func() { _ = srv.Start() }()

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return ln.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		_ = srv.Stop(context.Background())
	})
	return &fixture{server: srv, conn: conn, logger: logger, designs: designs}
}

func (f *fixture) call(method string, in map[string]interface{}) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	err = f.conn.Invoke(context.Background(), "/"+services.CustomizerServiceName+"/"+method, req, out)
	return out, err
}

func TestServer_QuoteRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	f.designs.On("Quote", mock.Anything, domain.DesignID("d-1"), 5).
		Return(&pricing.LineItem{Quantity: 5, SurchargePerUnit: 100, UnitPrice: 2500, LineTotal: 12500, Currency: "INR"}, nil)

	out, err := f.call("Quote", map[string]interface{}{"designId": "d-1", "quantity": 5})
	require.NoError(t, err)
	assert.Equal(t, float64(12500), out.GetFields()["lineTotal"].GetNumberValue())
	assert.True(t, f.logger.HasMessage("info", "grpc request"))
}

func TestServer_ErrorMapping(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.call("Quote", map[string]interface{}{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), string(errors.ErrCodeBadRequest))

	_, err = f.call("Locations", map[string]interface{}{"productType": "mug"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = f.call("ExportSnapshot", map[string]interface{}{"designId": "d-1"})
	assert.Equal(t, codes.Aborted, status.Code(err))

	_, err = f.call("GetDesign", map[string]interface{}{"designId": "d-1"})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, status.Convert(err).Message(), "pq:")
	assert.True(t, f.logger.HasMessage("error", "grpc request failed"))
}

func TestServer_PanicRecovered(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.call("RenderFrame", map[string]interface{}{"designId": "d-1"})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.True(t, f.logger.HasMessage("error", "grpc panic recovered"))
}

func TestServer_HealthReflectsDependencies(t *testing.T) {
	f := newFixture(t, nil)
	client := healthpb.NewHealthClient(f.conn)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: services.CustomizerServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	f.server.probe(ctx, []DependencyCheck{
		{Name: "postgres", Probe: func(context.Context) error { return nil }},
		{Name: "redis", Probe: func(context.Context) error {
			return errors.New(errors.ErrCodeCacheError, "dial tcp: refused")
		}},
	})

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "redis"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
	assert.True(t, f.logger.HasMessage("warn", "dependency unhealthy"))
}

func TestServer_WatchDependencies_StopsWithContext(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.server.WatchDependencies(ctx, 10*time.Millisecond,
			DependencyCheck{Name: "minio", Probe: func(context.Context) error { return nil }})
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WatchDependencies did not return after cancel")
	}
}

func TestServer_Metrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "grpc_test"}, nil)
	require.NoError(t, err)
	f := newFixture(t, prometheus.NewAppMetrics(collector))
	f.designs.On("Quote", mock.Anything, domain.DesignID("d-1"), 1).Return(&pricing.LineItem{Quantity: 1}, nil)

	_, err = f.call("Quote", map[string]interface{}{"designId": "d-1"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(),
		`grpc_test_grpc_requests_total{code="OK",method="Quote",service="printshop.customizer.v1.Customizer"} 1`)
}

func TestServer_DoubleStart(t *testing.T) {
	f := newFixture(t, nil)
	require.Eventually(t, func() bool {
		f.server.mu.Lock()
		defer f.server.mu.Unlock()
		return f.server.started
	}, time.Second, 5*time.Millisecond)
	assert.Error(t, f.server.Start())
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv, err := NewServer(config.GRPCConfig{}, WithListener(bufconn.Listen(1024)))
	require.NoError(t, err)
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestToStatus_PassesThroughStatusErrors(t *testing.T) {
	in := status.Error(codes.PermissionDenied, "nope")
	assert.Equal(t, in, toStatus(in))
	assert.Equal(t, codes.ResourceExhausted, status.Code(toStatus(errors.RateLimit("slow down"))))
	assert.Equal(t, codes.FailedPrecondition, status.Code(toStatus(errors.New(errors.ErrCodeDesignNotReady, "design is not ready"))))
}

func TestSplitMethodName(t *testing.T) {
	svc, method := splitMethodName("/printshop.customizer.v1.Customizer/Quote")
	assert.Equal(t, "printshop.customizer.v1.Customizer", svc)
	assert.Equal(t, "Quote", method)

	svc, method = splitMethodName("bare")
	assert.Equal(t, "unknown", svc)
	assert.Equal(t, "bare", method)
}

func TestIsHealthCheck(t *testing.T) {
	assert.True(t, isHealthCheck("/grpc.health.v1.Health/Check"))
	assert.False(t, isHealthCheck("/printshop.customizer.v1.Customizer/Quote"))
}

//Personal.AI order the ending
