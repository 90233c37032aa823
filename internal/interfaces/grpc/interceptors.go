package grpc

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// Chain order: recover → observe → mapErrors.  observe therefore sees the
// final gRPC code, and a panic never reaches it.

func recoverUnary(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered(logger, info.FullMethod, r)
			}
		}()
		return handler(ctx, req)
	}
}

func recoverStream(logger logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered(logger, info.FullMethod, r)
			}
		}()
		return handler(srv, ss)
	}
}

func recovered(logger logging.Logger, method string, r interface{}) error {
	logger.Error("grpc panic recovered",
		logging.String("method", method),
		logging.String("panic", fmt.Sprint(r)),
		logging.String("stack", string(debug.Stack())),
	)
	return status.Error(codes.Internal, "internal server error")
}

// observeUnary logs and measures every call except health probes, which the
// orchestrator issues every few seconds.
func observeUnary(logger logging.Logger, metrics *prometheus.AppMetrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if isHealthCheck(info.FullMethod) {
			return handler(ctx, req)
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)
		code := status.Code(err)

		if metrics != nil {
			service, method := splitMethodName(info.FullMethod)
			prometheus.RecordGRPCRequest(metrics, service, method, code.String(), elapsed)
		}
		fields := []logging.Field{
			logging.String("method", info.FullMethod),
			logging.Duration("duration", elapsed),
			logging.String("code", code.String()),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("grpc request failed", append(fields, logging.Err(err))...)
		} else {
			logger.Info("grpc request", fields...)
		}
		return resp, err
	}
}

func mapErrorsUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return resp, toStatus(err)
		}
		return resp, nil
	}
}

// grpcCodeForHTTP follows the HTTP status class of an error code, so gRPC
// and REST clients see the same taxonomy.  A design that is not READY yet
// is a FailedPrecondition; a held design lock is Aborted (retryable).
var grpcCodeForHTTP = map[int]codes.Code{
	http.StatusBadRequest:            codes.InvalidArgument,
	http.StatusUnprocessableEntity:   codes.InvalidArgument,
	http.StatusRequestEntityTooLarge: codes.InvalidArgument,
	http.StatusUnsupportedMediaType:  codes.InvalidArgument,
	http.StatusUnauthorized:          codes.Unauthenticated,
	http.StatusForbidden:             codes.PermissionDenied,
	http.StatusNotFound:              codes.NotFound,
	http.StatusConflict:              codes.FailedPrecondition,
	http.StatusLocked:                codes.Aborted,
	http.StatusTooManyRequests:       codes.ResourceExhausted,
	http.StatusServiceUnavailable:    codes.Unavailable,
	http.StatusGatewayTimeout:        codes.DeadlineExceeded,
	http.StatusNotImplemented:        codes.Unimplemented,
}

// toStatus converts an application error to a status.  Errors that already
// carry one pass through; server-side failures are masked.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := errors.GetCode(err)
	c, ok := grpcCodeForHTTP[errors.HTTPStatusForCode(code)]
	if !ok {
		return status.Error(codes.Internal, string(errors.ErrCodeInternal)+": internal server error")
	}
	msg := string(code)
	var ae *errors.AppError
	if errors.As(err, &ae) {
		msg += ": " + ae.Message
	}
	return status.Error(c, msg)
}

func isHealthCheck(method string) bool {
	return strings.HasPrefix(method, "/grpc.health.v1.Health/")
}

// splitMethodName splits "/package.Service/Method".
func splitMethodName(fullMethod string) (service, method string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	i := strings.LastIndex(fullMethod, "/")
	if i < 0 {
		return "unknown", fullMethod
	}
	return fullMethod[:i], fullMethod[i+1:]
}

//Personal.AI order the ending
