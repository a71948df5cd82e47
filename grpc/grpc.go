package grpc

import (
	"context"
	"time"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/storage"

	otgrpc "github.com/opentracing-contrib/go-grpc"
	"github.com/opentracing/opentracing-go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// SetUpServer registers the health and reflection services. The health server starts NOT_SERVING
// until WatchDatabase reports a successful ping.
func SetUpServer(cfg config.Config, log logger.LoggerI) (grpcServer *grpc.Server, healthServer *health.Server) {
	tracer := opentracing.GlobalTracer()

	grpcServer = grpc.NewServer(
		grpc.UnaryInterceptor(otgrpc.OpenTracingServerInterceptor(tracer)),
		grpc.StreamInterceptor(otgrpc.OpenTracingStreamServerInterceptor(tracer)),
	)

	healthServer = health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(cfg.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	log.Info("GRPC: health service registered", logger.String("service", cfg.ServiceName))
	return
}

// WatchDatabase pings the database every interval and mirrors the result into the health server
// until ctx is done, when everything is marked NOT_SERVING.
func WatchDatabase(ctx context.Context, log logger.LoggerI, strg storage.StorageI, healthServer *health.Server, service string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := false
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		err := strg.Ping(pingCtx)
		if err != nil && serving {
			log.Warn("---WatchDatabase--->>>", logger.Error(err))
		}
		if (err == nil) == serving {
			return
		}

		serving = err == nil
		status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
		if serving {
			status = grpc_health_v1.HealthCheckResponse_SERVING
		}
		healthServer.SetServingStatus("", status)
		healthServer.SetServingStatus(service, status)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			healthServer.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}
