package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"heroes/heroes_go_service/api"
	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/grpc"
	"heroes/heroes_go_service/pkg/cron"
	"heroes/heroes_go_service/pkg/jaeger"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/pkg/seed"
	"heroes/heroes_go_service/storage/minio"
	"heroes/heroes_go_service/storage/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	loggerLevel := logger.LevelDebug

	switch cfg.Environment {
	case config.DebugMode:
		loggerLevel = logger.LevelDebug
	case config.TestMode:
		loggerLevel = logger.LevelDebug
	default:
		loggerLevel = logger.LevelInfo
	}

	log := logger.NewLogger(cfg.ServiceName, loggerLevel)
	defer logger.Cleanup(log)
	log.Info("Service env", logger.String("environment", cfg.Environment), logger.String("version", cfg.Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerCloser, err := jaeger.InitTracer(cfg.ServiceName, cfg.JaegerHostPort)
	if err != nil {
		log.Panic("jaeger.InitTracer", logger.Error(err))
	}
	defer tracerCloser.Close()

	pgStore, err := postgres.NewPostgres(ctx, cfg, log)
	if err != nil {
		log.Panic("postgres.NewPostgres", logger.Error(err))
	}
	defer pgStore.CloseDB()

	objects, err := minio.NewObjectStore(cfg)
	if err != nil {
		log.Panic("minio.NewObjectStore", logger.Error(err))
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		log.Error("minio EnsureBucket, avatars unavailable", logger.Error(err))
	}

	seedData, err := seed.Default()
	if err != nil {
		log.Panic("seed.Default", logger.Error(err))
	}

	scheduler := cron.New(log, pgStore, seedData.HeroModels())
	if err := scheduler.RunJobs(ctx, cfg.DemoResetSchedule); err != nil {
		log.Panic("scheduler.RunJobs", logger.Error(err))
	}
	defer func() { <-scheduler.Stop().Done() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           api.SetUpAPI(cfg, log, pgStore, objects, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, healthServer := grpc.SetUpServer(cfg, log)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP: Server being started...", logger.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCPort)
		if err != nil {
			return err
		}
		log.Info("GRPC: Server being started...", logger.String("port", cfg.GRPCPort))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		grpc.WatchDatabase(gCtx, log, pgStore, healthServer, cfg.ServiceName, 15*time.Second)
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", logger.Error(err))
	}
}
