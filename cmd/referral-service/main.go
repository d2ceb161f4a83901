package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LavaJover/shvark-referral-service/internal/app/background"
	"github.com/LavaJover/shvark-referral-service/internal/app/setup"
	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	zapLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("referral service stopped", zap.Error(err))
	}
}

func run(cfg *config.ReferralConfig, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	referralMetrics := metrics.NewReferralMetrics(prometheus.DefaultRegisterer)

	deps, err := setup.InitializeDependencies(cfg, zapLogger, referralMetrics)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer deps.Close()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("init usecases: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	router := handlers.NewRouter(
		handlers.RouterConfig{
			Gatherer:       prometheus.DefaultGatherer,
			HealthChecks:   deps.HealthChecks(),
			RequestTimeout: cfg.HTTPServer.WriteTimeout,
		},
		zapLogger,
		handlers.NewAffiliateHandler(ucs.AffiliateUsecase, zapLogger),
		handlers.NewHierarchyHandler(ucs.HierarchyUsecase, zapLogger),
		handlers.NewCommissionHandler(ucs.CommissionUsecase, ucs.LedgerUsecase, zapLogger),
		handlers.NewLedgerHandler(ucs.LedgerUsecase, zapLogger),
		handlers.NewTeamHandler(ucs.TeamUsecase, loc, zapLogger),
	)
	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	grpcServer, healthServer := grpcapi.NewServer(zapLogger)
	lis, err := net.Listen("tcp", net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	tasks := background.NewBackgroundTasks(ucs.CommissionUsecase, cfg.KafkaService, zapLogger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zapLogger.Info("http server started", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		zapLogger.Info("gRPC server started", zap.String("addr", lis.Addr().String()))
		grpcapi.SetServing(healthServer, true)
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return tasks.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("shutting down")
		grpcapi.SetServing(healthServer, false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zapLogger.Warn("http shutdown", zap.Error(err))
		}
		grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}
