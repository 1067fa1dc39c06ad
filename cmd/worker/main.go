package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kursadbilgin/hiretrack/internal/config"
	"github.com/kursadbilgin/hiretrack/internal/infra/postgresql"
	"github.com/kursadbilgin/hiretrack/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/hiretrack/internal/infra/redis"
	"github.com/kursadbilgin/hiretrack/internal/mailer"
	"github.com/kursadbilgin/hiretrack/internal/observability"
	"github.com/kursadbilgin/hiretrack/internal/queue"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"github.com/kursadbilgin/hiretrack/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const workerMetricsAddr = ":9091"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer mq.Close()

	taskRepo := repository.NewGormEmailTaskRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.MailRateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	gatewayMailer, err := mailer.NewGatewayMailer(cfg.MailGatewayURL, cfg.MailFromAddress)
	if err != nil {
		logger.Fatal("mail gateway initialization failed", zap.Error(err))
	}

	consumer := queue.NewRabbitMQConsumer(mq, cfg.WorkerConcurrency, logger)
	publisher := queue.NewRabbitMQPublisher(mq)

	workerService, err := service.NewWorkerService(
		taskRepo,
		attemptRepo,
		consumer,
		gatewayMailer,
		rateLimiter,
		cfg.WorkerConcurrency,
		logger,
	)
	if err != nil {
		logger.Fatal("worker service initialization failed", zap.Error(err))
	}

	retryScanner, err := service.NewRetryScanner(taskRepo, publisher, 0, 0, logger)
	if err != nil {
		logger.Fatal("retry scanner initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	workerService.SetMetrics(metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:              workerMetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return workerService.Start(groupCtx)
	})
	g.Go(func() error {
		return retryScanner.Start(groupCtx)
	})
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	logger.Info("hiretrack worker started",
		zap.Int("concurrency", cfg.WorkerConcurrency),
		zap.String("metricsAddr", workerMetricsAddr),
	)

	if err := g.Wait(); err != nil {
		logger.Fatal("worker stopped with error", zap.Error(err))
	}
	logger.Info("worker stopped")
}
