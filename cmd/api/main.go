package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/kursadbilgin/hiretrack/internal/auth"
	"github.com/kursadbilgin/hiretrack/internal/config"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/handler"
	"github.com/kursadbilgin/hiretrack/internal/infra/postgresql"
	"github.com/kursadbilgin/hiretrack/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/hiretrack/internal/infra/redis"
	"github.com/kursadbilgin/hiretrack/internal/observability"
	"github.com/kursadbilgin/hiretrack/internal/queue"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"github.com/kursadbilgin/hiretrack/internal/service"
	"github.com/kursadbilgin/hiretrack/internal/transport"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

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

	publisher := queue.NewRabbitMQPublisher(mq)

	app, err := buildApp(cfg, db, rdb, publisher, logger)
	if err != nil {
		logger.Fatal("application wiring failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("hiretrack api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildApp(
	cfg *config.Config,
	db *gorm.DB,
	rdb *goredis.Client,
	publisher queue.Publisher,
	logger *zap.Logger,
) (*fiber.App, error) {
	applicationRepo := repository.NewGormApplicationRepo(db)
	jobRepo := repository.NewGormJobRepo(db)
	userRepo := repository.NewGormUserRepo(db)
	taskRepo := repository.NewGormEmailTaskRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)

	emailService, err := service.NewEmailService(taskRepo, publisher, cfg.EmailMaxAttempts, logger)
	if err != nil {
		return nil, err
	}

	applicationService, err := service.NewApplicationService(applicationRepo, jobRepo, userRepo, emailService, logger)
	if err != nil {
		return nil, err
	}

	jobService, err := service.NewJobService(jobRepo, logger)
	if err != nil {
		return nil, err
	}

	statsService, err := service.NewStatsService(applicationRepo, jobRepo, logger)
	if err != nil {
		return nil, err
	}

	adminService, err := service.NewAdminService(userRepo, jobRepo, applicationRepo, taskRepo, attemptRepo, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	applicationService.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("", auth.Identity(userRepo))
	if err := handler.RegisterApplicationRoutes(api, applicationService); err != nil {
		return nil, err
	}
	if err := handler.RegisterJobRoutes(api, jobService); err != nil {
		return nil, err
	}
	if err := handler.RegisterStatsRoutes(api, statsService); err != nil {
		return nil, err
	}

	admin := api.Group("/v1/admin", auth.RequireRole(domain.RoleAdmin))
	if err := handler.RegisterAdminRoutes(admin, adminService); err != nil {
		return nil, err
	}

	return app, nil
}
