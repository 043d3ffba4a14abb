package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"orders/cmd"
	"orders/internal/adapters/out/idempotency"
	"orders/internal/adapters/out/natsstan"
	"orders/internal/adapters/out/postgres"
	"orders/internal/core/ports"
	"orders/internal/jobs"
	"orders/internal/pkg/logging"
	"orders/internal/pkg/observability"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; the environment wins over it
	_ = godotenv.Load(".env")

	configs := getConfigs()

	logger, err := logging.New(configs.LogMode)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err = configs.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, logger, observability.TracingConfig{
		ServiceName:  "orders",
		OTLPEndpoint: configs.OTLPEndpoint,
		Insecure:     true,
	})
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}

	gormDB := mustOpenDatabase(configs, logger)

	stanConn, err := natsstan.Connect(natsstan.Config{
		ClusterID: configs.StanClusterID,
		ClientID:  configs.StanClientID,
		URL:       configs.NatsURL,
	}, logger)
	if err != nil {
		logger.Fatal("nats streaming connect failed", zap.Error(err))
	}

	store, closeStore := newIdempotencyStore(ctx, configs, logger)

	app, err := cmd.NewCompositionRoot(configs, gormDB, stanConn, store, logger)
	if err != nil {
		logger.Fatal("composition failed", zap.Error(err))
	}

	subscription, err := app.CreateNotificationListener().Subscribe(stanConn)
	if err != nil {
		logger.Fatal("notification listener failed", zap.Error(err))
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		logger.Fatal("failed to start jobs", zap.Error(err))
	}

	e, err := app.CreateRouter()
	if err != nil {
		logger.Fatal("router init failed", zap.Error(err))
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", configs.HTTPAddr()))
		if startErr := e.Start(configs.HTTPAddr()); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			logger.Error("http server stopped", zap.Error(startErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	jobManager.StopAll()
	// Close keeps the durable subscription registered for the next start
	if err = subscription.Close(); err != nil {
		logger.Warn("subscription close", zap.Error(err))
	}
	if err = stanConn.Close(); err != nil {
		logger.Warn("nats streaming close", zap.Error(err))
	}
	closeStore()
	if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	if err = shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func getConfigs() cmd.Config {
	return cmd.Config{
		HTTPPort:   envString("HTTP_PORT", "8080"),
		DBHost:     envString("DB_HOST", ""),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", ""),
		DBPassword: envString("DB_PASSWORD", ""),
		DBName:     envString("DB_NAME", ""),
		DBSslMode:  envString("DB_SSLMODE", "disable"),

		DevicesServiceURL:      envString("DEVICES_SERVICE_URL", ""),
		DevicesServiceTimeout:  envDuration("DEVICES_SERVICE_TIMEOUT", 5*time.Second),
		IdentityServiceURL:     envString("IDENTITY_SERVICE_URL", ""),
		IdentityServiceTimeout: envDuration("IDENTITY_SERVICE_TIMEOUT", 5*time.Second),
		ServiceToken:           envString("SERVICE_TOKEN", ""),
		JWTSecret:              envString("JWT_SECRET", ""),

		StanClusterID:        envString("STAN_CLUSTER_ID", ""),
		StanClientID:         envString("STAN_CLIENT_ID", ""),
		NatsURL:              envString("NATS_URL", ""),
		NotificationsSubject: envString("NOTIFICATIONS_SUBJECT", "notification.completed"),
		NotificationsQueue:   envString("NOTIFICATIONS_QUEUE", "orders"),
		NotificationsDurable: envString("NOTIFICATIONS_DURABLE", "orders-notifications"),

		RedisAddr:      envString("REDIS_ADDR", ""),
		IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", idempotency.DefaultTTL),

		RestoreRetrySchedule: envString("RESTORE_RETRY_SCHEDULE", jobs.DefaultRestoreSchedule),
		RestoreRetryBatch:    envInt("RESTORE_RETRY_BATCH", jobs.DefaultRestoreBatch),
		RestoreRetryLease:    envDuration("RESTORE_RETRY_LEASE", jobs.DefaultRestoreLease),

		LogMode:      envString("LOG_MODE", "development"),
		OTLPEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(envString(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(envString(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func mustOpenDatabase(configs cmd.Config, logger *zap.Logger) *gorm.DB {
	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	if err = gormDB.AutoMigrate(postgres.Models()...); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}
	return gormDB
}

func newIdempotencyStore(ctx context.Context, configs cmd.Config, logger *zap.Logger) (ports.IdempotencyStore, func()) {
	if configs.RedisAddr == "" {
		logger.Warn("REDIS_ADDR is empty, idempotency keys are kept in memory")
		return idempotency.NewMemoryStore(configs.IdempotencyTTL), func() {}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        configs.RedisAddr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Fatal("redis ping failed", zap.Error(err))
	}
	return idempotency.NewRedisStore(rdb, configs.IdempotencyTTL), func() { _ = rdb.Close() }
}
