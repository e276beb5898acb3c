package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Anmirazik/ev-server/config"
	"github.com/Anmirazik/ev-server/domain/repository"
	"github.com/Anmirazik/ev-server/domain/service"
	"github.com/Anmirazik/ev-server/infrastructure/database"
	"github.com/Anmirazik/ev-server/infrastructure/locking"
	"github.com/Anmirazik/ev-server/infrastructure/notification"
	"github.com/Anmirazik/ev-server/infrastructure/scheduler"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/common"
	"github.com/Anmirazik/ev-server/usecase"
)

const (
	version = "1.0.0"

	initTimeout     = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(os.Getenv("EVSERVER_CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.Service.InstanceID == "" {
		cfg.Service.InstanceID = common.Crypto.GenerateUUID()
	}

	// Initialize logger
	loggerConfig := cfg.Logging
	loggerConfig.ServiceName = cfg.Service.Name
	loggerConfig.Development = cfg.Service.Environment == "development"

	logger, err := logging.NewLogger(loggerConfig)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logging.SetGlobalLogger(logger)

	logger.Info("Starting user import service",
		logging.String("service", cfg.Service.Name),
		logging.String("version", version),
		logging.String("environment", cfg.Service.Environment),
		logging.String("instance_id", cfg.Service.InstanceID),
	)

	// Initialize metrics
	metrics.InitGlobalCollector(cfg.Metrics.Namespace)
	collector := metrics.GetGlobalCollector()

	metricsServer := metrics.NewServer(cfg.Metrics, collector)
	go func() {
		if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", logging.String("error", err.Error()))
		}
	}()

	// Initialize dependencies
	initCtx, cancelInit := context.WithTimeout(context.Background(), initTimeout)
	deps, err := initializeDependencies(initCtx, cfg, logger, collector)
	cancelInit()
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", logging.String("error", err.Error()))
	}

	// Start the import scheduler
	if err := deps.Scheduler.Start(); err != nil {
		deps.Cleanup()
		logger.Fatal("Failed to start import scheduler", logging.String("error", err.Error()))
	}

	logger.Info("User import service started successfully",
		logging.String("schedule", cfg.Import.Schedule),
		logging.Int("max_concurrent_tenants", cfg.Import.MaxConcurrentTenants),
	)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Shutdown signal received", logging.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := deps.Scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("Import scheduler shutdown failed", logging.String("error", err.Error()))
	}

	if err := metricsServer.Stop(); err != nil {
		logger.Error("Metrics server shutdown failed", logging.String("error", err.Error()))
	}

	deps.Cleanup()

	logger.Info("User import service shutdown completed")
}

// Dependencies represents all service dependencies
type Dependencies struct {
	// Database
	MongoClient            *database.Client
	UserRepository         repository.UserRepository
	ImportedUserRepository repository.ImportedUserRepository
	TenantRepository       repository.TenantRepository

	// Infrastructure services
	LockCoordinator *locking.RedisLockCoordinator
	Publisher       *notification.KafkaReportPublisher
	Reporter        *notification.Reporter

	// Core services
	ImportUseCase *usecase.ImportUsersUseCase
	Scheduler     *scheduler.ImportScheduler

	logger *logging.Logger
}

// Cleanup closes all dependencies in reverse initialization order.
func (d *Dependencies) Cleanup() {
	d.logger.Info("Cleaning up dependencies")

	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.logger.Error("Failed to close report publisher", logging.String("error", err.Error()))
		}
	}

	if d.LockCoordinator != nil {
		if err := d.LockCoordinator.Close(); err != nil {
			d.logger.Error("Failed to close lock coordinator", logging.String("error", err.Error()))
		}
	}

	if d.MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.MongoClient.Disconnect(ctx); err != nil {
			d.logger.Error("Failed to disconnect from MongoDB", logging.String("error", err.Error()))
		}
	}
}

// initializeDependencies initializes all service dependencies
func initializeDependencies(ctx context.Context, cfg *config.Config, logger *logging.Logger, collector *metrics.Collector) (*Dependencies, error) {
	logger.Info("Initializing dependencies")

	deps := &Dependencies{
		logger: logger,
	}

	// 1. MongoDB connection and repositories
	mongoClient, err := database.NewClient(ctx, cfg.MongoDB, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	deps.MongoClient = mongoClient

	db := mongoClient.Database()
	deps.UserRepository = database.NewMongoUserRepository(db, logger, collector)
	deps.ImportedUserRepository = database.NewMongoImportedUserRepository(db, logger, collector)
	deps.TenantRepository = database.NewMongoTenantRepository(db, logger, collector)

	// 2. Redis lock coordinator
	lockCoordinator, err := locking.NewRedisLockCoordinator(cfg.Redis, cfg.Import.LockTTL, logger, collector)
	if err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to initialize lock coordinator: %w", err)
	}
	deps.LockCoordinator = lockCoordinator

	// 3. Import reporter, backed by Kafka when enabled and log-only otherwise
	var publisher notification.ReportPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := notification.NewKafkaReportPublisher(cfg.Kafka, logger, collector)
		deps.Publisher = kafkaPublisher
		publisher = kafkaPublisher
	} else {
		logger.Warn("Kafka reporting disabled, import reports will only be logged")
	}
	deps.Reporter = notification.NewReporter(publisher, logger, collector)

	// 4. Import use case
	deps.ImportUseCase = usecase.NewImportUsersUseCase(
		deps.LockCoordinator,
		deps.ImportedUserRepository,
		deps.UserRepository,
		deps.Reporter,
		service.DefaultReportTemplates(),
		cfg.Import.PageSize,
		cfg.Import.ReleaseTimeout,
		logger,
		collector,
	)

	// 5. Import scheduler
	deps.Scheduler = scheduler.NewImportScheduler(
		deps.ImportUseCase,
		deps.TenantRepository,
		cfg.Import,
		logger,
		collector,
	)

	logger.Info("Dependencies initialized successfully",
		logging.Strings("kafka_brokers", cfg.Kafka.Brokers),
		logging.Bool("kafka_enabled", cfg.Kafka.Enabled),
		logging.Int64("page_size", cfg.Import.PageSize),
	)

	return deps, nil
}
