package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/application/dispatcher"
	"github.com/profitum/dossier-engine/internal/application/port"
	"github.com/profitum/dossier-engine/internal/application/report"
	"github.com/profitum/dossier-engine/internal/application/service"
	"github.com/profitum/dossier-engine/internal/config"
	"github.com/profitum/dossier-engine/internal/domain/document"
	"github.com/profitum/dossier-engine/internal/domain/event"
	"github.com/profitum/dossier-engine/internal/infrastructure/directory"
	"github.com/profitum/dossier-engine/internal/infrastructure/notify"
	"github.com/profitum/dossier-engine/internal/infrastructure/persistence/repository"
	"github.com/profitum/dossier-engine/internal/infrastructure/persistence/sqlite"
	"github.com/profitum/dossier-engine/internal/infrastructure/storage"
	"github.com/profitum/dossier-engine/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	sqlDB        *sql.DB
	db           *sqlite.DB
	repositories *RepositoryBundle
	docStorage   port.DocumentStorage
	expertDir    port.ExpertDirectory
	transport    port.NotificationDispatcher

	// Application
	dispatcher dispatcher.Dispatcher
	tracker    *document.Tracker
	services   *ServiceBundle

	// Lifecycle
	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Dossier      port.DossierRepository
	History      port.HistoryRepository
	Notification port.NotificationRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Dossier      service.DossierService
	Assignment   service.AssignmentService
	Notification service.NotificationService
	Report       service.ReportService
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// database and migrations, repositories, adapters, dispatcher, services.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	c.initAdapters()
	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

func (c *Container) initDatabase() error {
	sqlDB, err := database.Open(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}
	c.sqlDB = sqlDB

	migrator := database.NewMigrator(sqlDB, c.logger)
	if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	c.db = sqlite.NewDB(sqlDB, c.logger)
	c.repositories = &RepositoryBundle{
		Dossier:      repository.NewDossierRepository(sqlDB, c.logger),
		History:      repository.NewHistoryRepository(sqlDB, c.logger),
		Notification: repository.NewNotificationRepository(sqlDB, c.logger),
	}
	return nil
}

func (c *Container) initAdapters() {
	c.docStorage = storage.NewDocumentCatalog(c.sqlDB, c.logger)
	c.expertDir = directory.NewExpertDirectory(c.sqlDB, c.logger)
	c.transport = notify.NewLogDispatcher(c.logger)
	c.tracker = document.NewTracker(c.docStorage)
}

func (c *Container) initServices() error {
	serviceLogger := &zapLoggerAdapter{logger: c.logger}

	c.dispatcher = dispatcher.NewDispatcher(serviceLogger)

	dossierService := service.NewDossierService(
		c.repositories.Dossier,
		c.repositories.History,
		c.db,
		c.tracker,
		c.dispatcher,
		serviceLogger,
		service.WithLockTimeout(c.config.Workflow.LockTimeout),
	)

	assignmentService := service.NewAssignmentService(dossierService, c.expertDir, serviceLogger)

	notificationService := service.NewNotificationService(
		c.repositories.Notification,
		c.transport,
		serviceLogger,
	)
	c.dispatcher.Subscribe(event.TypeStatusChanged, "notifications", notificationService.HandleStatusChanged)

	builder, err := report.NewWorkbookBuilder(c.config.Report.OutputDir, c.logger)
	if err != nil {
		return fmt.Errorf("prepare report output directory: %w", err)
	}
	reportService := service.NewReportService(
		c.repositories.Dossier,
		c.docStorage,
		builder,
		c.dispatcher,
		serviceLogger,
	)

	c.services = &ServiceBundle{
		Dossier:      dossierService,
		Assignment:   assignmentService,
		Notification: notificationService,
		Report:       reportService,
	}
	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Services returns the application service bundle.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns the repository bundle.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}
