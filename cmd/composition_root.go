package cmd

import (
	"orders/api"
	orderhttp "orders/internal/adapters/in/http"
	"orders/internal/adapters/in/messaging"
	"orders/internal/adapters/out/devices"
	"orders/internal/adapters/out/identity"
	"orders/internal/adapters/out/natsstan"
	"orders/internal/adapters/out/postgres"
	"orders/internal/adapters/out/remote"
	"orders/internal/core/application/services"
	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/ports"
	"orders/internal/jobs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived dependencies of the process and builds
// every handler, listener and job from them.
type CompositionRoot struct {
	cfg         Config
	gormDB      *gorm.DB
	uowFactory  *postgres.GormUnitOfWorkFactory
	devices     ports.DeviceGateway
	resolver    ports.RecipientResolver
	notifier    commands.OrderNotifier
	idempotency ports.IdempotencyStore
	logger      *zap.Logger
}

// NewCompositionRoot builds the remote clients and application services.
//
// Parameters:
//   - cfg: validated process configuration
//   - gormDB: shared connection pool
//   - publisher: STAN connection used for order events
//   - idempotency: Redis or in-memory key store
//   - logger: may be nil
//
// Returns an error when a remote client cannot be configured.
//
// Example:
//
//	root, err := cmd.NewCompositionRoot(cfg, db, sc, store, logger)
//	if err != nil {
//	    return err
//	}
//	router, err := root.CreateRouter()
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	publisher natsstan.AsyncPublisher,
	idempotency ports.IdempotencyStore,
	logger *zap.Logger,
) (CompositionRoot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	deviceGateway, err := devices.NewClient(remote.Config{
		BaseURL:      cfg.DevicesServiceURL,
		Timeout:      cfg.DevicesServiceTimeout,
		ServiceToken: cfg.ServiceToken,
	}, logger)
	if err != nil {
		return CompositionRoot{}, err
	}

	directory, err := identity.NewClient(remote.Config{
		BaseURL:      cfg.IdentityServiceURL,
		Timeout:      cfg.IdentityServiceTimeout,
		ServiceToken: cfg.ServiceToken,
	}, logger)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		cfg:         cfg,
		gormDB:      gormDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB),
		devices:     deviceGateway,
		resolver:    services.NewAssigneeResolver(directory, logger),
		notifier:    services.NewEventNotifier(natsstan.NewPublisher(publisher, logger), logger),
		idempotency: idempotency,
		logger:      logger,
	}, nil
}

// CreateCreateOrderCommandHandler wires order creation.
func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	h := commands.NewCreateOrderCommandHandler(f, c.devices, c.resolver, c.notifier, c.idempotency, c.logger)
	return &h
}

// CreateChangeOrderStateCommandHandler wires transitions. The finishing
// request claims the restoration row for RestoreRetryLease.
func (c *CompositionRoot) CreateChangeOrderStateCommandHandler() *commands.ChangeOrderStateCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	h := commands.NewChangeOrderStateCommandHandler(f, c.devices, c.resolver, c.notifier, c.cfg.RestoreRetryLease, c.logger)
	return &h
}

// CreateApplyNotificationStatusCommandHandler wires the notification reconciler.
func (c *CompositionRoot) CreateApplyNotificationStatusCommandHandler() *commands.ApplyNotificationStatusCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	h := commands.NewApplyNotificationStatusCommandHandler(f, c.logger)
	return &h
}

// CreateRetryDeviceRestorationsCommandHandler wires the ledger drain used by
// the restore job.
func (c *CompositionRoot) CreateRetryDeviceRestorationsCommandHandler() *commands.RetryDeviceRestorationsCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	h := commands.NewRetryDeviceRestorationsCommandHandler(f, c.devices, c.logger)
	return &h
}

// CreateGetOrderQueryHandler returns a read-side handler on the shared pool.
func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

// CreateListOrdersQueryHandler returns a read-side handler on the shared pool.
func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

// CreateRouter builds the echo instance with JWT, OpenAPI validation and
// swagger routes. It fails when the embedded OpenAPI document does not load.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	server := orderhttp.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateChangeOrderStateCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateListOrdersQueryHandler(),
	)
	return orderhttp.NewRouter(server, orderhttp.RouterConfig{
		JWTSecret:       c.cfg.JWTSecret,
		OpenAPIDocument: api.OpenAPIDocument(),
		Debug:           c.cfg.LogMode != "production" && c.cfg.LogMode != "prod",
	}, c.logger)
}

// CreateNotificationListener returns the listener for notification outcomes.
// The caller subscribes it once the STAN connection is up.
func (c *CompositionRoot) CreateNotificationListener() *messaging.NotificationListener {
	return messaging.NewNotificationListener(messaging.ListenerConfig{
		Subject: c.cfg.NotificationsSubject,
		Queue:   c.cfg.NotificationsQueue,
		Durable: c.cfg.NotificationsDurable,
	}, c.CreateApplyNotificationStatusCommandHandler(), c.logger)
}

// CreateJobManager returns the manager holding the device restore job.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	restoreJob := jobs.NewDeviceRestoreJob(c.CreateRetryDeviceRestorationsCommandHandler(), jobs.DeviceRestoreJobConfig{
		Schedule:  c.cfg.RestoreRetrySchedule,
		BatchSize: c.cfg.RestoreRetryBatch,
		Lease:     c.cfg.RestoreRetryLease,
	}, c.logger)
	return jobs.NewJobManager(restoreJob)
}

// FuncOrderUoWFactory adapts a function to commands.OrderUoWFactory.
type FuncOrderUoWFactory func() commands.OrderUoW

// Create calls f.
func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

// FuncUoWFactory adapts a function to commands.UoWFactory.
type FuncUoWFactory func() commands.UoW

// Create calls f.
func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
