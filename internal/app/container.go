package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	availabilityCommands "github.com/felixgeelhaar/vaxsched/internal/availability/application/commands"
	availabilityQueries "github.com/felixgeelhaar/vaxsched/internal/availability/application/queries"
	availabilityDomain "github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	availabilityPersistence "github.com/felixgeelhaar/vaxsched/internal/availability/infrastructure/persistence"
	bookingCommands "github.com/felixgeelhaar/vaxsched/internal/booking/application/commands"
	bookingQueries "github.com/felixgeelhaar/vaxsched/internal/booking/application/queries"
	bookingDomain "github.com/felixgeelhaar/vaxsched/internal/booking/domain"
	bookingPersistence "github.com/felixgeelhaar/vaxsched/internal/booking/infrastructure/persistence"
	identityCommands "github.com/felixgeelhaar/vaxsched/internal/identity/application/commands"
	identityQueries "github.com/felixgeelhaar/vaxsched/internal/identity/application/queries"
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/vaxsched/internal/identity/infrastructure/persistence"
	inventoryCommands "github.com/felixgeelhaar/vaxsched/internal/inventory/application/commands"
	inventoryQueries "github.com/felixgeelhaar/vaxsched/internal/inventory/application/queries"
	inventoryDomain "github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	inventoryPersistence "github.com/felixgeelhaar/vaxsched/internal/inventory/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/vaxsched/internal/shared/application"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/vaxsched/pkg/config"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database (one of the two is set depending on the detected driver)
	DBDriver database.Driver
	SQLiteDB *sql.DB
	PgPool   *pgxpool.Pool

	// Redis (session backend, optional)
	RedisClient *redis.Client

	// Repositories
	AccountRepo     identityDomain.AccountRepository
	SessionRepo     identityDomain.SessionRepository
	VaccineRepo     inventoryDomain.VaccineRepository
	SlotRepo        availabilityDomain.SlotRepository
	AppointmentRepo bookingDomain.AppointmentRepository
	OutboxRepo      outbox.Repository

	// Publishers
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Metrics
	Metrics observability.Metrics

	// Identity handlers
	RegisterAccountHandler *identityCommands.RegisterAccountHandler
	LoginHandler           *identityCommands.LoginHandler
	LogoutHandler          *identityCommands.LogoutHandler
	CurrentSessionHandler  *identityQueries.CurrentSessionHandler

	// Inventory handlers
	AddDosesHandler     *inventoryCommands.AddDosesHandler
	ListVaccinesHandler *inventoryQueries.ListVaccinesHandler

	// Availability handlers
	PublishSlotHandler    *availabilityCommands.PublishSlotHandler
	SearchScheduleHandler *availabilityQueries.SearchScheduleHandler

	// Booking handlers
	ReserveHandler          *bookingCommands.ReserveHandler
	ListAppointmentsHandler *bookingQueries.ListAppointmentsHandler

	// Outbox Processor
	OutboxProcessor *outbox.Processor
}

// NewContainer creates and wires all dependencies. The database backend is
// selected from the configured connection string: an empty DATABASE_URL runs
// zero-config local SQLite, a postgres:// URL runs against PostgreSQL.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NoopMetrics{},
	}

	driver := database.DetectDriver(cfg.DatabaseURL)
	c.DBDriver = driver

	switch driver {
	case database.DriverPostgres:
		if err := c.initPostgres(ctx, cfg, logger); err != nil {
			return nil, err
		}
	case database.DriverSQLite:
		if err := c.initSQLite(ctx, cfg, logger); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// Session backend: Redis when configured, otherwise the SQL store
	// created by the driver init above.
	if cfg.SessionBackend == "redis" {
		if err := c.initRedisSessions(ctx, cfg, logger); err != nil {
			c.closeDatabases()
			return nil, err
		}
	}

	// Event publisher: RabbitMQ when configured, in-process bus otherwise.
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.closeDatabases()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
			c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
			c.EventPublisher = c.InProcessEventBus
		} else {
			c.EventPublisher = publisher
		}
	} else {
		c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
		c.EventPublisher = c.InProcessEventBus
	}

	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}

	// Identity handlers
	c.RegisterAccountHandler = identityCommands.NewRegisterAccountHandler(c.AccountRepo, c.OutboxRepo, c.UnitOfWork)
	c.LoginHandler = identityCommands.NewLoginHandler(c.AccountRepo, c.SessionRepo, c.OutboxRepo, sessionTTL)
	c.LogoutHandler = identityCommands.NewLogoutHandler(c.SessionRepo, c.OutboxRepo)
	c.CurrentSessionHandler = identityQueries.NewCurrentSessionHandler(c.SessionRepo)

	// Inventory handlers
	c.AddDosesHandler = inventoryCommands.NewAddDosesHandler(c.VaccineRepo, c.OutboxRepo, c.UnitOfWork, c.Metrics)
	c.ListVaccinesHandler = inventoryQueries.NewListVaccinesHandler(c.VaccineRepo)

	// Availability handlers
	c.PublishSlotHandler = availabilityCommands.NewPublishSlotHandler(c.SlotRepo, c.OutboxRepo, c.UnitOfWork, c.Metrics)
	c.SearchScheduleHandler = availabilityQueries.NewSearchScheduleHandler(c.SlotRepo, c.ListVaccinesHandler)

	// Booking handlers
	c.ReserveHandler = bookingCommands.NewReserveHandler(
		c.AppointmentRepo,
		c.VaccineRepo,
		c.SlotRepo,
		c.OutboxRepo,
		c.UnitOfWork,
		logger,
		c.Metrics,
	)
	c.ListAppointmentsHandler = bookingQueries.NewListAppointmentsHandler(c.AppointmentRepo)

	// Outbox processor
	processorConfig := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorConfig.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorConfig.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorConfig.MaxRetries = cfg.OutboxMaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger, c.Metrics)

	logger.Info("container initialized", "driver", driver.String(), "session_backend", cfg.SessionBackend)

	return c, nil
}

func (c *Container) initSQLite(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = config.DefaultSQLitePath()
	}
	db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.SQLiteDB = db
	c.AccountRepo = identityPersistence.NewSQLiteAccountRepository(db)
	c.SessionRepo = identityPersistence.NewSQLiteSessionRepository(db)
	c.VaccineRepo = inventoryPersistence.NewSQLiteVaccineRepository(db)
	c.SlotRepo = availabilityPersistence.NewSQLiteSlotRepository(db)
	c.AppointmentRepo = bookingPersistence.NewSQLiteAppointmentRepository(db)
	c.OutboxRepo = outbox.NewSQLiteRepository(db)
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)

	logger.Info("connected to SQLite database", "path", cfg.SQLitePath)
	return nil
}

func (c *Container) initPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL, 0)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.PgPool = pool
	c.AccountRepo = identityPersistence.NewPostgresAccountRepository(pool)
	c.SessionRepo = identityPersistence.NewPostgresSessionRepository(pool)
	c.VaccineRepo = inventoryPersistence.NewPostgresVaccineRepository(pool)
	c.SlotRepo = availabilityPersistence.NewPostgresSlotRepository(pool)
	c.AppointmentRepo = bookingPersistence.NewPostgresAppointmentRepository(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)

	logger.Info("connected to PostgreSQL database")
	return nil
}

func (c *Container) initRedisSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.RedisURL == "" {
		return fmt.Errorf("session backend is redis but REDIS_URL is not set")
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.RedisClient = client
	c.SessionRepo = identityPersistence.NewRedisSessionRepository(client)
	logger.Info("connected to Redis", "session_backend", "redis")
	return nil
}

func (c *Container) closeDatabases() {
	if c.PgPool != nil {
		c.PgPool.Close()
		c.PgPool = nil
	}
	if c.SQLiteDB != nil {
		c.SQLiteDB.Close()
		c.SQLiteDB = nil
	}
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.PgPool != nil {
		c.PgPool.Close()
		c.Logger.Info("PostgreSQL connection closed")
	}

	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		} else {
			c.Logger.Info("SQLite connection closed")
		}
	}
}
