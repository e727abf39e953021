package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	authPostgres "github.com/frahmantamala/hr-management/internal/auth/postgres"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/employee"
	employeePostgres "github.com/frahmantamala/hr-management/internal/employee/postgres"
	"github.com/frahmantamala/hr-management/internal/feature"
	featurePostgres "github.com/frahmantamala/hr-management/internal/feature/postgres"
	"github.com/frahmantamala/hr-management/internal/feedback"
	feedbackPostgres "github.com/frahmantamala/hr-management/internal/feedback/postgres"
	"github.com/frahmantamala/hr-management/internal/leave"
	leavePostgres "github.com/frahmantamala/hr-management/internal/leave/postgres"
	"github.com/frahmantamala/hr-management/internal/navigation"
	"github.com/frahmantamala/hr-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/hr-management/internal/notification/postgres"
	"github.com/frahmantamala/hr-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/hr-management/internal/permission/postgres"
	"github.com/frahmantamala/hr-management/internal/reconcile"
	reconcilePostgres "github.com/frahmantamala/hr-management/internal/reconcile/postgres"
	"github.com/frahmantamala/hr-management/internal/registry"
	"github.com/frahmantamala/hr-management/internal/succession"
	successionPostgres "github.com/frahmantamala/hr-management/internal/succession/postgres"
	"github.com/frahmantamala/hr-management/internal/workpermit"
	workpermitPostgres "github.com/frahmantamala/hr-management/internal/workpermit/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// application holds the services shared by the server and the workers.
type application struct {
	cfg    *internal.Config
	logger *slog.Logger

	db     *sqlx.DB
	gormDB *gorm.DB

	bus      *events.EventBus
	kafka    *events.KafkaForwarder
	registry *registry.Holder
	mailer   notification.Mailer

	auth         *auth.Service
	permissions  *permission.Service
	features     *feature.Service
	employees    *employee.Service
	workPermits  *workpermit.Service
	leave        *leave.Service
	succession   *succession.Service
	feedback     *feedback.Service
	notification *notification.Service
	reconcile    *reconcile.Service
	resolver     *navigation.Resolver
}

func newApplication(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (*application, error) {
	defaults, err := succession.DefaultTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to load handbook defaults: %w", err)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, cfg.Env)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	reg, err := registry.Load(ctx, cfg.Registry.Path)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load feature registry: %w", err)
	}

	app := &application{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		gormDB:   gormDB,
		bus:      events.NewEventBus(logger.With("component", "event_bus")),
		registry: registry.NewHolder(reg),
		mailer:   notification.NewMailer(cfg.Mail, logger),
	}

	if cfg.Events.KafkaEnabled() {
		app.kafka = events.NewKafkaForwarder(logger, cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
		app.kafka.Attach(app.bus)
	}

	app.registry.OnChange(func(r *registry.Registry) {
		evt := events.NewChangeEvent(events.EventTypeRegistryReloaded, "registry", 0, events.ActionUpdated)
		if err := app.bus.Publish(context.Background(), evt); err != nil {
			logger.Warn("failed to publish registry reload", "error", err)
		}
	})

	app.permissions = permission.NewService(permissionPostgres.NewPermissionRepository(gormDB), app.registry, app.bus, logger)
	app.features = feature.NewService(featurePostgres.NewFeatureRepository(gormDB), app.bus, logger)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	app.auth = auth.NewService(authPostgres.NewRepository(gormDB), app.permissions, tokens, cfg.Security.BCryptCost)

	app.employees = employee.NewService(
		employeePostgres.NewEmployeeRepository(gormDB),
		employeePostgres.NewDirectorySearch(db),
		app.permissions,
		app.bus,
		logger,
	)
	app.workPermits = workpermit.NewService(workpermitPostgres.NewWorkPermitRepository(gormDB), app.employees, cfg.Reminders.Window, app.bus, logger)
	app.leave = leave.NewService(leavePostgres.NewLeaveRepository(gormDB), app.employees, app.bus, logger)
	app.succession = succession.NewService(successionPostgres.NewSuccessionRepository(gormDB), app.registry, defaults, app.bus, logger)
	app.feedback = feedback.NewService(feedbackPostgres.NewFeedbackRepository(gormDB), app.employees, app.bus, logger)
	app.notification = notification.NewService(notificationPostgres.NewNotificationRepository(gormDB), app.registry, app.bus, logger)
	app.reconcile = reconcile.NewService(reconcilePostgres.NewSnapshotRepository(gormDB), app.features, app.registry, cfg.Registry.StaleAfter, logger)
	app.resolver = navigation.NewResolver(app.features, app.registry)

	return app, nil
}

// watchRegistry starts hot reload of the external registry file when enabled.
func (a *application) watchRegistry(ctx context.Context) {
	if !a.cfg.Registry.Watch {
		return
	}
	w := registry.NewWatcher(a.cfg.Registry.Path, a.registry, a.cfg.Registry.DebounceDelay, a.logger)
	if err := w.Start(ctx); err != nil {
		a.logger.Error("registry watcher failed to start", "error", err)
	}
}

func (a *application) Close() {
	a.bus.Wait()
	if a.kafka != nil {
		a.kafka.Close()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}
}

// initDB opens the pgx-backed sqlx pool shared with gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initGorm(db *sqlx.DB, env string) (*gorm.DB, error) {
	level := gormLogger.Warn
	if env == "development" {
		level = gormLogger.Info
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(level),
	})
}
