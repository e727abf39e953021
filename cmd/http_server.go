package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-management/api"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/employee"
	"github.com/frahmantamala/hr-management/internal/feature"
	"github.com/frahmantamala/hr-management/internal/feedback"
	"github.com/frahmantamala/hr-management/internal/leave"
	"github.com/frahmantamala/hr-management/internal/navigation"
	"github.com/frahmantamala/hr-management/internal/notification"
	"github.com/frahmantamala/hr-management/internal/permission"
	"github.com/frahmantamala/hr-management/internal/reconcile"
	"github.com/frahmantamala/hr-management/internal/succession"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/frahmantamala/hr-management/internal/transport/rest"
	"github.com/frahmantamala/hr-management/internal/workpermit"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, logger := mustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := api.Load(ctx); err != nil {
		logger.Error("invalid OpenAPI document", "error", err)
		os.Exit(1)
	}

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	app.watchRegistry(ctx)

	var hub *notification.Hub
	if cfg.Realtime.Enabled {
		hub = notification.NewHub(cfg.Server.Origins(), cfg.Realtime.PingInterval, logger)
		hub.Attach(app.bus)
		defer hub.Close()
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, app.handlers(hub), rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPath:    cfg.Observability.Metrics.Path,
		Realtime:       hub != nil,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", addr, "registry_source", app.registry.Get().Source())
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received signal, shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Server stopped")
}

func (a *application) handlers(hub *notification.Hub) rest.Handlers {
	base := transport.NewBaseHandler(a.logger)

	return rest.Handlers{
		Health: rest.NewHealthHandler(a.db, map[string]rest.Checker{
			"registry": a.registryCheck,
		}),
		Auth:         auth.NewHandler(a.auth, auth.NewLoginThrottle(a.cfg.Security.LoginAttemptsPerMin)),
		Owner:        auth.EmployeeOwner(a.db),
		Navigation:   navigation.NewHandler(base, a.resolver),
		Employee:     employee.NewHandler(base, a.employees),
		WorkPermit:   workpermit.NewHandler(base, a.workPermits),
		Leave:        leave.NewHandler(base, a.leave),
		Succession:   succession.NewHandler(base, a.succession),
		Feedback:     feedback.NewHandler(base, a.feedback),
		Notification: notification.NewHandler(base, a.notification, hub),
		Permission:   permission.NewHandler(base, a.permissions),
		Feature:      feature.NewHandler(base, a.features),
		Reconcile:    reconcile.NewHandler(base, a.reconcile, a.registry),
	}
}

func (a *application) registryCheck(context.Context) rest.CheckEntry {
	reg := a.registry.Get()
	entry := rest.CheckEntry{
		Status:    rest.HealthHealthy,
		CheckedAt: time.Now(),
		Details: map[string]any{
			"source":   reg.Source(),
			"features": reg.Count(),
		},
	}
	if reg.Count() == 0 {
		entry.Status = rest.HealthUnhealthy
		entry.Message = "feature registry is empty"
	}
	return entry
}
