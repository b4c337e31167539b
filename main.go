package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/healthscope/internal/ai"
	"github.com/vcscsvcscs/healthscope/internal/apidoc"
	"github.com/vcscsvcscs/healthscope/internal/audit"
	"github.com/vcscsvcscs/healthscope/internal/config"
	"github.com/vcscsvcscs/healthscope/internal/handler"
	"github.com/vcscsvcscs/healthscope/internal/metrics"
	"github.com/vcscsvcscs/healthscope/internal/middleware"
	"github.com/vcscsvcscs/healthscope/internal/reminder"
	"github.com/vcscsvcscs/healthscope/internal/repository"
	"github.com/vcscsvcscs/healthscope/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "healthscope",
		Short: "HealthScope health tracking API",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("HEALTHSCOPE_CONFIG"), "path to a config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configFile)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), configFile)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Server.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Logging.Format != "" {
		zc.Encoding = cfg.Logging.Format
	}
	return zc.Build()
}

// openStore returns the configured store and, for postgres, its pool
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (repository.Store, *pgxpool.Pool, error) {
	switch cfg.Driver {
	case config.DriverBadger:
		store, err := repository.OpenBadger(cfg.BadgerPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store, err := repository.OpenPostgres(ctx, cfg.DatabaseURL, cfg.MaxConns, cfg.ConnMaxLifetime, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Pool(), nil
	}
}

func runMigrate(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Store.Driver != config.DriverPostgres {
		logger.Info("store driver needs no migration", zap.String("driver", cfg.Store.Driver))
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return repository.Migrate(ctx, cfg.Store.DatabaseURL, logger)
}

func runServer(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, pool, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()
	logger.Info("Store ready", zap.String("driver", cfg.Store.Driver))

	m := metrics.New()

	gen, err := ai.NewGenerator(ctx, cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize AI client: %w", err)
	}
	proxy := ai.NewProxy(gen, m, logger)

	auditLogger := audit.NewLogger(pool, logger)

	// Services
	assistantService := service.NewAssistantService(proxy, logger)
	appointmentService := service.NewAppointmentService(store, auditLogger, logger)
	medicationService := service.NewMedicationService(store, auditLogger, logger)
	profileService := service.NewProfileService(store, auditLogger, logger)
	privacyService := service.NewPrivacyService(store, auditLogger, logger)

	doc, err := apidoc.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load API document: %w", err)
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	auth := middleware.AuthOptions{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
	}
	if !cfg.Server.IsProduction() {
		auth.DevUserHeader = cfg.Auth.DevUserHeader
	}

	router := handler.NewRouter(handler.RouterConfig{
		Assistant:      handler.NewAssistantHandler(assistantService, logger),
		Appointment:    handler.NewAppointmentHandler(appointmentService, logger),
		Medication:     handler.NewMedicationHandler(medicationService, logger),
		Profile:        handler.NewProfileHandler(profileService, logger),
		Health:         handler.NewHealthHandler(store, cfg.Emergency.Contacts, version, logger),
		Privacy:        handler.NewPrivacyHandler(privacyService, logger),
		Auth:           auth,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		APIDoc:         doc,
		Metrics:        m,
		Logger:         logger,
	})

	var dispatcher *reminder.Dispatcher
	if cfg.Reminders.Enabled {
		loc, err := time.LoadLocation(cfg.Reminders.Timezone)
		if err != nil {
			return fmt.Errorf("invalid reminders.timezone: %w", err)
		}

		var pusher reminder.Pusher = reminder.NewLogPusher(logger)
		if cfg.Reminders.WebhookURL != "" {
			pusher = reminder.NewWebhookPusher(cfg.Reminders.WebhookURL, nil, logger)
		}

		dispatcher = reminder.NewDispatcher(store, pusher, loc, m, logger)
		if err := dispatcher.Start(); err != nil {
			return fmt.Errorf("failed to start reminder dispatcher: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			return err
		}
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if dispatcher != nil {
		dispatcher.Stop(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}
