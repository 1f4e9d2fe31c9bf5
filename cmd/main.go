package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/NicoBaldowine/pickleplay/config"
	"github.com/NicoBaldowine/pickleplay/db"
	"github.com/NicoBaldowine/pickleplay/db/migrations"
	"github.com/NicoBaldowine/pickleplay/handlers"
	"github.com/NicoBaldowine/pickleplay/prefs"
	"github.com/NicoBaldowine/pickleplay/realtime"
	"github.com/NicoBaldowine/pickleplay/repositories"
	api "github.com/NicoBaldowine/pickleplay/routes"
	"github.com/NicoBaldowine/pickleplay/services"
	"github.com/NicoBaldowine/pickleplay/storage"
	"github.com/NicoBaldowine/pickleplay/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("timezone", cfg.Timezone))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := migrations.Run(dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	prefsStore, err := prefs.Open(ctx, cfg.PrefsDBPath)
	if err != nil {
		logger.Error("failed to open preferences store", slog.String("path", cfg.PrefsDBPath), slog.Any("error", err))
		os.Exit(1)
	}
	defer prefsStore.Close()

	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize avatar storage", slog.Any("error", err))
		os.Exit(1)
	}

	hub := realtime.NewHub(logger.With("component", "realtime"))
	go hub.Run(ctx)
	logger.Info("WebSocket hub started")

	clk := clock.New()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	partnerRepo := repositories.NewPostgresPartnerRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.TokenTTL, clk)
	userService := services.NewUserService(userRepo, uploader, cfg.UploadTimeout, logger)
	courtService := services.NewCourtService(courtRepo)
	partnerService := services.NewPartnerService(partnerRepo)
	notificationService := services.NewNotificationService(prefsStore)
	gameService := services.NewGameService(
		gameRepo,
		courtRepo,
		partnerRepo,
		userRepo,
		uploader,
		hub,
		clk,
		cfg.Location(),
		logger,
	)
	registry := wizard.NewRegistry(gameService, partnerService, clk, logger.With("component", "wizard"))
	logger.Info("services initialized")

	go runMaintenance(ctx, cfg, gameService, registry, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		User:         handlers.NewUserHandler(userService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Court:        handlers.NewCourtHandler(courtService, clk, cfg.LocationMaxAge),
		Game:         handlers.NewGameHandler(gameService, clk, cfg.LocationMaxAge),
		Partner:      handlers.NewPartnerHandler(partnerService),
		Wizard:       handlers.NewWizardHandler(registry),
		WebSocket:    handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins, logger),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": dbConn,
			"prefs":    handlers.PingerFunc(prefsStore.Ping),
		}, logger),
		TokenParser:    authService,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// newUploader builds the avatar store: the primary bucket, with the
// fallback bucket behind it when that one is configured too. It returns nil
// when no bucket is configured; avatar uploads then fail with a hint.
func newUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.FileUploader, error) {
	if !cfg.Storage.Enabled() {
		logger.Warn("avatar storage not configured, uploads are disabled")
		return nil, nil
	}
	primary, err := storage.NewS3Uploader(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("primary storage: %w", err)
	}
	if !cfg.FallbackStorage.Enabled() {
		logger.Info("avatar storage initialized", slog.String("bucket", cfg.Storage.Bucket))
		return primary, nil
	}

	secondary, err := storage.NewS3Uploader(ctx, cfg.FallbackStorage)
	if err != nil {
		return nil, fmt.Errorf("fallback storage: %w", err)
	}
	logger.Info("avatar storage initialized",
		slog.String("bucket", cfg.Storage.Bucket),
		slog.String("fallback_bucket", cfg.FallbackStorage.Bucket))
	return storage.NewFallbackUploader(primary, secondary, logger), nil
}

// runMaintenance expires past games and drops idle wizard sessions on every
// tick until ctx is cancelled.
func runMaintenance(ctx context.Context, cfg *config.Config, games services.GameService, registry *wizard.Registry, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()
	logger.Info("maintenance scheduler started", slog.Duration("interval", cfg.CleanupInterval))

	run := func() {
		if _, err := games.CleanupExpiredGames(ctx); err != nil {
			logger.Error("scheduler: cleaning up expired games failed", slog.Any("error", err))
		}
		if n := registry.Sweep(cfg.WizardIdleTTL); n > 0 {
			logger.Info("scheduler: closed idle wizard sessions", slog.Int("count", n))
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
