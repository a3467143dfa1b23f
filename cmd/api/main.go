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

	"github.com/cmlabs-hris/absensi-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/absensi-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/absensi-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/absensi-backend-go/internal/service/auth"
	checkoutService "github.com/cmlabs-hris/absensi-backend-go/internal/service/checkout"
	"github.com/cmlabs-hris/absensi-backend-go/internal/service/file"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	loc := cfg.Location()

	userRepo := postgresql.NewUserRepository(db)
	checkoutRepo := postgresql.NewCheckoutRepository(db, loc)

	disks, err := newDisks(cfg.Storage)
	if err != nil {
		return err
	}
	fileService, err := file.NewFileService(disks)
	if err != nil {
		return fmt.Errorf("initialize file service: %w", err)
	}

	scheduler := cron.NewScheduler()
	scheduler.AddJob("purge-exports", cfg.Export.PurgeInterval, cron.PurgeExportsJob(fileService, cfg.Export.Retention, time.Now))
	scheduler.Start(ctx)
	defer scheduler.Wait()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authService := serviceAuth.NewAuthService(userRepo, JWTService)
	checkoutSvc := checkoutService.NewCheckoutService(checkoutRepo, fileService, loc, cfg.App.ManualCheckoutURL)

	authHandler := appHTTP.NewAuthHandler(authService)
	checkoutHandler := appHTTP.NewCheckoutHandler(checkoutSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        "absensi",
			Version:        version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.AllowedOrigins(),
			StaticDirs: map[string]string{
				storage.DiskAbsensi: cfg.Storage.AbsensiDir,
				storage.DiskPublic:  cfg.Storage.PublicDir,
			},
		},
		JWTService,
		userRepo,
		authHandler,
		checkoutHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newDisks(cfg config.StorageConfig) (storage.Disks, error) {
	switch cfg.Type {
	case "local":
		absensi, err := storage.NewLocalStorage(cfg.AbsensiDir, cfg.AbsensiURL)
		if err != nil {
			return nil, fmt.Errorf("initialize absensi disk: %w", err)
		}
		public, err := storage.NewLocalStorage(cfg.PublicDir, cfg.PublicURL)
		if err != nil {
			return nil, fmt.Errorf("initialize public disk: %w", err)
		}
		return storage.Disks{
			storage.DiskAbsensi: absensi,
			storage.DiskPublic:  public,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
