package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "signage/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"signage/internal/auth"
	"signage/internal/cache"
	"signage/internal/config"
	"signage/internal/db"
	"signage/internal/display"
	"signage/internal/handler"
	"signage/internal/job"
	"signage/internal/logger"
	"signage/internal/repository"
	"signage/internal/router"
	"signage/internal/service"
	"signage/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Signage API
// @version 1.0
// @description Multi-tenant digital signage content manager: slides, fixed content, attachments, users and the display sync contract.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel))

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("database init: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()

	if cfg.ResetDB {
		logger.Warning("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			logger.Fatalf("reset database: %v", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalf("%v", err)
	}

	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cacheClient.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			logger.Warningf("redis unavailable at %s, continuing without it: %v", cfg.RedisAddr, err)
		}
		cancel()
	}

	files, err := storage.NewLocal(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		logger.Fatalf("upload storage: %v", err)
	}
	hub := display.NewHub()
	notifier := display.NewNotifier(cacheClient, hub)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	slideRepo := repository.NewSlideRepository(gormDB)
	fixedRepo := repository.NewFixedContentRepository(gormDB)
	attachmentRepo := repository.NewAttachmentRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userRepo, userService, jwtService, tokenStore)
	slideService := service.NewSlideService(slideRepo, files, notifier)
	fixedService := service.NewFixedContentService(fixedRepo, notifier)
	attachmentService := service.NewAttachmentService(attachmentRepo, slideRepo, files, notifier, cfg.MaxUploadBytes, cfg.MaxImageWidth)
	seedService := service.NewSeedService(userRepo, slideRepo, fixedRepo)

	if cfg.SeedDefaults {
		seedIfEmpty(seedService, userRepo, cfg.DefaultTenant)
	}

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, jwtService, authService, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Slide:        handler.NewSlideHandler(slideService, cfg.DefaultTenant),
		FixedContent: handler.NewFixedContentHandler(fixedService, cfg.DefaultTenant),
		Attachment:   handler.NewAttachmentHandler(attachmentService, cfg.DefaultTenant),
		Display:      handler.NewDisplayHandler(slideService, fixedService, notifier, hub, cfg.DefaultTenant),
		Health:       handler.NewHealthHandler(sqlDB.PingContext),
		Seed:         handler.NewSeedHandler(seedService, notifier),
	})

	scheduler := job.NewScheduler()
	sweeper := job.NewArchiveExpiredSlidesJob(slideRepo, notifier, cfg.SweepTimeout)
	if err := scheduler.Every(cfg.SweepInterval, sweeper, true); err != nil {
		logger.Fatalf("schedule expiration sweep: %v", err)
	}

	logger.Infof("Swagger documentation available at: %s", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.ServerPort
		logger.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return notifier.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server: %v", err)
	}
}

func seedIfEmpty(seeds service.SeedService, users repository.UserRepository, tenant string) {
	ctx := context.Background()
	count, err := users.Count(ctx)
	if err != nil {
		logger.Fatalf("count users: %v", err)
	}
	if count > 0 {
		return
	}
	result, err := seeds.SeedDefaults(ctx, tenant)
	if err != nil {
		logger.Fatalf("seed defaults: %v", err)
	}
	logger.Infof("seeded tenant %q: %d users, %d slides, %d fixed content blocks",
		tenant, result.Users, result.Slides, result.FixedContent)
}

// swaggerURL builds the docs URL. SwaggerHost may already carry a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
