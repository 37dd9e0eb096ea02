package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"openmart/docs"
	"openmart/internal/auth"
	"openmart/internal/cache"
	"openmart/internal/config"
	"openmart/internal/db"
	"openmart/internal/handler"
	"openmart/internal/logging"
	"openmart/internal/repository"
	"openmart/internal/router"
	"openmart/internal/service"
	"openmart/internal/storage"
)

// @title OpenMart API
// @version 1.0
// @description Online marketplace API: accounts, listings, chat, reviews, reports and dashboards.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		fatal("database init", err)
	}

	if cfg.ResetDB {
		slog.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			fatal("reset database", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		fatal("migrate", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		slog.Warn("redis unavailable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
	}
	defer cacheClient.Close()

	store, err := newImageStore(cfg)
	if err != nil {
		fatal("image store", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	listingRepo := repository.NewListingRepository(gormDB)
	chatRepo := repository.NewChatRepository(gormDB)
	reviewRepo := repository.NewReviewRepository(gormDB)
	reportRepo := repository.NewReportRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cfg.SiteURL)
	categoryService := service.NewCategoryService(categoryRepo, cacheClient)
	userService := service.NewUserService(userRepo, listingRepo, reviewRepo, chatRepo, store)
	listingService := service.NewListingService(listingRepo, categoryRepo, chatRepo, reviewRepo, categoryService, store)
	chatService := service.NewChatService(chatRepo, listingRepo, userRepo, store)
	reviewService := service.NewReviewService(reviewRepo, userRepo, listingRepo)
	reportService := service.NewReportService(reportRepo, userRepo, listingRepo, store)
	dashboardService := service.NewDashboardService(userRepo, listingRepo, categoryRepo, chatRepo, reviewRepo, reportRepo, chatService)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, userRepo, tokenStore, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Listing:   handler.NewListingHandler(listingService, categoryService),
		Chat:      handler.NewChatHandler(chatService),
		Review:    handler.NewReviewHandler(reviewService),
		Report:    handler.NewReportHandler(reportService),
		Dashboard: handler.NewDashboardHandler(dashboardService, listingService),
		Seed:      handler.NewSeedHandler(categoryService),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server listening", "addr", addr, "swagger", cfg.SiteURL+"/swagger/index.html")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server start", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func newImageStore(cfg *config.Config) (storage.ImageStore, error) {
	if cfg.UseCloudinary() {
		slog.Info("storing images on cloudinary", "cloud", cfg.CloudinaryCloudName)
		return storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	}
	slog.Info("storing images on local disk", "dir", cfg.MediaDir)
	return storage.NewLocalStore(cfg.MediaDir, cfg.MediaURL), nil
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
