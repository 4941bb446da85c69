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

	"github.com/Benjaminax/camous-taskboard-system/config"
	"github.com/Benjaminax/camous-taskboard-system/db"
	"github.com/Benjaminax/camous-taskboard-system/events"
	"github.com/Benjaminax/camous-taskboard-system/handlers"
	appmiddleware "github.com/Benjaminax/camous-taskboard-system/middleware"
	"github.com/Benjaminax/camous-taskboard-system/repositories"
	api "github.com/Benjaminax/camous-taskboard-system/routes"
	"github.com/Benjaminax/camous-taskboard-system/services"
	"github.com/Benjaminax/camous-taskboard-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Объектное хранилище (Cloudflare R2) опционально: без него аватары
	// и логотипы просто недоступны.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("file storage not configured, uploads disabled")
	}

	// WebSocket-хаб для live-обновлений задач
	hub := events.NewHub(logger)
	go hub.Run()

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	membershipRepo := repositories.NewPostgresMembershipRepository(dbConn)
	joinRequestRepo := repositories.NewPostgresJoinRequestRepository(dbConn)
	taskRepo := repositories.NewPostgresTaskRepository(dbConn)

	// Инициализация сервисов
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo, cfg.AdminUserIDs, uploader)
	userService := services.NewUserService(userRepo, uploader, logger)
	teamService := services.NewTeamService(
		dbConn,
		teamRepo,
		membershipRepo,
		joinRequestRepo,
		taskRepo,
		userRepo,
		authService,
		uploader,
		emailService,
		logger,
	)
	taskService := services.NewTaskService(taskRepo, teamRepo, membershipRepo, hub)
	dashboardService := services.NewDashboardService(taskRepo, membershipRepo, joinRequestRepo, logger)
	adminService := services.NewAdminService(dbConn, userRepo, teamRepo, membershipRepo, joinRequestRepo, taskRepo, uploader)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	authenticator := appmiddleware.NewAuthenticator(cfg.JWTSecretKey, authService)
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	teamHandler := handlers.NewTeamHandler(teamService)
	taskHandler := handlers.NewTaskHandler(taskService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(adminService)
	eventsHandler := handlers.NewEventsHandler(hub, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		teamHandler,
		taskHandler,
		dashboardHandler,
		userHandler,
		adminHandler,
		eventsHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
