package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parcel-notifier/internal/config"
	"parcel-notifier/internal/handler"
	"parcel-notifier/internal/logger"
	"parcel-notifier/internal/middleware"
	"parcel-notifier/internal/repository"
	"parcel-notifier/internal/service"
	"parcel-notifier/pkg/database"
	"parcel-notifier/pkg/migration"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env-file", ".env", "путь к .env файлу (необязательный)")
	flag.Parse()

	// --- Загрузка конфигурации ---
	// Отсутствие учетных данных Firebase - фатальная ошибка
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// --- Инициализация логгера ---
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: "json",
		Service:  "parcel-notifier",
	})
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zapLogger.Info("Логгер инициализирован", zap.String("logLevel", cfg.Log.Level))

	// --- Клиент FCM (один раз на процесс) ---
	// Ошибка не фатальна: сервис стартует в деградированном режиме, /health отвечает 503
	fcmSender, errSender := service.NewFCMSender(context.Background(), cfg.FCM, zapLogger)
	if errSender != nil {
		zapLogger.Error("Ошибка инициализации FCM Sender, сервис работает в деградированном режиме", zap.Error(errSender))
	}
	messagingState := service.NewMessagingState(fcmSender, errSender)

	// --- Хранилище профилей ---
	profiles, pool, err := newProfileFactory(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Не удалось инициализировать хранилище профилей", zap.Error(err))
	}
	if pool != nil {
		defer pool.Close()
	}

	dispatcher := service.NewDispatcher(profiles, messagingState, cfg.RequestTimeout, zapLogger)
	parcelHandler := handler.NewParcelHandler(dispatcher, messagingState, zapLogger)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.GinZapLogger(zapLogger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	parcelHandler.RegisterRoutes(router, middleware.WebhookAuth(cfg.WebhookJWTSecret, zapLogger))

	// Запас к WriteTimeout: два сетевых вызова по RequestTimeout
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Получен сигнал завершения, начинаем остановку...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Сервис уведомлений о посылках остановлен.")
}

// newProfileFactory выбирает бэкенд хранилища профилей. Пул возвращается для закрытия при остановке.
func newProfileFactory(cfg *config.Config, zapLogger *zap.Logger) (repository.ProfileRepositoryFactory, *pgxpool.Pool, error) {
	switch cfg.ProfileStore.Driver {
	case config.ProfileStorePostgres:
		pool, err := database.NewPool(context.Background(), cfg.ProfileStore.DatabaseURL, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.ProfileStore.AutoMigrate {
			if err := migration.NewMigrator(migration.DefaultConfig(), pool, zapLogger).Up(); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		repo := repository.NewPgProfileRepository(pool, cfg.ProfileStore.Table, zapLogger)
		return repository.NewStaticFactory(repo), pool, nil
	default:
		httpClient := &http.Client{Timeout: cfg.RequestTimeout}
		return repository.NewPostgRESTFactory(cfg.Supabase, cfg.ProfileStore.Table, httpClient, zapLogger), nil, nil
	}
}
