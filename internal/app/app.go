package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskPrioritizer/internal/auth"
	"taskPrioritizer/internal/cache"
	"taskPrioritizer/internal/config"
	"taskPrioritizer/internal/handlers"
	"taskPrioritizer/internal/logger"
	"taskPrioritizer/internal/middleware"
	"taskPrioritizer/internal/repository/task/cached"
	"taskPrioritizer/internal/repository/task/inmemory"
	"taskPrioritizer/internal/repository/task/postgres"
	"taskPrioritizer/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "task-prioritizer"

type App struct {
	config     *config.Config
	server     *http.Server
	router     chi.Router
	repository service.TaskRepository // интерфейс!
	service    handlers.TaskService
	verifier   auth.Verifier
	shutdowns  []func(context.Context) error // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(logger.Options{
		Development: a.config.Logging.Development,
		File:        a.config.Logging.File,
		MaxSizeMB:   a.config.Logging.MaxSizeMB,
		MaxBackups:  a.config.Logging.MaxBackups,
		MaxAgeDays:  a.config.Logging.MaxAgeDays,
	}); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	if err := a.initRepository(ctx); err != nil {
		_ = a.Shutdown(ctx)
		return err
	}

	if err := a.initCache(ctx); err != nil {
		_ = a.Shutdown(ctx)
		return err
	}

	a.service = service.NewTaskService(a.repository)

	a.verifier = auth.New(a.config.Auth)
	if a.config.Auth.DemoMode {
		logger.Warn("App: Включён демо-режим, токены dummy-token-<userId> принимаются без проверки")
	} else if a.config.Auth.GoogleClientID == "" {
		logger.Warn("App: GOOGLE_CLIENT_ID не задан, все запросы будут отклонены")
	}

	a.router = a.buildRouter(handlers.NewTaskHandler(a.service))

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("addr", a.server.Addr),
		zap.String("repository", a.config.Repository.Type),
		zap.Bool("cache", a.config.CacheEnabled()),
		zap.Bool("demo_mode", a.config.Auth.DemoMode))

	return nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func(context.Context) error {
			storage.Close()
			return nil
		})

		if a.config.Database.Migrate {
			if err := storage.Migrate(ctx); err != nil {
				return err
			}
		}
		a.repository = storage

	case config.RepositoryInMemory:
		a.repository = inmemory.NewTaskStorage()

	default:
		return fmt.Errorf("неизвестный тип хранилища %q", a.config.Repository.Type)
	}
	return nil
}

func (a *App) initCache(ctx context.Context) error {
	if !a.config.CacheEnabled() {
		return nil
	}

	client, err := cache.NewClient(ctx, a.config.Redis)
	if err != nil {
		return fmt.Errorf("подключение к Redis: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Info("App: Закрытие соединения с Redis")
		return client.Close()
	})

	a.repository = cached.New(a.repository, cache.New(client, a.config.Redis.Prefix, a.config.Redis.TTL))
	return nil
}

// buildRouter собирает цепочку middleware и маршруты
func (a *App) buildRouter(h *handlers.TaskHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     a.config.CORS.AllowedOrigins,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:     []string{"X-Request-ID"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/health", h.HealthCheck)

	for _, path := range []string{"/post-task", "/get-tasks", "/get-completed-tasks", "/update-task-status"} {
		r.Options(path, h.Options)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(a.verifier))

		r.Post("/post-task", h.PostTask)
		r.Get("/get-tasks", h.GetTasks)
		r.Get("/get-completed-tasks", h.GetCompletedTasks)
		r.Patch("/update-task-status", h.UpdateTaskStatus)
	})

	return r
}

func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) Run() error {
	logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("App: Ошибка сервера", err)
		return fmt.Errorf("запуск сервера: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер и освобождает ресурсы в обратном порядке
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.server != nil {
		logger.Info("App: Остановка HTTP-сервера")
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("остановка сервера: %w", err))
		}
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdowns = nil

	return errors.Join(errs...)
}
