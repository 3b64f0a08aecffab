package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"taskPrioritizer/internal/app"
	"taskPrioritizer/internal/config"
	"taskPrioritizer/internal/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {
	configPath := flag.String("config", "config.yml", "путь к файлу конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "загрузка конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		logger.Error("Main: Не удалось инициализировать приложение", err)
		logger.Sync()
		os.Exit(1)
	}

	go func() {
		if err := application.Run(); err != nil {
			logger.Error("Main: Сервер остановлен с ошибкой", err)
			_ = application.Shutdown(ctx)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.Server.ShutdownTimeout, map[string]gfshutdown.Operation{
		"task-prioritizer": func(ctx context.Context) error {
			return application.Shutdown(ctx)
		},
	})

	os.Exit(<-wait)
}
