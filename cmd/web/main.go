package main

import (
	"log/slog"
	"os"

	"go-auth-portal/internal/app"
	"go-auth-portal/internal/config"
	"go-auth-portal/internal/logger"
)

func main() {
	cfg, err := config.LoadWeb()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.Environment, cfg.LogLevel))

	web, err := app.NewWeb(cfg)
	if err != nil {
		slog.Error("failed to initialize web server", "error", err)
		os.Exit(1)
	}

	slog.Info("proxying API", "api_url", cfg.APIURL)
	if err := web.Run(); err != nil {
		slog.Error("web server run failed", "error", err)
		os.Exit(1)
	}
}
