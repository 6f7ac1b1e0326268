package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/config"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/dataset"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/logging"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	port := flag.Int("port", 0, "override listen port")
	dataPath := flag.String("data", "", "override the merged dataset path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Dashboard.Port = *port
	}
	if *dataPath != "" {
		cfg.Dashboard.DataPath = *dataPath
	}

	logger, closer, err := logging.New(os.Stderr, logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	cache := dataset.NewCache(cfg.Dashboard.DataPath)
	if rows, err := cache.Rows(); err != nil {
		logger.Warn("dataset unavailable, serving placeholders", "path", cfg.Dashboard.DataPath, "error", err)
	} else {
		logger.Info("dataset loaded", "path", cfg.Dashboard.DataPath, "rows", len(rows))
	}

	handler := server.SetupMux(cache, server.Options{
		APIKey:    cfg.Dashboard.APIKey,
		RateLimit: cfg.Dashboard.RateLimit,
		Timeout:   cfg.Dashboard.RequestTimeout,
	})

	if cfg.Dashboard.APIKey != "" {
		logger.Info("auth: API key required (X-API-Key header)")
	} else {
		logger.Info("auth: disabled (no api_key configured)")
	}

	addr := fmt.Sprintf(":%d", cfg.Dashboard.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("dashboard api listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
