package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehub/internal/config"
	"warehub/internal/hardware"
	"warehub/internal/inventory"
	"warehub/internal/logging"
	"warehub/internal/microservices/http-api/handler"
	"warehub/internal/microservices/http-api/router"
	"warehub/internal/microservices/tcp"

	"github.com/gin-gonic/gin"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup structured logging
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Hardware: LEDs always go dark on the way out
	led := hardware.NewConsoleLED(os.Stdout)
	defer led.Release()

	store := inventory.NewStore(cfg.Zones, cfg.LowStockThreshold, led)

	// Optional Redis snapshot mirror
	mirrorCtx, cancelMirror := context.WithCancel(context.Background())
	mirrorDone := make(chan struct{})
	var mirror *inventory.RedisMirror
	if cfg.RedisURL != "" {
		mirror, err = inventory.NewRedisMirror(cfg.RedisAddr(), cfg.RedisPassword, 0, cfg.SnapshotTTL)
		if err != nil {
			logger.Warn("redis_mirror_disabled", "error", err.Error())
		} else {
			store.SetMirror(mirror)
		}
	}
	go func() {
		defer close(mirrorDone)
		mirror.Run(mirrorCtx)
	}()

	logger.Info("starting_hub",
		"tcp_addr", cfg.ListenAddr(),
		"status_addr", cfg.StatusAddr(),
		"zones", cfg.Zones,
		"redis_mirror", mirror != nil,
	)

	server := tcp.NewServer(cfg.ListenAddr(), store, tcp.Options{
		ReadBufferSize:          cfg.ReadBufferSize,
		IdleTimeout:             cfg.IdleTimeout,
		RateLimit:               cfg.RateLimit,
		RateBurst:               cfg.RateBurst,
		EvictWorkerOnDisconnect: cfg.EvictWorkerOnDisconnect,
	})
	if err := server.Listen(); err != nil {
		logger.Error("bind_failed", "error", err.Error())
		led.Release()
		os.Exit(1)
	}

	statusServer := router.NewServer(cfg.StatusAddr(), router.New(handler.NewStatusHandler(store, server)))

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(); err != nil {
			errChan <- err
		}
	}()

	// The status API is optional: the hub keeps routing without it
	if _, err := router.Start(statusServer); err != nil {
		logger.Warn("status_server_disabled", "addr", statusServer.Addr, "error", err.Error())
	}

	// Wait for shutdown signal or error
	exitCode := 0
	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		exitCode = 1
	}

	server.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := statusServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("status_server_shutdown_failed", "error", err.Error())
	}

	cancelMirror()
	<-mirrorDone
	if err := mirror.Close(); err != nil {
		logger.Warn("redis_mirror_close_failed", "error", err.Error())
	}

	logger.Info("server_stopped_gracefully")
	if exitCode != 0 {
		led.Release()
		os.Exit(exitCode)
	}
}
