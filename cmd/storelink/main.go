package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/storelink/storelink/internal/logging"
	"github.com/storelink/storelink/pkg/config"
	"github.com/storelink/storelink/pkg/invocation"
	"github.com/storelink/storelink/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Override configured log level (debug, info, warn, error)")
	listenAddress := flag.String("listen", "", "Override configured listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *listenAddress != "" {
		cfg.Server.ListenAddress = *listenAddress
	}

	if err := logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("storelink - external storage gateway")
	logging.Info("configuration loaded",
		zap.String("listen_address", cfg.Server.ListenAddress),
		zap.String("accounts_store", cfg.Accounts.Type),
		zap.Int("services", len(cfg.Services)),
		zap.Bool("metrics", cfg.Server.Metrics.Enabled))

	metricsResult := config.InitializeMetrics(cfg)

	reg, err := config.InitializeRegistry(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to initialize registry", zap.Error(err))
	}
	defer func() {
		if err := reg.AccountStore().Close(); err != nil {
			logging.Error("failed to close account store", zap.Error(err))
		}
	}()

	invoker := invocation.NewInvoker(reg, metricsResult.InvocationMetrics)
	srv := server.NewServer(cfg.Server, reg, invoker, metricsResult.HTTPMetrics)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logging.Info("server is running", zap.String("addr", cfg.Server.ListenAddress))

	select {
	case <-sigChan:
		logging.Info("shutdown signal received, stopping server")
		cancel()

		if err := <-serverDone; err != nil && err != context.Canceled {
			logging.Error("server shutdown error", zap.Error(err))
			os.Exit(1)
		}
		logging.Info("server stopped gracefully")

	case err := <-serverDone:
		if err != nil && err != context.Canceled {
			logging.Error("server error", zap.Error(err))
			os.Exit(1)
		}
		logging.Info("server stopped")
	}
}
