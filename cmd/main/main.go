package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/advisor"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/config"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/data_source/sina"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/interfaces"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/logger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/monitor"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/network"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/notification"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/server"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file (env overlays secrets)
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 2. Storage
	var store interfaces.ISnapshotStore

	switch conf.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresSnapshotStore(conf.MConfig, appLogger)
	default:
		// Default to SQLite
		store, err = storage.NewSQLiteSnapshotStore(conf.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer store.Close()

	// 3. Quote source
	var networkManager interfaces.INetworkManager = network.NewRetryingNetworkManager(conf.MConfig, appLogger)
	var source interfaces.IQuoteSource = sina.NewSinaQuoteSource(conf.MConfig, networkManager)

	// 4. Collaborators
	kimi := advisor.NewKimiAdvisor(conf.MConfig)
	if !kimi.Enabled() {
		appLogger.Warning("No advisor API key set, alerts ship without analysis")
	}
	feishu := notification.NewFeishuNotifier(conf.MConfig)
	srv := server.NewDashboardServer(conf.MConfig)

	// 5. Seed symbol metadata from a first fetch
	if quotes, err := source.FetchQuotes(); err != nil {
		appLogger.Warning("Initial quote fetch failed: %v", err)
	} else {
		names := make(map[string]string, len(quotes))
		for code, q := range quotes {
			names[code] = q.Name
		}
		if err := store.InitMeta(names); err != nil {
			appLogger.Warning("Meta init failed: %v", err)
		}
	}

	// 6. Start dashboard server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. Run the monitor until interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon := monitor.NewMonitor(conf.MConfig, store, source, kimi, feishu, srv)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := mon.Run(ctx); err != nil && ctx.Err() == nil {
			appLogger.Error("Monitor stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	<-done
	srv.Stop()
}
