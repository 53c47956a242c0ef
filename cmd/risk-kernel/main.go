package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Tarra732/fusionfx-forever/internal/alerts"
	"github.com/Tarra732/fusionfx-forever/internal/broker"
	bybitfeed "github.com/Tarra732/fusionfx-forever/internal/broker/bybit"
	"github.com/Tarra732/fusionfx-forever/internal/config"
	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/monitoring"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
	"github.com/Tarra732/fusionfx-forever/internal/risk"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file (e.g., risk_kernel.json)")
		envFile    = flag.String("env", ".env", "Environment file path (default: .env)")
		vixSeed    = flag.Int64("vix-seed", 0, "Seed for the simulated VIX feed (0 = time-based)")
	)
	flag.Parse()

	// Load environment variables from .env file
	if err := loadEnvFile(*envFile); err != nil {
		log.Printf("Warning: Could not load .env file (%v), checking environment variables...", err)
	}

	fmt.Println("🚀 Risk Kernel Starting...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Portfolio history backend
	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open portfolio store: %v", err)
	}
	defer store.Close()

	tracker := portfolio.NewTracker(store, appLog)
	tracker.SetWindowDays(cfg.Kernel.WindowDays)

	seed := *vixSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Collaborators
	book := broker.NewMemoryPositionBook()
	collab := risk.Collaborators{
		Balance:   buildBalanceProvider(cfg, tracker),
		Vix:       broker.NewSimVixFeed(seed),
		Positions: book,
		Metrics:   tracker,
		Execution: broker.NewLoggingExecution(book, appLog),
	}

	health := monitoring.NewHealthChecker()

	kernel, err := risk.NewKernel(risk.Config{
		Limits:       cfg.Limits(),
		VixCurve:     cfg.Risk.VixCurve,
		Interval:     cfg.Interval(),
		FetchTimeout: cfg.FetchTimeout(),
	}, collab, buildNotifier(cfg), health, appLog)
	if err != nil {
		log.Fatalf("Failed to create risk kernel: %v", err)
	}

	startMonitoringServers(cfg, health)

	if err := kernel.Start(ctx); err != nil {
		log.Fatalf("Failed to start risk kernel: %v", err)
	}

	printStartupInfo(cfg)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\n🛑 Shutdown signal received...")

	kernel.Stop()
	fmt.Println("✅ Risk kernel stopped successfully")
}

// printStartupInfo prints the effective configuration
func printStartupInfo(cfg *config.Config) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("RISK KERNEL")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🔧 Environment", cfg.Environment},
		{"⏰ Interval", cfg.Interval().String()},
		{"💾 Storage", cfg.Storage.Backend},
		{"📉 Base Risk", fmt.Sprintf("%.1f%%", cfg.Risk.BaseRisk*100)},
		{"🛑 Max Drawdown", fmt.Sprintf("%.0f%%", cfg.Risk.MaxDrawdown*100)},
		{"📊 Metrics Port", fmt.Sprintf("%d", cfg.Monitoring.PrometheusPort)},
		{"❤️ Health Port", fmt.Sprintf("%d", cfg.Monitoring.HealthPort)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 16, WidthMax: 16, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 30, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// loadEnvFile loads environment variables from a file
func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err == nil {
		return godotenv.Load(envFile)
	}
	return fmt.Errorf("env file %s not found", envFile)
}

// buildStore selects the configured portfolio history backend.
func buildStore(ctx context.Context, cfg *config.Config) (portfolio.Store, error) {
	switch cfg.Storage.Backend {
	case "redis":
		return portfolio.NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
	default:
		return portfolio.NewFileStore(cfg.Storage.DataDir)
	}
}

// buildBalanceProvider uses the live Bybit equity feed when credentials
// are configured, otherwise the tracker's own equity curve.
func buildBalanceProvider(cfg *config.Config, tracker *portfolio.Tracker) broker.BalanceProvider {
	if cfg.Exchange.APIKey != "" && cfg.Exchange.APISecret != "" {
		feed := bybitfeed.NewEquityFeed(bybitfeed.Config{
			APIKey:    cfg.Exchange.APIKey,
			APISecret: cfg.Exchange.APISecret,
			Testnet:   cfg.Exchange.Testnet,
			Demo:      cfg.Exchange.Demo,
		})
		fmt.Printf("💰 Balance feed: Bybit (%s)\n", feed.Environment())
		return feed
	}
	fmt.Println("💰 Balance feed: portfolio tracker (no exchange credentials)")
	return broker.NewTrackerBalance(tracker)
}

// buildNotifier assembles the alert fan-out from the configured channels.
func buildNotifier(cfg *config.Config) alerts.Notifier {
	n := cfg.Notifications
	if n == nil || !n.Enabled {
		return alerts.Nop{}
	}

	var channels []alerts.Notifier
	if n.TelegramToken != "" && n.TelegramChat != "" {
		channels = append(channels, alerts.NewTelegramNotifier(n.TelegramToken, n.TelegramChat))
	}
	if n.TwilioSID != "" && n.TwilioToken != "" {
		channels = append(channels, alerts.NewTwilioNotifier(n.TwilioSID, n.TwilioToken, n.TwilioFrom, n.TwilioTo))
	}

	switch len(channels) {
	case 0:
		return alerts.Nop{}
	case 1:
		return channels[0]
	default:
		return alerts.NewMultiNotifier(channels[0], channels[1:]...)
	}
}

// startMonitoringServers exposes the Prometheus and health endpoints.
func startMonitoringServers(cfg *config.Config, health *monitoring.HealthChecker) {
	metricsServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
		Handler:      monitoring.MetricsHandler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/health", health)
	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Monitoring.HealthPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Health server error: %v", err)
		}
	}()
}
