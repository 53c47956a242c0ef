package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Tarra732/fusionfx-forever/internal/alerts"
	"github.com/Tarra732/fusionfx-forever/internal/broker"
	"github.com/Tarra732/fusionfx-forever/internal/config"
	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
	"github.com/Tarra732/fusionfx-forever/internal/risk"
	"github.com/Tarra732/fusionfx-forever/pkg/reporting"
)

// risk-report renders a one-shot risk assessment from the stored
// portfolio history, to the console and optionally to an Excel workbook.
func main() {
	var (
		configFile = flag.String("config", "", "Configuration file (e.g., risk_kernel.json)")
		envFile    = flag.String("env", ".env", "Environment file path (default: .env)")
		xlsxPath   = flag.String("xlsx", "", "Also export the report to this .xlsx file")
		vix        = flag.Float64("vix", risk.DefaultVix, "Volatility index reading to assess against")
	)
	flag.Parse()

	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			log.Printf("Warning: Could not load .env file: %v", err)
		}
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.NewNop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open portfolio store: %v", err)
	}
	defer store.Close()

	tracker := portfolio.NewTracker(store, appLog)
	tracker.SetWindowDays(cfg.Kernel.WindowDays)

	kernel, err := risk.NewKernel(risk.Config{
		Limits:       cfg.Limits(),
		VixCurve:     cfg.Risk.VixCurve,
		Interval:     cfg.Interval(),
		FetchTimeout: cfg.FetchTimeout(),
	}, risk.Collaborators{
		Vix:     fixedVix(*vix),
		Metrics: tracker,
	}, alerts.Nop{}, nil, appLog)
	if err != nil {
		log.Fatalf("Failed to create risk kernel: %v", err)
	}

	kernel.EvaluateCycle(ctx)
	snap := kernel.Snapshot(ctx)

	cutoff := time.Now().AddDate(0, 0, -cfg.Kernel.WindowDays)
	trades, err := store.TradesSince(ctx, cutoff)
	if err != nil {
		log.Printf("Warning: Could not read trade history: %v", err)
	}

	reporting.WriteSnapshot(os.Stdout, snap)
	if len(trades) > 0 {
		reporting.WriteTrades(os.Stdout, trades)
	}

	if *xlsxPath != "" {
		if err := reporting.WriteXLSX(snap, trades, *xlsxPath); err != nil {
			log.Fatalf("Failed to write %s: %v", *xlsxPath, err)
		}
		fmt.Printf("📄 Report exported to %s\n", *xlsxPath)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (portfolio.Store, error) {
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

// fixedVix satisfies the VIX collaborator with the flag value.
type fixedVix float64

func (v fixedVix) GetVix(context.Context) (float64, error) {
	return float64(v), nil
}

var _ broker.VixProvider = fixedVix(0)
