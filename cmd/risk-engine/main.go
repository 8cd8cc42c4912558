package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/risk-engine/internal/config"
	"github.com/ducminhle1904/risk-engine/internal/logger"
	"github.com/ducminhle1904/risk-engine/internal/monitoring"
	"github.com/ducminhle1904/risk-engine/internal/notifications"
	"github.com/ducminhle1904/risk-engine/internal/risk"
	"github.com/ducminhle1904/risk-engine/internal/storage"
	"github.com/ducminhle1904/risk-engine/pkg/reporting"
)

// staticPortfolioProvider serves a fixed portfolio value from the
// environment. A real deployment plugs an exchange-backed provider into the
// same interface.
type staticPortfolioProvider struct {
	value float64
}

func (p *staticPortfolioProvider) GetPortfolioValue(ctx context.Context) (float64, error) {
	return p.value, nil
}

func main() {
	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting risk engine in %s mode", cfg.Environment)

	engineLog, err := logger.NewLogger(cfg.EngineName)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer engineLog.Close()
	log.Printf("Engine log: %s", engineLog.GetLogPath())

	portfolioValue := 10000.0
	if val := os.Getenv("PORTFOLIO_VALUE"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			portfolioValue = parsed
		}
	}

	engine, err := risk.NewEngine(risk.Config{
		Limits: risk.Limits{
			MaxPortfolioRiskPerTrade: cfg.Risk.MaxPortfolioRiskPerTrade,
			MaxDailyLossFraction:     cfg.Risk.MaxDailyLossFraction,
			MaxDrawdown:              cfg.Risk.MaxDrawdown,
			MaxLeverage:              cfg.Risk.MaxLeverage,
			MaxPositionShare:         cfg.Risk.MaxPositionShare,
			MaxCorrelation:           cfg.Risk.MaxCorrelation,
		},
	}, &staticPortfolioProvider{value: portfolioValue}, engineLog)
	if err != nil {
		log.Fatalf("Failed to create risk engine: %v", err)
	}

	sink, err := storage.NewFileTradeSink(cfg.Storage.TradeHistoryPath)
	if err != nil {
		log.Printf("Trade persistence disabled: %v", err)
	} else {
		engine.SetTradeSink(sink)
	}

	if cfg.Notifications.Enabled && cfg.Notifications.TelegramToken != "" {
		engine.SetNotifier(notifications.NewTelegramNotifier(
			cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID))
	} else {
		log.Println("Telegram notifications disabled")
	}

	healthChecker := monitoring.NewHealthChecker()
	monitoring.SetHealthChecker(healthChecker)
	go setupMonitoringServers(cfg, healthChecker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reporter := reporting.NewConsoleReporter()
	go statusLoop(ctx, engine, reporter, healthChecker)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()

	reporter.PrintRiskSummary(engine.RiskSummary())
	reporter.PrintTradeHistory(engine.TradeHistory())

	if path := os.Getenv("TRADE_REPORT_XLSX"); path != "" {
		if err := reporting.NewExcelReporter().WriteTradesXLSX(
			engine.TradeHistory(), engine.RiskEvents(), path); err != nil {
			log.Printf("Failed to write trade report: %v", err)
		} else {
			log.Printf("Trade report written to %s", path)
		}
	}

	log.Println("Risk engine stopped")
}

// statusLoop prints a periodic risk summary
func statusLoop(ctx context.Context, engine *risk.Engine, reporter *reporting.ConsoleReporter, health *monitoring.HealthChecker) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary := engine.RiskSummary()
			health.RecordActivity()
			health.SetEmergencyStop(summary.EmergencyStop)
			reporter.PrintRiskSummary(summary)
			reporter.PrintPositions(engine.Positions())
		}
	}
}

func setupMonitoringServers(cfg *config.Config, healthChecker *monitoring.HealthChecker) {
	// Separate mux for the health server
	healthMux := http.NewServeMux()
	healthMux.Handle("/health", healthChecker)

	go func() {
		log.Printf("Starting health server on port %d", cfg.Monitoring.HealthPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Monitoring.HealthPort), healthMux); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", monitoring.NewMetricsHandler())

	log.Printf("Starting metrics server on port %d", cfg.Monitoring.PrometheusPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort), metricsMux); err != nil {
		log.Printf("Metrics server error: %v", err)
	}
}
