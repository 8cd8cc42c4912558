package config

import (
	"os"
	"strconv"
)

type Config struct {
	Environment string
	EngineName  string

	Risk struct {
		MaxPortfolioRiskPerTrade float64
		MaxDailyLossFraction     float64
		MaxDrawdown              float64
		MaxLeverage              int
		MaxPositionShare         float64
		MaxCorrelation           float64
	}

	Monitoring struct {
		PrometheusPort int
		HealthPort     int
	}

	Notifications struct {
		Enabled        bool
		TelegramToken  string
		TelegramChatID string
	}

	Storage struct {
		TradeHistoryPath string
	}
}

func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		EngineName:  getEnv("ENGINE_NAME", "risk-engine"),
	}

	cfg.Risk.MaxPortfolioRiskPerTrade = getEnvFloat("MAX_PORTFOLIO_RISK_PER_TRADE", 0.02)
	cfg.Risk.MaxDailyLossFraction = getEnvFloat("MAX_DAILY_LOSS_FRACTION", 0.05)
	cfg.Risk.MaxDrawdown = getEnvFloat("MAX_DRAWDOWN", 0.15)
	cfg.Risk.MaxLeverage = getEnvInt("MAX_LEVERAGE", 10)
	cfg.Risk.MaxPositionShare = getEnvFloat("MAX_POSITION_SHARE", 0.30)
	cfg.Risk.MaxCorrelation = getEnvFloat("MAX_CORRELATION", 0.70)

	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)
	cfg.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", 8081)

	cfg.Notifications.Enabled = getEnvBool("TELEGRAM_ENABLED", true)
	cfg.Notifications.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.Notifications.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	cfg.Storage.TradeHistoryPath = getEnv("TRADE_HISTORY_PATH", "data/trade_history.jsonl")

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
