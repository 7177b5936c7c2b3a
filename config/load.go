package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func Load() App {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := App{
		Port:             getenv("APP_PORT", "8080"),
		DatabaseURL:      must("DATABASE_URL"),
		JWTSecret:        getenv("JWT_SECRET", "local_dev_secret"),
		Env:              getenv("APP_ENV", "dev"),
		BaseURL:          getenv("BASE_URL", "http://localhost:8080"),
		StripeSecretKey:  must("STRIPE_SECRET_KEY"),
		Currency:         getenv("STRIPE_CURRENCY", "usd"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		FineMultiplier:   getdecimal("FINE_MULTIPLIER", "1"),
		ScanInterval:     getduration("OVERDUE_SCAN_INTERVAL", 24*time.Hour),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}

func getdecimal(k, def string) decimal.Decimal {
	raw := getenv(k, def)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("bad decimal env, using default", "key", k, "value", raw)
		return decimal.RequireFromString(def)
	}
	return d
}

func getduration(k string, def time.Duration) time.Duration {
	raw := os.Getenv(k)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("bad duration env, using default", "key", k, "value", raw)
		return def
	}
	return d
}
