package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// BaseURL is the externally reachable origin used to build the
	// success/cancel redirect links handed to the payment gateway.
	BaseURL string `env:"BASE_URL" default:"http://localhost:8080"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY,required"`
	Currency        string `env:"STRIPE_CURRENCY" default:"usd"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`

	FineMultiplier decimal.Decimal `env:"FINE_MULTIPLIER" default:"1"`
	ScanInterval   time.Duration   `env:"OVERDUE_SCAN_INTERVAL" default:"24h"`
}
