package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      App
	HTTP     HTTP
	Postgres Postgres
	Redis    Redis
	Feed     Feed
	Export   Export
	Bot      Bot
}

type App struct {
	Name    string `env:"APP_NAME" envDefault:"gift-tracker"`
	Version string `env:"APP_VERSION" envDefault:"dev"`
}

type Bot struct {
	// Token empty disables the alert notifier.
	Token  string `env:"BOT_TOKEN"`
	ChatID int64  `env:"BOT_CHAT_ID"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return config, nil
}
