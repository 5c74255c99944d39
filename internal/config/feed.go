package config

import "time"

type Feed struct {
	URL string `env:"FEED_URL" envDefault:"ws://localhost:21213/"`

	// Reconnect policy. MaxAttempts 0 keeps retrying forever, which matches
	// the behavior of the upstream feed adapters.
	ReconnectDelay    time.Duration `env:"FEED_RECONNECT_DELAY" envDefault:"1s"`
	ReconnectMaxDelay time.Duration `env:"FEED_RECONNECT_MAX_DELAY" envDefault:"30s"`
	BackoffMultiplier float64       `env:"FEED_BACKOFF_MULTIPLIER" envDefault:"1.0"`
	MaxAttempts       int           `env:"FEED_MAX_ATTEMPTS" envDefault:"0"`

	HandshakeTimeout time.Duration `env:"FEED_HANDSHAKE_TIMEOUT" envDefault:"10s"`
}
