// Package config loads the service configuration from environment variables
// and validates it before anything else starts.
package config

import (
	"github.com/solwatch/solwatch/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every environment variable read by the service, e.g.
// SOLWATCH_WALLET_ADDRESS.
const envPrefix = "solwatch"

// Redis holds the optional Redis connection settings. When Addr is empty the
// service runs with in-process state only.
type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Username string `envconfig:"REDIS_USERNAME"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Config is the full service configuration.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error panic fatal"`

	// WalletAddress is the single wallet whose activity is watched.
	WalletAddress string `envconfig:"WALLET_ADDRESS" required:"true" validate:"required"`

	// RPCEndpoint is the HTTP JSON-RPC endpoint of the Solana node.
	RPCEndpoint string `envconfig:"RPC_ENDPOINT" required:"true" validate:"required,url"`

	// WSEndpoint is the WebSocket endpoint used for logsSubscribe.
	WSEndpoint string `envconfig:"WS_ENDPOINT" required:"true" validate:"required,url"`

	// Concurrency bounds the number of signatures processed in parallel.
	Concurrency int `envconfig:"CONCURRENCY" default:"4" validate:"gte=1"`

	// PricingBaseURL overrides the pairs API root used for USD quotes.
	PricingBaseURL string `envconfig:"PRICING_BASE_URL" validate:"omitempty,url"`

	// OtelEnabled turns on OpenTelemetry export. The OTLP exporters read
	// their endpoint from the standard OTEL_EXPORTER_OTLP_* variables.
	OtelEnabled bool `envconfig:"OTEL_ENABLED" default:"false"`

	Redis Redis
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
