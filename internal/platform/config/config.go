package config

import (
	"os"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	ChainRPCURL string
	AdvisorURL  string

	TreasuryWalletKey     string
	TreasuryWalletAddress string
	TreasuryAssetID       string

	DistributionPacing time.Duration
	GatewayTimeout     time.Duration
	AdvisoryInterval   time.Duration

	EnableAdvisoryCycle bool
	EnableOutboxRelay   bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "seneschal"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		ChainRPCURL: strings.TrimSpace(os.Getenv("CHAIN_RPC_URL")),
		AdvisorURL:  strings.TrimSpace(os.Getenv("ADVISOR_URL")),

		TreasuryWalletKey:     strings.TrimSpace(os.Getenv("TREASURY_WALLET_KEY")),
		TreasuryWalletAddress: strings.TrimSpace(os.Getenv("TREASURY_WALLET_ADDRESS")),
		TreasuryAssetID:       strings.TrimSpace(os.Getenv("TREASURY_ASSET_ID")),

		DistributionPacing: envDuration("DISTRIBUTION_PACING", 2*time.Second),
		GatewayTimeout:     envDuration("GATEWAY_TIMEOUT", 30*time.Second),
		AdvisoryInterval:   envDuration("ADVISORY_INTERVAL", time.Hour),

		EnableAdvisoryCycle: envBool("ENABLE_ADVISORY_CYCLE", false),
		EnableOutboxRelay:   envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
