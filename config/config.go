// Package config loads application configuration.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string

	// AESKey is the base64-encoded process-wide document key.
	// It must decode to exactly 32 bytes (AES-256).
	AESKey string

	// Ledger connection settings for the DocumentRegistry contract.
	LedgerRPCURL          string
	LedgerContractAddress string
	LedgerPrivateKey      string
	LedgerTimeout         time.Duration

	OtelEnabled      bool
	OtelEndpoint     string
	OtelServiceName  string
	OtelSamplingRate float64
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		AESKey:                os.Getenv("AES_KEY"),
		LedgerRPCURL:          os.Getenv("LEDGER_RPC_URL"),
		LedgerContractAddress: os.Getenv("LEDGER_CONTRACT_ADDRESS"),
		LedgerPrivateKey:      os.Getenv("LEDGER_PRIVATE_KEY"),
		LedgerTimeout:         getDurationEnv("LEDGER_TIMEOUT", 30*time.Second),
		OtelEnabled:           getBoolEnv("OTEL_ENABLED", false),
		OtelEndpoint:          getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OtelServiceName:       getEnv("OTEL_SERVICE_NAME", "dossiers-medicaux"),
		OtelSamplingRate:      getFloatEnv("OTEL_SAMPLING_RATE", 0.1),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getFloatEnv(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
