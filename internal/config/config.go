// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// DatabaseURL is the Postgres DSN used by all repositories.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA); used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key; used to validate principal access tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "fleetdesk-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "fleetdesk-core").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12. Used by the seed tool.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Security events (optional). When Kafka brokers are set, the guard service
	// emits denied/failed access events to Kafka for the misuse-detection worker.
	// EventsKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	EventsKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the Kafka topic for security events (default fleetdesk-security-events).
	EventsKafkaTopic string `mapstructure:"SECURITY_EVENTS_TOPIC"`

	// OTLPEndpoint is the OTLP gRPC endpoint for telemetry export (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Worker-only: Loki URL for the security-event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the security-event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "fleetdesk-auth")
	v.SetDefault("JWT_AUDIENCE", "fleetdesk-core")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("SECURITY_EVENTS_TOPIC", "fleetdesk-security-events")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "fleetdesk-security-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// EventsKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event fan-out is enabled (non-empty list) and to create the producer.
func (c *Config) EventsKafkaBrokersList() []string {
	if c == nil || c.EventsKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.EventsKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
