package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string

	AdminAPIKey string

	AttestationKeyHex   string
	TokenSecret         string
	TokenTTLMinutes     int
	ChallengeTTLSeconds int

	SettlementBaseURL        string
	SettlementAPIKey         string
	SettlementTimeoutSeconds int

	PolicyBundlePath string

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitFailClosed    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                 addr,
		PostgresDSN:              os.Getenv("POSTGRES_DSN"),
		AdminAPIKey:              os.Getenv("ADMIN_API_KEY"),
		AttestationKeyHex:        os.Getenv("ATTESTATION_PRIVATE_KEY_HEX"),
		TokenSecret:              os.Getenv("TOKEN_HS256_SECRET"),
		TokenTTLMinutes:          envIntDefault("TOKEN_TTL_MINUTES", 15),
		ChallengeTTLSeconds:      envIntDefault("CHALLENGE_TTL_SECONDS", 300),
		SettlementBaseURL:        os.Getenv("SETTLEMENT_BASE_URL"),
		SettlementAPIKey:         os.Getenv("SETTLEMENT_API_KEY"),
		SettlementTimeoutSeconds: envIntDefault("SETTLEMENT_TIMEOUT_SECONDS", 10),
		PolicyBundlePath:         os.Getenv("POLICY_BUNDLE_PATH"),
		RateLimitRequests:        envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds:   envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitFailClosed:      envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  envIntDefault("REDIS_DB", 0),
	}
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c Config) ChallengeTTL() time.Duration {
	return time.Duration(c.ChallengeTTLSeconds) * time.Second
}

func (c Config) SettlementTimeout() time.Duration {
	return time.Duration(c.SettlementTimeoutSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
