package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration. Built once at startup and
// passed by reference; no package globals.
type Server struct {
	Addr          string
	JWTSigningKey string

	PostgresDSN string
	RedisAddr   string

	KafkaBrokers []string

	ExtractionEndpoint string
	ExtractionAPIKey   string
	ExtractionTimeout  time.Duration

	MatchThreshold float64

	SignalsSecretHash string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VERIDOC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	extractionTimeout := 10 * time.Second
	if raw := os.Getenv("EXTRACTION_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			extractionTimeout = d
		}
	}

	matchThreshold := 0.0
	if raw := os.Getenv("MATCH_THRESHOLD"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			matchThreshold = f
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:               addr,
		JWTSigningKey:      jwtSigningKey,
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		KafkaBrokers:       brokers,
		ExtractionEndpoint: os.Getenv("EXTRACTION_ENDPOINT"),
		ExtractionAPIKey:   os.Getenv("EXTRACTION_API_KEY"),
		ExtractionTimeout:  extractionTimeout,
		MatchThreshold:     matchThreshold,
		SignalsSecretHash:  os.Getenv("SIGNALS_SECRET_HASH"),
	}
}
