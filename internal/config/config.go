package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                int
	NatsURL             string
	NatsToken           string
	DatabaseURL         string
	LogLevel            string
	OpenAIAPIKey        string
	OpenAIModel         string
	SubjectName         string
	ConfidenceThreshold int
	DedupThreshold      float64
	CacheTTL            time.Duration
}

func Load() Config {
	return Config{
		Port:                envInt("QUOTIENT_PORT", 8760),
		NatsURL:             envStr("NATS_URL", "nats://nats:4222"),
		NatsToken:           envStr("NATS_TOKEN", ""),
		DatabaseURL:         envStr("DATABASE_URL", ""),
		LogLevel:            envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:        envStr("OPENAI_API_KEY", ""),
		OpenAIModel:         envStr("QUOTIENT_MODEL", "gpt-4o"),
		SubjectName:         envStr("QUOTIENT_SUBJECT_NAME", ""),
		ConfidenceThreshold: envInt("QUOTIENT_CONFIDENCE_THRESHOLD", 2),
		DedupThreshold:      envFloat("QUOTIENT_DEDUP_THRESHOLD", 0.85),
		CacheTTL:            time.Duration(envInt("QUOTIENT_CACHE_TTL_HOURS", 24)) * time.Hour,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
