// Package config loads the service settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Supported document store backends.
const (
	BackendGitHub   = "github"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds the process-wide settings. It is read once at startup and
// never modified afterwards.
type Config struct {
	Backend string

	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	GitHubAPIURL string
	Branch       string
	Path         string

	DatabaseURL string
	RedisAddr   string

	KafkaBrokers []string
	KafkaTopic   string

	HTTPAddr string
	OTELHost string
	LogLevel string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	return FromEnv(os.Getenv), err
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		Backend:      strings.ToLower(getenv("ORDERS_BACKEND")),
		GitHubToken:  getenv("GITHUB_TOKEN"),
		GitHubOwner:  getenv("GITHUB_OWNER"),
		GitHubRepo:   getenv("GITHUB_REPO"),
		GitHubAPIURL: getenv("GITHUB_API_URL"),
		Branch:       getenv("GITHUB_BRANCH"),
		Path:         getenv("ORDERS_PATH"),
		DatabaseURL:  getenv("DATABASE_URL"),
		RedisAddr:    getenv("REDIS_ADDR"),
		KafkaTopic:   getenv("KAFKA_TOPIC"),
		HTTPAddr:     getenv("HTTP_ADDR"),
		OTELHost:     getenv("OTEL_HOST"),
		LogLevel:     getenv("LOG_LEVEL"),
	}
	for _, b := range strings.Split(getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendGitHub
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.Path == "" {
		cfg.Path = "data/orders.json"
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "orders.accepted"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	return cfg
}

// Missing lists the required settings the selected backend lacks.
func (c Config) Missing() []string {
	var missing []string
	need := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	switch c.Backend {
	case BackendGitHub:
		need("GITHUB_TOKEN", c.GitHubToken)
		need("GITHUB_OWNER", c.GitHubOwner)
		need("GITHUB_REPO", c.GitHubRepo)
	case BackendPostgres:
		need("DATABASE_URL", c.DatabaseURL)
	case BackendRedis:
		need("REDIS_ADDR", c.RedisAddr)
	case BackendMemory:
	default:
		missing = append(missing, "ORDERS_BACKEND")
	}
	return missing
}

// Configured reports whether every required setting is present.
func (c Config) Configured() bool {
	return len(c.Missing()) == 0
}
