package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv(env(nil))

	assert.Equal(t, BackendGitHub, cfg.Backend)
	assert.Equal(t, "main", cfg.Branch)
	assert.Equal(t, "data/orders.json", cfg.Path)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "orders.accepted", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"GITHUB_TOKEN", "GITHUB_OWNER", "GITHUB_REPO"}, cfg.Missing())
	assert.False(t, cfg.Configured())
}

func TestFromEnvGitHub(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		"GITHUB_TOKEN":  "t",
		"GITHUB_OWNER":  "acme",
		"GITHUB_REPO":   "shop",
		"GITHUB_BRANCH": "orders",
		"KAFKA_BROKERS": "k1:9092, k2:9092,",
	}))

	assert.Equal(t, "orders", cfg.Branch)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Empty(t, cfg.Missing())
	assert.True(t, cfg.Configured())
}

func TestMissingPerBackend(t *testing.T) {
	tests := []struct {
		name    string
		vals    map[string]string
		missing []string
	}{
		{name: "only token", vals: map[string]string{"GITHUB_TOKEN": "t"}, missing: []string{"GITHUB_OWNER", "GITHUB_REPO"}},
		{name: "no repo", vals: map[string]string{"GITHUB_TOKEN": "t", "GITHUB_OWNER": "o"}, missing: []string{"GITHUB_REPO"}},
		{name: "memory", vals: map[string]string{"ORDERS_BACKEND": "Memory"}},
		{name: "postgres", vals: map[string]string{"ORDERS_BACKEND": "postgres"}, missing: []string{"DATABASE_URL"}},
		{name: "redis", vals: map[string]string{"ORDERS_BACKEND": "redis", "REDIS_ADDR": "localhost:6379"}},
		{name: "unknown", vals: map[string]string{"ORDERS_BACKEND": "s3"}, missing: []string{"ORDERS_BACKEND"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.missing, FromEnv(env(tc.vals)).Missing())
		})
	}
}
