package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"orderdesk/pkg/config"
	"orderdesk/pkg/order"
	"orderdesk/pkg/order/github"
	"orderdesk/pkg/order/memory"
	"orderdesk/pkg/order/postgres"
	"orderdesk/pkg/order/redis"
)

// newStore builds the document store for the configured backend. It returns
// a nil store when required settings are missing so the handler can report
// the configuration error per request.
func newStore(ctx context.Context, cfg config.Config) (order.Store, func(), error) {
	noop := func() {}
	if !cfg.Configured() {
		return nil, noop, nil
	}

	switch cfg.Backend {
	case config.BackendGitHub:
		s, err := github.New(github.Options{
			Token:   cfg.GitHubToken,
			Owner:   cfg.GitHubOwner,
			Repo:    cfg.GitHubRepo,
			Branch:  cfg.Branch,
			Path:    cfg.Path,
			BaseURL: cfg.GitHubAPIURL,
		})
		return s, noop, err

	case config.BackendMemory:
		return memory.New(nil), noop, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("db connect: %w", err)
		}
		s := postgres.New(db, cfg.Path, cfg.Branch)
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return s, func() { db.Close() }, nil

	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		s := redis.New(client, cfg.Path, cfg.Branch)
		if err := s.Seed(ctx); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("seed redis document: %w", err)
		}
		return s, func() { client.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown backend %q", cfg.Backend)
}
