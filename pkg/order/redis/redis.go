// Package redis stores the order document in a Redis hash.
package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"orderdesk/pkg/order"
)

// Store keeps the document under a single hash key with content and
// version fields. Writes run in a WATCH transaction on that key.
type Store struct {
	client *redis.Client
	key    string
}

// New creates a Redis document store for path on ref.
func New(client *redis.Client, path, ref string) *Store {
	return &Store{client: client, key: "orderdesk:document:" + ref + ":" + path}
}

// Seed stores an empty document unless one already exists.
func (s *Store) Seed(ctx context.Context) error {
	ok, err := s.client.HSetNX(ctx, s.key, "content", order.EmptyDocument).Result()
	if err != nil || !ok {
		return err
	}
	return s.client.HSet(ctx, s.key, "version", order.ContentVersion(order.EmptyDocument)).Err()
}

// Fetch reads the document and its version.
func (s *Store) Fetch(ctx context.Context) (order.Snapshot, error) {
	vals, err := s.client.HMGet(ctx, s.key, "content", "version").Result()
	if err != nil {
		return order.Snapshot{}, &order.StoreError{Op: order.OpFetch, Err: err}
	}
	content, ok := vals[0].(string)
	if !ok {
		return order.Snapshot{}, order.NotFoundError()
	}
	version, _ := vals[1].(string)
	return order.Snapshot{Content: []byte(content), Version: version}, nil
}

// Write replaces the document if the stored version still equals version.
func (s *Store) Write(ctx context.Context, content []byte, version, message string) error {
	var conflict *order.StoreError
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, s.key, "version").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			conflict = order.ConflictError(version, current)
			return conflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key,
				"content", content,
				"version", order.ContentVersion(content),
				"message", message)
			return nil
		})
		return err
	}, s.key)

	switch {
	case err == nil:
		return nil
	case conflict != nil:
		return conflict
	case errors.Is(err, redis.TxFailedErr):
		return order.ConflictError(version, "")
	default:
		return &order.StoreError{Op: order.OpWrite, Err: err}
	}
}
