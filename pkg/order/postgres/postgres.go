package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orderdesk/pkg/order"
)

// Schema creates the table holding order documents, one row per path and ref.
const Schema = `CREATE TABLE IF NOT EXISTS order_documents (
	path       TEXT NOT NULL,
	ref        TEXT NOT NULL,
	content    TEXT NOT NULL,
	version    TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (path, ref)
)`

// Store keeps the order document in PostgreSQL. The version column acts as
// the optimistic concurrency token.
type Store struct {
	db   *sql.DB
	path string
	ref  string
}

// New creates a PostgreSQL document store for path on ref.
func New(db *sql.DB, path, ref string) *Store {
	return &Store{db: db, path: path, ref: ref}
}

// Migrate creates the table and seeds an empty document if none exists.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create order_documents: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO order_documents (path,ref,content,version) VALUES ($1,$2,$3,$4) ON CONFLICT (path,ref) DO NOTHING",
		s.path, s.ref, string(order.EmptyDocument), order.ContentVersion(order.EmptyDocument))
	if err != nil {
		return fmt.Errorf("seed order document: %w", err)
	}
	return nil
}

// Fetch reads the document and its version.
func (s *Store) Fetch(ctx context.Context) (order.Snapshot, error) {
	var content, version string
	err := s.db.QueryRowContext(ctx,
		"SELECT content,version FROM order_documents WHERE path=$1 AND ref=$2", s.path, s.ref).
		Scan(&content, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Snapshot{}, order.NotFoundError()
	}
	if err != nil {
		return order.Snapshot{}, &order.StoreError{Op: order.OpFetch, Err: err}
	}
	return order.Snapshot{Content: []byte(content), Version: version}, nil
}

// Write updates the document only if the stored version still equals version.
func (s *Store) Write(ctx context.Context, content []byte, version, message string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE order_documents SET content=$1, version=$2, message=$3, updated_at=now() WHERE path=$4 AND ref=$5 AND version=$6",
		string(content), order.ContentVersion(content), message, s.path, s.ref, version)
	if err != nil {
		return &order.StoreError{Op: order.OpWrite, Err: err}
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return order.ConflictError(version, s.current(ctx))
	}
	return nil
}

func (s *Store) current(ctx context.Context) string {
	var version string
	_ = s.db.QueryRowContext(ctx,
		"SELECT version FROM order_documents WHERE path=$1 AND ref=$2", s.path, s.ref).Scan(&version)
	return version
}
