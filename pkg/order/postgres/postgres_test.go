package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/pkg/order"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db, "test/"+uuid.NewString()+".json", "main")
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() {
		db.Exec("DELETE FROM order_documents WHERE path=$1 AND ref=$2", s.path, s.ref)
	})
	return s
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap, err := s.Fetch(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orders":[]}`, string(snap.Content))

	next := []byte(`{"orders":[{"id":"ord-1"}]}`)
	require.NoError(t, s.Write(ctx, next, snap.Version, "Add order ord-1"))

	got, err := s.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(next), string(got.Content))
	assert.Equal(t, order.ContentVersion(next), got.Version)

	err = s.Write(ctx, []byte(`{"orders":[]}`), snap.Version, "stale")
	assert.ErrorIs(t, err, order.ErrConflict)
}

func TestMigrateKeepsExistingDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap, err := s.Fetch(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, []byte(`{"orders":[{"id":"x"}]}`), snap.Version, "Add order x"))
	require.NoError(t, s.Migrate(ctx))

	got, err := s.Fetch(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orders":[{"id":"x"}]}`, string(got.Content))
}

func TestFetchMissingDocument(t *testing.T) {
	s := newTestStore(t)
	missing := New(s.db, "absent/"+uuid.NewString(), "main")

	_, err := missing.Fetch(context.Background())
	var se *order.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Status)
}
