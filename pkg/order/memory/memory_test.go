package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/pkg/order"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	snap, err := s.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(order.EmptyDocument), string(snap.Content))
	assert.Equal(t, order.ContentVersion(order.EmptyDocument), snap.Version)

	next := []byte(`{"orders":[{"id":"1"}]}`)
	require.NoError(t, s.Write(ctx, next, snap.Version, "Add order 1"))

	got, err := s.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(next), string(got.Content))
	assert.NotEqual(t, snap.Version, got.Version)

	err = s.Write(ctx, []byte(`{}`), snap.Version, "stale")
	assert.ErrorIs(t, err, order.ErrConflict)
	assert.Equal(t, []string{"Add order 1"}, s.Messages())
}

func TestFetchReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New([]byte(`{"orders":[]}`))

	snap, err := s.Fetch(ctx)
	require.NoError(t, err)
	snap.Content[0] = 'X'

	again, err := s.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"orders":[]}`, string(again.Content))
}
