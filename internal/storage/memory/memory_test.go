package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reveille/internal/storage"
)

func TestMemoryStorage_KV(t *testing.T) {
	m := New()
	ctx := context.Background()

	require.NoError(t, m.SetMany(ctx, map[string]string{"a_1": "x", "a_2": "y", "b_1": "z"}))

	v, ok, err := m.Get(ctx, "a_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok, err = m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	pairs, err := m.Scan(ctx, "a_")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a_1": "x", "a_2": "y"}, pairs)

	require.NoError(t, m.Delete(ctx, "a_1", "missing"))
	pairs, err = m.Scan(ctx, "a_")
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestMemoryStorage_Closed(t *testing.T) {
	m := New()
	require.NoError(t, m.Close())

	_, _, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, storage.ErrClosed)
	assert.ErrorIs(t, m.SetMany(context.Background(), map[string]string{"k": "v"}), storage.ErrClosed)
}
