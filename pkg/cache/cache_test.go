package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "products:all", []product{{ID: 1, Name: "Coffee"}}, time.Minute))

	var got []product
	assert.True(t, m.Get(ctx, "products:all", &got))
	assert.Equal(t, "Coffee", got[0].Name)

	now = now.Add(2 * time.Minute)
	assert.False(t, m.Get(ctx, "products:all", &got))
}

func TestMemoryDelPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "products:all", 1, 0))
	require.NoError(t, m.Set(ctx, "products:cat:2", 2, 0))
	require.NoError(t, m.Set(ctx, "categories", 3, 0))

	require.NoError(t, m.DelPrefix(ctx, "products:"))

	var n int
	assert.False(t, m.Get(ctx, "products:all", &n))
	assert.False(t, m.Get(ctx, "products:cat:2", &n))
	assert.True(t, m.Get(ctx, "categories", &n))
	assert.Equal(t, 3, n)
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	load := func() ([]product, error) {
		calls++
		return []product{{ID: 7, Name: "Tea"}}, nil
	}

	first, err := Remember(ctx, m, "k", time.Minute, load)
	require.NoError(t, err)
	second, err := Remember(ctx, m, "k", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = Remember(ctx, Nop{}, "k", time.Minute, func() (int, error) { return 0, errors.New("db down") })
	assert.EqualError(t, err, "db down")
}
