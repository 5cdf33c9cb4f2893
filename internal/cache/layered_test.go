package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	failGet bool
}

func newMemBackend() *memBackend {
	return &memBackend{data: map[string][]byte{}}
}

func (m *memBackend) GetBytes(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (m *memBackend) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestLayered_LocalOnly(t *testing.T) {
	ctx := context.Background()
	c := NewLayered(nil, 8, time.Minute)

	_, ok := c.Get(ctx, "teams")
	assert.False(t, ok)

	c.Set(ctx, "teams", []byte("x"))
	v, ok := c.Get(ctx, "teams")
	require.True(t, ok)
	assert.Equal(t, []byte("x"), v)
}

func TestLayered_ReadsThroughAndFillsLocal(t *testing.T) {
	ctx := context.Background()
	remote := newMemBackend()
	remote.data["seasons"] = []byte(`["2024-25"]`)
	c := NewLayered(remote, 8, time.Minute)

	v, ok := c.Get(ctx, "seasons")
	require.True(t, ok)
	assert.Equal(t, `["2024-25"]`, string(v))

	_, ok = c.Get(ctx, "seasons")
	require.True(t, ok)
	assert.Equal(t, 1, remote.gets, "second read served locally")
}

func TestLayered_BackendErrorIsMiss(t *testing.T) {
	remote := newMemBackend()
	remote.failGet = true
	c := NewLayered(remote, 8, time.Minute)

	_, ok := c.Get(context.Background(), "teams")
	assert.False(t, ok)
}

func TestLayered_Invalidate(t *testing.T) {
	ctx := context.Background()
	remote := newMemBackend()
	c := NewLayered(remote, 8, time.Minute)

	c.Set(ctx, "teams", []byte("x"))
	assert.Contains(t, remote.data, "teams")

	c.Invalidate(ctx, "teams")
	_, ok := c.Get(ctx, "teams")
	assert.False(t, ok)
	assert.NotContains(t, remote.data, "teams")
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewLayered(nil, 8, time.Minute)

	type team struct {
		Name string `json:"name"`
		Abbr string `json:"abbreviation"`
	}
	require.NoError(t, SetJSON(ctx, c, "teams", []team{{Name: "Boston Celtics", Abbr: "BOS"}}))

	got, ok := GetJSON[[]team](ctx, c, "teams")
	require.True(t, ok)
	assert.Equal(t, []team{{Name: "Boston Celtics", Abbr: "BOS"}}, got)

	c.Set(ctx, "broken", []byte("{"))
	_, ok = GetJSON[[]team](ctx, c, "broken")
	assert.False(t, ok)
}
