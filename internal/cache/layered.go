package cache

import (
	"context"
	"errors"
	"log"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Backend is a shared byte cache behind the in-process layer.
type Backend interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Layered reads through an in-process LRU to an optional shared backend.
// Backend failures are logged and treated as misses.
type Layered struct {
	local  *expirable.LRU[string, []byte]
	remote Backend
	ttl    time.Duration
}

// NewLayered creates a layered cache. remote may be nil.
func NewLayered(remote Backend, size int, ttl time.Duration) *Layered {
	if size <= 0 {
		size = 256
	}
	return &Layered{
		local:  expirable.NewLRU[string, []byte](size, nil, ttl),
		remote: remote,
		ttl:    ttl,
	}
}

// Get returns the cached bytes for key.
func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := l.local.Get(key); ok {
		return v, true
	}
	if l.remote == nil {
		return nil, false
	}

	v, err := l.remote.GetBytes(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Printf("⚠️  cache get %s: %v", key, err)
		}
		return nil, false
	}
	l.local.Add(key, v)
	return v, true
}

// Set stores value in both layers.
func (l *Layered) Set(ctx context.Context, key string, value []byte) {
	l.local.Add(key, value)
	if l.remote == nil {
		return
	}
	if err := l.remote.SetBytes(ctx, key, value, l.ttl); err != nil {
		log.Printf("⚠️  cache set %s: %v", key, err)
	}
}

// Invalidate drops keys from both layers.
func (l *Layered) Invalidate(ctx context.Context, keys ...string) {
	for _, k := range keys {
		l.local.Remove(k)
	}
	if l.remote == nil || len(keys) == 0 {
		return
	}
	if err := l.remote.Delete(ctx, keys...); err != nil {
		log.Printf("⚠️  cache delete: %v", err)
	}
}

// Len returns the number of in-process entries.
func (l *Layered) Len() int {
	return l.local.Len()
}

// GetJSON decodes the cached value for key into a T.
func GetJSON[T any](ctx context.Context, l *Layered, key string) (T, bool) {
	var v T
	b, ok := l.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(b, &v); err != nil {
		log.Printf("⚠️  cache decode %s: %v", key, err)
		return v, false
	}
	return v, true
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, l *Layered, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	l.Set(ctx, key, b)
	return nil
}
