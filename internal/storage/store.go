// Package storage is the durable key/value storage that backs visitor
// sessions, carts and upload fallbacks.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Well-known keys.
const (
	KeyToken          = "token"
	KeyUser           = "user"
	KeyCart           = "cart"
	KeyDemoCategories = "demo_categories"
	ImageKeyPrefix    = "image_"
)

// Store persists string values by key. Missing keys are reported with
// found=false, not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Pinger is implemented by stores backed by a network service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Expirer is implemented by stores that can drop a value once ttl elapses.
type Expirer interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

// SetWithTTL stores value under key for ttl when s supports expiry and
// without expiry otherwise.
func SetWithTTL(ctx context.Context, s Store, key, value string, ttl time.Duration) error {
	if e, ok := s.(Expirer); ok && ttl > 0 {
		return e.SetWithTTL(ctx, key, value, ttl)
	}
	return s.Set(ctx, key, value)
}

// GetJSON decodes the value stored under key into out.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}

type prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix scopes every key of inner under prefix.
func WithPrefix(inner Store, prefix string) Store {
	if prefix == "" {
		return inner
	}
	if p, ok := inner.(*prefixed); ok {
		return &prefixed{inner: p.inner, prefix: p.prefix + prefix}
	}
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return SetWithTTL(ctx, p.inner, p.prefix+key, value, ttl)
}

func (p *prefixed) Delete(ctx context.Context, keys ...string) error {
	scoped := make([]string, len(keys))
	for i, k := range keys {
		scoped[i] = p.prefix + k
	}
	return p.inner.Delete(ctx, scoped...)
}

func (p *prefixed) Ping(ctx context.Context) error {
	if pinger, ok := p.inner.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}
