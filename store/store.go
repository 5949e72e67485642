package store

import (
	"context"
	"errors"
)

type sessionKeyContext struct{}

// WithSessionKey sets the routing key used by Store lookups.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

// SessionKeyFromContext gets the routing key from the context.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok && key != ""
}

var ErrNoSessionKey = errors.New("no session key in context")

// Store wraps a Cache with a namespace and a key function so callers never
// build raw cache keys themselves.
type Store[S any] struct {
	core      Cache[S]
	namespace string
	keyFn     func(ctx context.Context) (string, bool)
}

func New[S any](core Cache[S], namespace string, keyFn func(ctx context.Context) (string, bool)) Store[S] {
	return Store[S]{core: core, namespace: namespace, keyFn: keyFn}
}

func (s Store[S]) key(ctx context.Context) (string, bool) {
	key, ok := s.keyFn(ctx)
	if !ok {
		return "", false
	}
	return s.namespace + ":" + key, true
}

func (s Store[S]) Set(ctx context.Context, val S) error {
	key, ok := s.key(ctx)
	if !ok {
		return ErrNoSessionKey
	}
	return s.core.Set(ctx, key, val)
}

func (s Store[S]) Get(ctx context.Context) (S, bool, error) {
	key, ok := s.key(ctx)
	if !ok {
		var zero S
		return zero, false, ErrNoSessionKey
	}
	return s.core.Get(ctx, key)
}

func (s Store[S]) Del(ctx context.Context) error {
	key, ok := s.key(ctx)
	if !ok {
		return ErrNoSessionKey
	}
	return s.core.Del(ctx, key)
}

func (s Store[S]) Exists(ctx context.Context) (bool, error) {
	key, ok := s.key(ctx)
	if !ok {
		return false, ErrNoSessionKey
	}
	return s.core.Exists(ctx, key)
}
