package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrTypeMismatch = errors.New("cached value has a different type")

type PutOptions struct {
	// TTL after which the entry expires. Zero means the entry never expires.
	TTL time.Duration
}

type PutOption func(*PutOptions)

func WithTTL(ttl time.Duration) PutOption {
	return func(o *PutOptions) {
		o.TTL = ttl
	}
}

// Loader produces the value for a missing key.
type Loader func(ctx context.Context, key string) (any, error)

type Cache interface {
	Get(key string) (any, bool)
	Put(key string, val any, opts ...PutOption)
	Delete(key string)
	Close()
}

// LoadingCache is a Cache with read-through loading.
type LoadingCache interface {
	Cache
	GetOrLoad(ctx context.Context, key string, load Loader, opts ...PutOption) (any, error)
}

type TypedCache[T any] interface {
	Put(key string, val T, opts ...PutOption)
	Get(key string) (T, bool)
	Delete(key string)
	// GetOrLoad returns the cached value or loads, stores and returns it.
	// Loads are deduplicated when the underlying cache is a LoadingCache.
	GetOrLoad(ctx context.Context, key string, load func(ctx context.Context, key string) (T, error), opts ...PutOption) (T, error)
}

type typedCache[T any] struct {
	c Cache
}

func NewTyped[T any](c Cache) TypedCache[T] { return &typedCache[T]{c: c} }

func (t *typedCache[T]) Get(key string) (out T, ok bool) {
	var v any
	v, ok = t.c.Get(key)
	if !ok {
		return out, false
	}

	if out, ok = v.(T); !ok {
		return out, false
	}
	return
}

func (t *typedCache[T]) Put(key string, val T, opts ...PutOption) {
	t.c.Put(key, val, opts...)
}

func (t *typedCache[T]) Delete(key string) {
	t.c.Delete(key)
}

func (t *typedCache[T]) GetOrLoad(
	ctx context.Context,
	key string,
	load func(ctx context.Context, key string) (T, error),
	opts ...PutOption,
) (out T, err error) {
	lc, ok := t.c.(LoadingCache)
	if !ok {
		if out, ok = t.Get(key); ok {
			return out, nil
		}
		if out, err = load(ctx, key); err != nil {
			return out, err
		}
		t.Put(key, out, opts...)
		return out, nil
	}

	v, err := lc.GetOrLoad(ctx, key, func(ctx context.Context, key string) (any, error) {
		return load(ctx, key)
	}, opts...)
	if err != nil {
		return out, err
	}
	out, ok = v.(T)
	if !ok {
		return out, fmt.Errorf("%w: key %s holds %T", ErrTypeMismatch, key, v)
	}
	return out, nil
}

func applyPutOptions(defaults PutOptions, opts []PutOption) PutOptions {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var _ TypedCache[any] = (*typedCache[any])(nil)
