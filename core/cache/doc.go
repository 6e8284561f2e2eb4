// Package cache provides a simple key-value cache interface with TTL
// support, backed by an expiring map.
//
// The package defines two interfaces:
//
//   - [Cache]: Untyped cache storing values as any
//   - [TypedCache]: Generic type-safe wrapper via [NewTyped]
//
// # Implementations
//
// [Expiring] stores entries in a ttlmap and is safe for concurrent use.
// Expired entries are hidden from reads immediately and removed by a
// background sweeper when SweepInterval is set.
//
//	c, err := cache.NewExpiring(cache.ExpiringOpts{
//	    DefaultTTL:    5 * time.Minute,
//	    SweepInterval: time.Minute,
//	})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	c.Put("key", value, cache.WithTTL(30*time.Second))
//	if val, ok := c.Get("key"); ok {
//	    // Use val
//	}
//
// [Nop] stores nothing and is handy to disable caching.
//
// # Type-Safe Usage
//
// Use [NewTyped] for compile-time type safety:
//
//	userCache := cache.NewTyped[*User](c)
//	userCache.Put("user:123", user)
//	if user, ok := userCache.Get("user:123"); ok {
//	    // user is *User, no type assertion needed
//	}
//
// # Read-through
//
// [Expiring.GetOrLoad] calls a [Loader] on a miss. Concurrent misses on the
// same key share a single load.
// [TypedCache.GetOrLoad] does the same with typed loaders.
package cache
