// Package sf provides a generic single-flight mechanism for deduplicating
// concurrent function calls with the same key.
//
// The expiring cache uses it so that a burst of misses on one key results
// in a single load:
//
//	loads := sf.New[[]byte]()
//	v, _, err := loads.Do("user:123", func() ([]byte, error) {
//	    return db.GetUser(ctx, "123")
//	})
package sf
