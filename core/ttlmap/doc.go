// Package ttlmap provides a map whose entries expire.
//
// A [Map] stores each value in an [Entry] together with the instant it
// expires at. Expiration is lazy: reads compare the entry against a
// caller supplied "now" and treat expired entries as absent, but never
// remove them. Physical removal is left to [Map.RemoveExpired], usually
// driven by a sweeper (see package sweep).
//
// # Backends
//
// The storage is picked once at construction with [WithKind]:
//
//   - [Ordered]: B-tree, iteration in ascending key order
//   - [Hash]: built-in Go map
//   - [FastHash]: bucket table addressed by a [Hasher] ([XXHash] default,
//     [Blake2b] for untrusted keys)
//
// Behaviour is identical across backends apart from iteration order.
//
//	m := ttlmap.MustNew[string, int](ttlmap.WithKind(ttlmap.Ordered))
//	m.Insert("a", 10, 5*time.Second)
//
//	now := m.Clock().Now()
//	if v, ok := m.Get("a", now); ok {
//	    // live
//	}
//	for k, v := range m.All(now) {
//	    // only live entries, "now" is fixed for the pass
//	}
//
// # Semantics worth knowing
//
//   - Insert returns the previous value even if it had already expired.
//   - Remove ignores expiry and returns stale values too.
//   - Len counts expired entries that have not been removed yet.
//   - NaN float keys never compare equal in the Hash and FastHash
//     backends: every insert adds an unreachable entry. The Ordered
//     backend treats all NaNs as one key. Avoid NaN keys.
//
// # Concurrency
//
// Map is not safe for concurrent use. Structural mutations during a
// borrowing iteration panic with [ErrMutationDuringIteration]. [Synced]
// wraps a Map with a read/write lock for shared use.
package ttlmap
