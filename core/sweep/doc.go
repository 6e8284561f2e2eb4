// Package sweep physically removes expired entries from an expiring map.
//
// Reads on a ttlmap never remove anything, so a map that is written but
// rarely read keeps expired entries around. A [Sweeper] periodically calls
// RemoveExpired on its [Target] to reclaim that memory.
//
//	m := ttlmap.NewSynced(ttlmap.MustNew[string, []byte]())
//	s := sweep.New(m, sweep.Options{Interval: 30 * time.Second})
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//	defer s.Stop()
//
// The target must be safe for use from the sweeper goroutine; wrap a plain
// ttlmap.Map in ttlmap.Synced. Sweep can also be called directly when
// the caller already owns the map.
package sweep
