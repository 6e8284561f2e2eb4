package shard

import "github.com/cespare/xxhash/v2"

type Func func(key string) int

func ForKey(key string, shardCount int) int {
	return int(xxhash.Sum64String(key) % uint64(shardCount))
}

type Sharder interface {
	GetShardForKey(key string) int
	Count() int
}

type fnSharder struct {
	fn    Func
	count int
}

// NewSharder wraps fn, which must return values in [0, count).
func NewSharder(fn Func, count int) Sharder {
	return &fnSharder{fn: fn, count: count}
}

func (s *fnSharder) GetShardForKey(key string) int { return s.fn(key) }
func (s *fnSharder) Count() int                    { return s.count }

// Distributed spreads keys evenly over count shards. count below 1 is
// treated as 1.
func Distributed(count int) Sharder {
	if count < 1 {
		count = 1
	}
	if count == 1 {
		return Const()
	}
	return &fnSharder{
		count: count,
		fn: func(key string) int {
			return ForKey(key, count)
		},
	}
}

// Const puts every key into a single shard.
func Const() Sharder {
	return &fnSharder{
		count: 1,
		fn: func(string) int {
			return 0
		},
	}
}
