package ttlmap

import (
	"fmt"
	"strings"
)

// Kind selects the storage backing a [Map]. The set is closed: every map
// operation handles each kind explicitly.
type Kind uint8

const (
	// Ordered stores entries in a B-tree; iteration yields ascending keys.
	Ordered Kind = iota + 1
	// Hash stores entries in a built-in Go map; iteration order is unspecified.
	Hash
	// FastHash stores entries in a bucket table addressed by a pluggable
	// [Hasher] (xxhash by default); iteration order is unspecified.
	FastHash
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{Ordered, Hash, FastHash}

func (k Kind) String() string {
	switch k {
	case Ordered:
		return "ordered"
	case Hash:
		return "hash"
	case FastHash:
		return "fasthash"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) Valid() bool {
	switch k {
	case Ordered, Hash, FastHash:
		return true
	}
	return false
}

// ParseKind parses the names returned by [Kind.String].
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ordered", "btree":
		return Ordered, nil
	case "hash", "map":
		return Hash, nil
	case "fasthash", "fast":
		return FastHash, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}
