package ttlmap

import (
	"cmp"
	"encoding/binary"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Hasher hashes the in-memory bytes of a key for the [FastHash] backend.
type Hasher func(data []byte) uint64

// XXHash returns the default FastHash hasher.
func XXHash() Hasher { return xxhash.Sum64 }

// Blake2b returns a keyed hasher for keys that come from untrusted input,
// where bucket flooding is a concern. key may be at most 64 bytes.
func Blake2b(key []byte) (Hasher, error) {
	if _, err := blake2b.New(8, key); err != nil {
		return nil, err
	}
	mac := append([]byte(nil), key...)
	return func(data []byte) uint64 {
		h, _ := blake2b.New(8, mac)
		_, _ = h.Write(data)
		return binary.BigEndian.Uint64(h.Sum(nil))
	}, nil
}

// keyEncoder exposes the memory of an ordered key as bytes. cmp.Ordered
// only admits types whose underlying type is a string, integer or float,
// so the layout is known up front.
type keyEncoder[K cmp.Ordered] struct {
	isString bool
	size     uintptr
}

func newKeyEncoder[K cmp.Ordered]() keyEncoder[K] {
	var zero K
	return keyEncoder[K]{
		isString: reflect.TypeFor[K]().Kind() == reflect.String,
		size:     unsafe.Sizeof(zero),
	}
}

// bytes aliases k; the result must not outlive k.
func (e keyEncoder[K]) bytes(k *K) []byte {
	if e.isString {
		s := *(*string)(unsafe.Pointer(k))
		return unsafe.Slice(unsafe.StringData(s), len(s))
	}
	// -0.0 == +0.0 but their bits differ
	var zero K
	if *k == zero {
		*k = zero
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(k)), e.size)
}
