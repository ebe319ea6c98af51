package harrismap

import (
	"unsafe"

	"github.com/zeebo/xxh3"
)

// Hasher is the Hash contract from spec §6: a total function from key to
// an unsigned integer, stable for the lifetime of one map instance.
type Hasher[K Key] func(K) uint64

// defaultHasher picks a hash function for K by a type switch over the
// key's zero value, evaluated once when New builds the Map, exactly the technique the teacher's
// setDefaultHasher uses in hash64.go/hash32.go: reinterpret the key's
// bytes and run them through an xxHash-style avalanche, so the common
// fixed-width key types never pay for a generic reflect-driven byte hash.
// Strings go through github.com/zeebo/xxh3 directly, as the teacher does.
//
// K is restricted to constraints.Ordered (see key.go), so unlike the
// teacher's own defaultHasher there is no branch for complex numbers or
// unsafe.Pointer — Ordered excludes both.
func defaultHasher[K Key]() Hasher[K] {
	switch any(*new(K)).(type) {
	case string:
		return func(key K) uint64 {
			return xxh3.HashString(any(key).(string))
		}
	case int8, uint8:
		return func(key K) uint64 {
			return hashBytes(unsafe.Slice((*byte)(unsafe.Pointer(&key)), 1))
		}
	case int16, uint16:
		return func(key K) uint64 {
			return hashBytes(unsafe.Slice((*byte)(unsafe.Pointer(&key)), 2))
		}
	case int32, uint32, float32:
		return func(key K) uint64 {
			return hashBytes(unsafe.Slice((*byte)(unsafe.Pointer(&key)), 4))
		}
	default:
		// int, uint, uintptr, int64, uint64, float64: hash the key's
		// natural width, which unsafe.Sizeof resolves per-GOARCH.
		return func(key K) uint64 {
			return hashBytes(unsafe.Slice((*byte)(unsafe.Pointer(&key)), unsafe.Sizeof(key)))
		}
	}
}
