//go:build amd64 || arm64 || mips64 || mips64le || ppc64 || ppc64le || riscv64 || s390x || wasm

/*
From https://github.com/cespare/xxhash

Copyright (c) 2016 Caleb Spare

MIT License

Permission is hereby granted, free of charge, to any person obtaining
a copy of this software and associated documentation files (the
"Software"), to deal in the Software without restriction, including
without limitation the rights to use, copy, modify, merge, publish,
distribute, sublicense, and/or sell copies of the Software, and to
permit persons to whom the Software is furnished to do so, subject to
the following conditions:
The above copyright notice and this permission notice shall be
included in all copies or substantial portions of the Software.
THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package harrismap

import (
	"encoding/binary"
	"math/bits"
)

const (
	prime64_1 uint64 = 11400714785074694791
	prime64_2 uint64 = 14029467366897019727
	prime64_3 uint64 = 1609587929392839161
	prime64_4 uint64 = 9650029242287828579
	prime64_5 uint64 = 2870177450012600261
)

// hashBytes implements xxHash64 for the fixed small key widths this
// module ever calls it with (1, 2, 4 or 8 bytes); the 32-byte striping
// path is kept because the original algorithm needs it to stay a
// faithful xxHash64, even though no caller here ever passes that much.
func hashBytes(b []byte) uint64 {
	n := len(b)
	var h uint64

	if n >= 32 {
		v1 := prime64_1
		v1 += prime64_2
		v2 := prime64_2
		v3 := uint64(0)
		v4 := uint64(0)
		v4 -= prime64_1
		for len(b) >= 32 {
			v1 = round64(v1, u64(b[0:8:len(b)]))
			v2 = round64(v2, u64(b[8:16:len(b)]))
			v3 = round64(v3, u64(b[16:24:len(b)]))
			v4 = round64(v4, u64(b[24:32:len(b)]))
			b = b[32:len(b):len(b)]
		}
		h = rol1_64(v1) + rol7_64(v2) + rol12_64(v3) + rol18_64(v4)
		h = mergeRound64(h, v1)
		h = mergeRound64(h, v2)
		h = mergeRound64(h, v3)
		h = mergeRound64(h, v4)
	} else {
		h = prime64_5
	}

	h += uint64(n)

	i, end := 0, len(b)
	for ; i+8 <= end; i += 8 {
		k1 := round64(0, u64(b[i:i+8:len(b)]))
		h ^= k1
		h = rol27_64(h)*prime64_1 + prime64_4
	}
	if i+4 <= end {
		h ^= uint64(u32(b[i:i+4:len(b)])) * prime64_1
		h = rol23_64(h)*prime64_2 + prime64_3
		i += 4
	}
	for ; i < end; i++ {
		h ^= uint64(b[i]) * prime64_5
		h = rol11_64(h) * prime64_1
	}

	h ^= h >> 33
	h *= prime64_2
	h ^= h >> 29
	h *= prime64_3
	h ^= h >> 32

	return h
}

func u64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
func u32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func round64(acc, input uint64) uint64 {
	acc += input * prime64_2
	acc = rol31_64(acc)
	acc *= prime64_1
	return acc
}

func mergeRound64(acc, val uint64) uint64 {
	val = round64(0, val)
	acc ^= val
	acc = acc*prime64_1 + prime64_4
	return acc
}

func rol1_64(x uint64) uint64  { return bits.RotateLeft64(x, 1) }
func rol7_64(x uint64) uint64  { return bits.RotateLeft64(x, 7) }
func rol11_64(x uint64) uint64 { return bits.RotateLeft64(x, 11) }
func rol12_64(x uint64) uint64 { return bits.RotateLeft64(x, 12) }
func rol18_64(x uint64) uint64 { return bits.RotateLeft64(x, 18) }
func rol23_64(x uint64) uint64 { return bits.RotateLeft64(x, 23) }
func rol27_64(x uint64) uint64 { return bits.RotateLeft64(x, 27) }
func rol31_64(x uint64) uint64 { return bits.RotateLeft64(x, 31) }
