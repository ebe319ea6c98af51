//go:build 386 || arm || mips || mipsle

/*
From https://github.com/pierrec/xxHash

Copyright (c) 2014, Pierre Curto
All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

* Redistributions of source code must retain the above copyright notice, this
  list of conditions and the following disclaimer.

* Redistributions in binary form must reproduce the above copyright notice,
  this list of conditions and the following disclaimer in the documentation
  and/or other materials provided with the distribution.

* Neither the name of xxHash nor the names of its
  contributors may be used to endorse or promote products derived from
  this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/

package harrismap

import (
	"encoding/binary"
	"math/bits"
)

const (
	prime32_1 uint32 = 2654435761
	prime32_2 uint32 = 2246822519
	prime32_3 uint32 = 3266489917
	prime32_4 uint32 = 668265263
	prime32_5 uint32 = 374761393
)

// hashBytes implements xxHash32, used on 32-bit targets where the 64-bit
// multiplies xxHash64 depends on would need software emulation.
func hashBytes(b []byte) uint64 {
	n := len(b)
	h32 := uint32(n)

	if n < 16 {
		h32 += prime32_5
	} else {
		v1 := prime32_1 + prime32_2
		v2 := prime32_2
		v3 := uint32(0)
		v4 := -prime32_1
		p := 0
		for n := n - 16; p <= n; p += 16 {
			sub := b[p:][:16]
			v1 = rol13_32(v1+u32_(sub[:])*prime32_2) * prime32_1
			v2 = rol13_32(v2+u32_(sub[4:])*prime32_2) * prime32_1
			v3 = rol13_32(v3+u32_(sub[8:])*prime32_2) * prime32_1
			v4 = rol13_32(v4+u32_(sub[12:])*prime32_2) * prime32_1
		}
		b = b[p:]
		n -= p
		h32 += rol1_32(v1) + rol7_32(v2) + rol12_32(v3) + rol18_32(v4)
	}

	p := 0
	for n := n - 4; p <= n; p += 4 {
		h32 += u32_(b[p:p+4]) * prime32_3
		h32 = rol17_32(h32) * prime32_4
	}
	for ; p < n; p++ {
		h32 += uint32(b[p]) * prime32_5
		h32 = rol11_32(h32) * prime32_1
	}

	h32 ^= h32 >> 15
	h32 *= prime32_2
	h32 ^= h32 >> 13
	h32 *= prime32_3
	h32 ^= h32 >> 16

	return uint64(h32)
}

func u32_(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func rol1_32(x uint32) uint32  { return bits.RotateLeft32(x, 1) }
func rol7_32(x uint32) uint32  { return bits.RotateLeft32(x, 7) }
func rol11_32(x uint32) uint32 { return bits.RotateLeft32(x, 11) }
func rol12_32(x uint32) uint32 { return bits.RotateLeft32(x, 12) }
func rol13_32(x uint32) uint32 { return bits.RotateLeft32(x, 13) }
func rol17_32(x uint32) uint32 { return bits.RotateLeft32(x, 17) }
func rol18_32(x uint32) uint32 { return bits.RotateLeft32(x, 18) }
