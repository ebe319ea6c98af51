// Package reclaim defines the external memory-reclamation contract that
// harrismap's list core depends on, plus two implementations of it.
//
// The list core never frees a node itself. It unlinks a node from its
// bucket and then hands it to a Guard's Reclaim method; what happens after
// that — defer until safe, free immediately, or (as with GCScheme) do
// nothing and let the garbage collector handle it — is entirely the
// scheme's decision. This mirrors xenium's Reclaimer template parameter:
// the map is written once against this interface and is free to run atop
// hazard pointers, epoch-based reclamation, or anything else that
// satisfies it.
package reclaim

import (
	"sync/atomic"
	"unsafe"
)

// noCopy causes `go vet`'s copylocks check to flag accidental copies of
// types that embed it, the same convention the teacher used for its
// atomic wrappers.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Pointer is a single machine word atomic that packs a *T address with one
// mark bit stolen from the address's low bit. It is the "marked atomic
// pointer" (C1) shared by every reclamation scheme: a bucket head or a
// node's next field is always a Pointer[T].
//
// Stealing the low bit assumes T's alignment is at least 2, which holds
// for every non-empty Go struct allocated by the runtime.
type Pointer[T any] struct {
	_    noCopy
	bits atomic.Uintptr
}

const markBit = uintptr(1)

func pack[T any](addr *T, mark bool) uintptr {
	u := uintptr(unsafe.Pointer(addr))
	if mark {
		u |= markBit
	}
	return u
}

func unpack[T any](bits uintptr) (*T, bool) {
	return (*T)(unsafe.Pointer(bits &^ markBit)), bits&markBit != 0
}

// Load returns the address and mark currently stored.
//
// Go's atomic package gives every operation sequentially-consistent
// semantics; there is no surface for the acquire/relaxed/release
// distinctions spec'd for the C++ original, so unlike xenium's
// concurrent_ptr::load, Load takes no memory-order argument. The stronger
// ordering Go provides is never observably wrong for an algorithm that
// only requires acquire/release — it just forecloses the release-on-
// success/relaxed-on-failure micro-optimization the original performs on
// its CAS failure path.
func (p *Pointer[T]) Load() (*T, bool) {
	return unpack[T](p.bits.Load())
}

// Store unconditionally publishes addr with the given mark.
func (p *Pointer[T]) Store(addr *T, mark bool) {
	p.bits.Store(pack(addr, mark))
}

// CompareAndSwap performs the word-wide CAS the list core builds every
// structural change from: the unlink splice, the insert splice, and the
// logical-delete mark CAS are all a single call to this method.
func (p *Pointer[T]) CompareAndSwap(oldAddr *T, oldMark bool, newAddr *T, newMark bool) bool {
	return p.bits.CompareAndSwap(pack(oldAddr, oldMark), pack(newAddr, newMark))
}

// Scheme is implemented by a reclamation strategy. NewGuard returns a
// fresh handle; callers are expected to create one findInfo's worth of
// guards per traversal and let them go out of scope (or call Reset)
// promptly, since some schemes charge real per-guard resources.
type Scheme[T any] interface {
	NewGuard() Guard[T]
}

// Guard is the "protected pointer" contract from spec §4.2. A Guard pins
// at most one node at a time; acquiring a new one implicitly releases
// whatever was previously pinned.
type Guard[T any] interface {
	// Adopt pins a pointer the caller already owns exclusively — typically
	// a node just allocated and not yet published to any Pointer — without
	// consulting any shared memory. It never fails: there is nothing to
	// race against until the caller itself publishes addr.
	Adopt(addr *T)

	// Acquire reads source and pins the node it finds there, retrying
	// internally if needed so that the returned node is guaranteed not to
	// be reclaimed while this guard is alive. Returns nil if source held a
	// nil address.
	Acquire(source *Pointer[T]) *T

	// AcquireIfEqual pins expectedAddr/expectedMark only if source still
	// holds exactly that value; otherwise it releases any current pin and
	// returns (nil, false) without blocking.
	AcquireIfEqual(source *Pointer[T], expectedAddr *T, expectedMark bool) (*T, bool)

	// Reset releases the currently pinned node, if any, without
	// reclaiming it.
	Reset()

	// Reclaim declares the currently pinned node logically dead and
	// schedules it for eventual destruction. The caller must have already
	// made the node unreachable from every bucket head; Reclaim also
	// releases the guard's pin.
	Reclaim()
}
