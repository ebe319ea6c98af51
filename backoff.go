package harrismap

import (
	"runtime"
	"time"

	"github.com/klauspost/cpuid/v2"
)

// Backoff is the hook spec §6 names: invoked whenever a CAS loses a race
// with a concurrent mutator. Implementations may pause the calling
// goroutine but must have no side effect on map state.
type Backoff interface {
	Backoff()
}

// BackoffFactory produces a fresh Backoff for a single operation. The
// list core constructs one at the start of contains/find/erase/insert,
// matching the original's `Backoff backoff;` local declaration per call.
type BackoffFactory func() Backoff

var spinLimit = cpuid.CPU.LogicalCores * 4

// SpinBackoff spins the calling goroutine via runtime.Gosched for a
// bounded number of rounds and then falls back to a short sleep, the same
// spin-then-sleep shape as the sleeper used under contention in
// Facebook/folly (and mirrored, without the go:linkname spin-count probe,
// by this pack's own internal/opt spin helper). The spin budget scales
// with the logical core count: with more hardware threads live, a losing
// CAS is more likely to win on the next attempt without ever sleeping.
type SpinBackoff struct {
	spins int
}

// Backoff implements the Backoff interface. The zero value is ready to
// use, matching spec's "default-constructible" requirement.
func (b *SpinBackoff) Backoff() {
	if b.spins < spinLimit {
		b.spins++
		runtime.Gosched()
		return
	}
	b.spins = 0
	time.Sleep(50 * time.Microsecond)
}

func defaultBackoffFactory() Backoff { return &SpinBackoff{} }
