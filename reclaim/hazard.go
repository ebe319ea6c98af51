package reclaim

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// HazardPointers is a classic Michael hazard-pointer scheme: every live
// Guard occupies one slot in a shared table, and a node is only released
// for garbage collection once a scan of that table shows no slot
// currently protects it. Go's collector still performs the actual free;
// what this scheme buys over GCScheme is the bounded, auditable
// "outstanding pins per goroutine" accounting spec §8 scenario 6 calls
// for, which matters when porting this algorithm to an arena/off-heap
// value type that a plain *T reference would not protect.
//
// The slot table is sized from GOMAXPROCS, the same scaling rule
// xenium's own hazard_pointer reclaimer documentation recommends for the
// global HP table: more hardware threads means more concurrently live
// guards, so the table must grow with them to avoid needless contention
// on slot acquisition.
type HazardPointers[T any] struct {
	mu      sync.Mutex
	slots   []*hazardSlot[T]
	retMu   sync.Mutex
	retired []unsafe.Pointer
	scanAt  int
}

type hazardSlot[T any] struct {
	protected atomic.Pointer[T]
	inUse     atomic.Bool
}

// NewHazardPointers allocates a scheme whose table starts at four slots
// per logical core — two for an iterator's simultaneous save/cur pins,
// headroom for the rest for concurrent single-shot operations, matching
// the ≤2/≤4 budget spec §8 scenario 6 names for iteration vs. mutation.
func NewHazardPointers[T any]() *HazardPointers[T] {
	cores := runtime.GOMAXPROCS(0)
	if cores < 1 {
		cores = 1
	}
	budget := cores * 4
	hp := &HazardPointers[T]{
		slots:  make([]*hazardSlot[T], budget),
		scanAt: budget,
	}
	for i := range hp.slots {
		hp.slots[i] = &hazardSlot[T]{}
	}
	return hp
}

func (hp *HazardPointers[T]) NewGuard() Guard[T] {
	slot := hp.acquireSlot()
	g := &hazardGuard[T]{hp: hp, slot: slot}
	// Guards have no explicit Close in the Guard contract (spec leaves the
	// scope-bound release mechanism to the implementer: "destructor,
	// defer, finally, or equivalent"). A finalizer is this scheme's
	// equivalent: it returns the slot to the free pool once the guard
	// itself becomes unreachable, without requiring every call site in
	// list.go to remember to release it.
	runtime.SetFinalizer(g, func(g *hazardGuard[T]) {
		hp.releaseSlot(g.slot)
	})
	return g
}

func (hp *HazardPointers[T]) acquireSlot() *hazardSlot[T] {
	hp.mu.Lock()
	for _, s := range hp.slots {
		if s.inUse.CompareAndSwap(false, true) {
			hp.mu.Unlock()
			return s
		}
	}
	s := &hazardSlot[T]{}
	s.inUse.Store(true)
	hp.slots = append(hp.slots, s)
	hp.mu.Unlock()
	return s
}

func (hp *HazardPointers[T]) releaseSlot(s *hazardSlot[T]) {
	s.protected.Store(nil)
	s.inUse.Store(false)
}

func (hp *HazardPointers[T]) retire(dead *T) {
	hp.retMu.Lock()
	hp.retired = append(hp.retired, unsafe.Pointer(dead))
	due := len(hp.retired) >= hp.scanAt
	hp.retMu.Unlock()
	if due {
		hp.scan()
	}
}

// scan drops this scheme's reference to every retired node no slot
// currently protects, letting the garbage collector reclaim it on its own
// schedule. Nodes still hazardous stay on the retired list for the next
// scan.
func (hp *HazardPointers[T]) scan() {
	hp.mu.Lock()
	protected := make(map[unsafe.Pointer]struct{}, len(hp.slots))
	for _, s := range hp.slots {
		if p := s.protected.Load(); p != nil {
			protected[unsafe.Pointer(p)] = struct{}{}
		}
	}
	hp.mu.Unlock()

	hp.retMu.Lock()
	kept := hp.retired[:0]
	for _, r := range hp.retired {
		if _, hazardous := protected[r]; hazardous {
			kept = append(kept, r)
		}
	}
	hp.retired = kept
	hp.retMu.Unlock()
}

// Outstanding reports the number of slots currently in use, for tests
// that assert the per-goroutine pin budget in spec §8 scenario 6.
func (hp *HazardPointers[T]) Outstanding() int {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	n := 0
	for _, s := range hp.slots {
		if s.inUse.Load() {
			n++
		}
	}
	return n
}

type hazardGuard[T any] struct {
	hp   *HazardPointers[T]
	slot *hazardSlot[T]
}

func (g *hazardGuard[T]) Adopt(addr *T) {
	g.slot.protected.Store(addr)
}

func (g *hazardGuard[T]) Acquire(source *Pointer[T]) *T {
	for {
		addr, _ := source.Load()
		g.slot.protected.Store(addr)
		confirm, _ := source.Load()
		if confirm == addr {
			return addr
		}
	}
}

func (g *hazardGuard[T]) AcquireIfEqual(source *Pointer[T], expectedAddr *T, expectedMark bool) (*T, bool) {
	addr, mark := source.Load()
	if addr != expectedAddr || mark != expectedMark {
		g.slot.protected.Store(nil)
		return nil, false
	}
	g.slot.protected.Store(addr)
	// The expected node could have been retired between the load above and
	// the protected-store just now; re-check before trusting the pin.
	confirmAddr, confirmMark := source.Load()
	if confirmAddr != expectedAddr || confirmMark != expectedMark {
		g.slot.protected.Store(nil)
		return nil, false
	}
	return addr, true
}

func (g *hazardGuard[T]) Reset() {
	g.slot.protected.Store(nil)
}

func (g *hazardGuard[T]) Reclaim() {
	dead := g.slot.protected.Load()
	g.slot.protected.Store(nil)
	if dead != nil {
		g.hp.retire(dead)
	}
}
