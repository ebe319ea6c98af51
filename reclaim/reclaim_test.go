package reclaim

import (
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

type node struct {
	val  int
	next Pointer[node]
}

func TestPointerLoadStore(t *testing.T) {
	var p Pointer[node]
	if addr, mark := p.Load(); addr != nil || mark {
		t.Fatalf("zero-value pointer should load (nil, false), got (%v, %v)", addr, mark)
	}

	n := &node{val: 1}
	p.Store(n, false)
	addr, mark := p.Load()
	if addr != n || mark {
		t.Fatalf("Store/Load mismatch: got (%v, %v)", addr, mark)
	}

	p.Store(n, true)
	addr, mark = p.Load()
	if addr != n || !mark {
		t.Fatalf("Store/Load mismatch after marking: got (%v, %v)", addr, mark)
	}
}

func TestPointerCompareAndSwap(t *testing.T) {
	var p Pointer[node]
	n1 := &node{val: 1}
	n2 := &node{val: 2}
	p.Store(n1, false)

	if p.CompareAndSwap(n2, false, n2, false) {
		t.Fatal("CAS should fail on address mismatch")
	}
	if p.CompareAndSwap(n1, true, n2, false) {
		t.Fatal("CAS should fail on mark mismatch")
	}
	if !p.CompareAndSwap(n1, false, n2, false) {
		t.Fatal("CAS should succeed when expected matches")
	}
	addr, mark := p.Load()
	if addr != n2 || mark {
		t.Fatalf("post-CAS state wrong: got (%v, %v)", addr, mark)
	}
}

func testSchemeAcquire(t *testing.T, scheme Scheme[node]) {
	var p Pointer[node]
	n := &node{val: 42}
	p.Store(n, false)

	g := scheme.NewGuard()
	got := g.Acquire(&p)
	if got != n {
		t.Fatalf("Acquire returned %v, want %v", got, n)
	}

	if got, ok := g.AcquireIfEqual(&p, n, true); ok || got != nil {
		t.Fatalf("AcquireIfEqual should fail on mark mismatch, got (%v, %v)", got, ok)
	}
	if got, ok := g.AcquireIfEqual(&p, n, false); !ok || got != n {
		t.Fatalf("AcquireIfEqual should succeed, got (%v, %v)", got, ok)
	}

	g.Reclaim()
}

func testSchemeAdopt(t *testing.T, scheme Scheme[node]) {
	n := &node{val: 7}
	g := scheme.NewGuard()
	g.Adopt(n)
	if got, ok := g.AcquireIfEqual(new(Pointer[node]), n, false); ok || got != nil {
		t.Fatalf("AcquireIfEqual against a source that does not hold the adopted node should fail, got (%v, %v)", got, ok)
	}
	g.Reset()
}

func TestGCSchemeAdopt(t *testing.T) {
	testSchemeAdopt(t, GCScheme[node]{})
}

func TestHazardPointersAdopt(t *testing.T) {
	testSchemeAdopt(t, NewHazardPointers[node]())
}

func TestGCSchemeAcquire(t *testing.T) {
	testSchemeAcquire(t, GCScheme[node]{})
}

func TestHazardPointersAcquire(t *testing.T) {
	testSchemeAcquire(t, NewHazardPointers[node]())
}

func TestHazardPointersBoundedOutstanding(t *testing.T) {
	hp := NewHazardPointers[node]()
	const goroutines = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	maxSeen := 0
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			var p Pointer[node]
			n := &node{val: i}
			p.Store(n, false)
			g1 := hp.NewGuard()
			g2 := hp.NewGuard()
			g1.Acquire(&p)
			g2.Acquire(&p)
			mu.Lock()
			if n := hp.Outstanding(); n > maxSeen {
				maxSeen = n
			}
			mu.Unlock()
			g1.Reset()
			g2.Reset()
		}()
	}
	wg.Wait()
	if maxSeen > goroutines*4 {
		t.Fatalf("outstanding hazard slots grew past the provisioned budget: %d", maxSeen)
	}
}

func TestHazardPointersScanReleasesUnprotected(t *testing.T) {
	hp := NewHazardPointers[node]()
	for i := 0; i < hp.scanAt+1; i++ {
		var p Pointer[node]
		n := &node{val: i}
		p.Store(n, false)
		g := hp.NewGuard()
		g.Acquire(&p)
		g.Reclaim()
	}
	hp.scan()
	hp.retMu.Lock()
	remaining := len(hp.retired)
	hp.retMu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected all unprotected retirees to drain, %d remain", remaining)
	}
}

func TestSchemesUnderConcurrentMutation(t *testing.T) {
	for name, scheme := range map[string]Scheme[node]{
		"gc":     GCScheme[node]{},
		"hazard": NewHazardPointers[node](),
	} {
		t.Run(name, func(t *testing.T) {
			var p Pointer[node]
			p.Store(&node{val: 0}, false)

			var eg errgroup.Group
			for i := 0; i < 16; i++ {
				i := i
				eg.Go(func() error {
					g := scheme.NewGuard()
					for j := 0; j < 1000; j++ {
						n := &node{val: i*1000 + j}
						old, oldMark := p.Load()
						if p.CompareAndSwap(old, oldMark, n, false) {
							g.Acquire(&p)
							g.Reset()
						}
					}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}
		})
	}
}
