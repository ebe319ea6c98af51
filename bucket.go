package harrismap

import (
	"golang.org/x/sys/cpu"

	"github.com/tessercore/harrismap/reclaim"
)

// bucketHead is one list head (C5) padded to its own cache line. Under
// concurrent CAS traffic, two logically unrelated buckets living in the
// same cache line would ping-pong that line between cores on every
// insert/erase; the padding is the same technique this pack's own striped
// counters use to isolate independently-written words.
type bucketHead[K Key, V any] struct {
	head reclaim.Pointer[Node[K, V]]
	_    cpu.CacheLinePad
}

// bucketFor routes key to its bucket index, per spec §3: "A key routes to
// bucket hash(key) mod Buckets."
func (m *Map[K, V]) bucketFor(key K) int {
	return int(m.hash(key) % uint64(len(m.buckets)))
}

// drain destroys every node reachable from every bucket head directly,
// bypassing the reclamation scheme entirely. Per spec §4.3.4 this is only
// safe when the caller is certain no other goroutine holds a reference
// into the map — Go has no destructor to run this automatically at scope
// exit, so it is exposed as Map.Close and additionally wired to a
// runtime.SetFinalizer safety net in map.go.
func (m *Map[K, V]) drain() {
	for i := range m.buckets {
		n, _ := m.buckets[i].head.Load()
		m.buckets[i].head.Store(nil, false)
		for n != nil {
			next, _ := n.next.Load()
			n.next.Store(nil, false)
			n = next
		}
	}
}
