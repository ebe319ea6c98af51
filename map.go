package harrismap

import (
	"runtime"
	"sync/atomic"

	"github.com/tessercore/harrismap/reclaim"
)

// Map is a fixed-bucket-count lock-free ordered hash map: the public
// surface spec §6 names, backed by one Harris/Michael list per bucket
// (C4/C5). Every collaborator spec frames as a compile-time/generic
// parameter — reclamation scheme, backoff strategy, hash function,
// bucket count — is fixed for the instance's lifetime by New's options;
// there is no setter afterward.
type Map[K Key, V any] struct {
	buckets    []bucketHead[K, V]
	scheme     reclaim.Scheme[Node[K, V]]
	newBackoff BackoffFactory
	hash       Hasher[K]
	closed     atomic.Bool
}

// Option configures a Map at construction time.
type Option[K Key, V any] func(*Map[K, V])

// WithScheme selects the reclamation scheme new nodes are enrolled with.
// The zero value uses reclaim.GCScheme, which relies entirely on the Go
// garbage collector.
func WithScheme[K Key, V any](s reclaim.Scheme[Node[K, V]]) Option[K, V] {
	return func(m *Map[K, V]) { m.scheme = s }
}

// WithBackoff selects the strategy invoked whenever a CAS loses a race.
func WithBackoff[K Key, V any](f BackoffFactory) Option[K, V] {
	return func(m *Map[K, V]) { m.newBackoff = f }
}

// WithHasher overrides the default key hash function.
func WithHasher[K Key, V any](h Hasher[K]) Option[K, V] {
	return func(m *Map[K, V]) { m.hash = h }
}

// New builds a Map with the given fixed bucket count. Per spec's
// Non-goals the bucket count never changes after this call.
func New[K Key, V any](buckets int, opts ...Option[K, V]) *Map[K, V] {
	if buckets <= 0 {
		panic("harrismap: bucket count must be positive")
	}
	m := &Map[K, V]{
		buckets:    make([]bucketHead[K, V], buckets),
		scheme:     reclaim.GCScheme[Node[K, V]]{},
		newBackoff: defaultBackoffFactory,
		hash:       defaultHasher[K](),
	}
	for _, opt := range opts {
		opt(m)
	}
	// The bucket table's destructor drain (spec §4.3.4) assumes no other
	// goroutine holds the map; a finalizer is the closest Go equivalent to
	// running that drain automatically once nothing references the map
	// any more, for callers who never call Close explicitly.
	runtime.SetFinalizer(m, func(m *Map[K, V]) { m.Close() })
	return m
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Find(key)
	return ok
}

// Find looks up key, returning an Entry and true if it is live.
func (m *Map[K, V]) Find(key K) (Entry[K, V], bool) {
	bucket := m.bucketFor(key)
	info := &findInfo[K, V]{prev: &m.buckets[bucket].head}
	backoff := m.newBackoff()
	if !m.find(key, bucket, info, backoff) {
		return Entry[K, V]{}, false
	}
	return Entry[K, V]{n: info.curNode}, true
}

// Emplace unconditionally constructs a node from key/value and inserts it
// if key is absent. It reports whether the insert happened; on a
// duplicate the freshly constructed node is simply discarded (Go's
// garbage collector reclaims it, matching spec's "destroy newly built
// node" with no explicit destructor call needed).
func (m *Map[K, V]) Emplace(key K, value V) bool {
	n := &Node[K, V]{key: key, value: value}
	_, inserted := m.installIfAbsent(key, n, nil)
	return inserted
}

// EmplaceOrGet is Emplace, but on a duplicate it returns an Entry to the
// existing node instead of only a bool.
func (m *Map[K, V]) EmplaceOrGet(key K, value V) (Entry[K, V], bool) {
	n := &Node[K, V]{key: key, value: value}
	info, inserted := m.installIfAbsent(key, n, nil)
	return Entry[K, V]{n: info.curNode}, inserted
}

// GetOrEmplace inserts value under key only if key is absent, building the
// node lazily — only once find has confirmed no node needs to be
// discarded. It always returns an Entry, live either way.
func (m *Map[K, V]) GetOrEmplace(key K, value V) (Entry[K, V], bool) {
	info, inserted := m.installIfAbsent(key, nil, func() *Node[K, V] {
		return &Node[K, V]{key: key, value: value}
	})
	return Entry[K, V]{n: info.curNode}, inserted
}

// GetOrEmplaceLazy is GetOrEmplace, but the value is produced by invoking
// factory at most once, only when a node actually needs to be built.
func (m *Map[K, V]) GetOrEmplaceLazy(key K, factory func() V) (Entry[K, V], bool) {
	info, inserted := m.installIfAbsent(key, nil, func() *Node[K, V] {
		return &Node[K, V]{key: key, value: factory()}
	})
	return Entry[K, V]{n: info.curNode}, inserted
}

// Erase removes key if present, reporting whether it was.
func (m *Map[K, V]) Erase(key K) bool {
	bucket := m.bucketFor(key)
	info := &findInfo[K, V]{prev: &m.buckets[bucket].head}
	backoff := m.newBackoff()
	if !m.find(key, bucket, info, backoff) {
		return false
	}
	_, erased := m.eraseAt(bucket, key, info, backoff)
	return erased
}

// EraseIterator removes the element it points to and returns an iterator
// advanced past it, per spec §4.3.3.
func (m *Map[K, V]) EraseIterator(it *Iterator[K, V]) *Iterator[K, V] {
	if it.done() {
		return it
	}
	backoff := m.newBackoff()
	key := it.info.curNode.key
	m.eraseAt(it.bucket, key, it.info, backoff)
	it.advancePastErase(backoff)
	return it
}

// Begin returns an iterator positioned at the first live element, or a
// done iterator if the map is empty.
func (m *Map[K, V]) Begin() *Iterator[K, V] {
	it := &Iterator[K, V]{m: m, bucket: 0}
	it.enterBucket()
	return it
}

// End returns the sentinel done iterator.
func (m *Map[K, V]) End() *Iterator[K, V] {
	return &Iterator[K, V]{m: m, bucket: len(m.buckets)}
}

// Close drains every bucket directly, bypassing the reclamation scheme.
// Per spec §4.3.4 this is not safe to call while any other goroutine
// might still be operating on the map. It is idempotent.
func (m *Map[K, V]) Close() {
	if m.closed.Swap(true) {
		return
	}
	m.drain()
}
