package harrismap

import "github.com/tessercore/harrismap/reclaim"

// Node is the storage for one key/value pair (C3). Its key is immutable
// once installed; its next field is the marked atomic pointer (C1) that
// both links it into its bucket's list and carries its own logical-delete
// mark, per spec's data model: the mark on a node's next field means
// "this node is deleted", not "the next node is deleted".
//
// Node is exported, with every field unexported, purely so that a caller
// of WithScheme can name reclaim.Scheme[Node[K, V]] — Go generics have no
// way for a map instantiated over (K, V) to hand its own private node
// type to a scheme the caller supplies, the way xenium's Reclaimer
// template-template parameter lets the C++ original keep its node type
// entirely private. Callers can instantiate a scheme against Node[K, V];
// they cannot construct, inspect, or mutate one.
type Node[K Key, V any] struct {
	key   K
	value V
	next  reclaim.Pointer[Node[K, V]]
}

// Entry is a handle to one live key/value pair, returned by Find and by
// the Iterator. Per spec §4.3.5, the key is immutable through an Entry
// but the value is mutable — SetValue writes directly to the node with no
// synchronization of its own, matching the map's explicit refusal to
// provide intra-value concurrency control.
type Entry[K Key, V any] struct {
	n *Node[K, V]
}

// Key returns the entry's key.
func (e Entry[K, V]) Key() K { return e.n.key }

// Value returns the entry's current value.
func (e Entry[K, V]) Value() V { return e.n.value }

// SetValue overwrites the entry's value in place. The caller is
// responsible for any synchronization needed against concurrent readers
// of the same entry; the map provides none.
func (e Entry[K, V]) SetValue(v V) { e.n.value = v }
